package ecs

import "iter"

// componentStore is a type-erased, entity-index-addressed component
// backing store. Adapted from the teacher's iComponentStorage
// (Append/Delete/Get/Has/Compact/Iter), but addressed directly by an
// entity's own index rather than by a separately allocated storage
// position, since spec §3 models a sparse store as Entity -> Value.
type componentStore interface {
	set(index uint32, value any)
	get(index uint32) (any, bool)
	remove(index uint32)
	has(index uint32) bool
	iter() iter.Seq[uint32]
	len() int
}

const blockSize = 64

// sparseStore is a block-array component store, grounded on the teacher's
// genericComponentStorage[T] (blocks + filled), generalized to opaque
// `any` payloads since spec §3 treats component values as uninterpreted.
// It keeps no free-slot list of its own: a slot is addressed by the
// entity's index and is reused when the world reuses that index.
type sparseStore struct {
	blocks [][blockSize]any
	filled [][blockSize]bool
	count  int
}

func newSparseStore() *sparseStore {
	return &sparseStore{}
}

func (s *sparseStore) ensureBlock(blockIdx int) {
	for blockIdx >= len(s.blocks) {
		s.blocks = append(s.blocks, [blockSize]any{})
		s.filled = append(s.filled, [blockSize]bool{})
	}
}

func (s *sparseStore) set(index uint32, value any) {
	blockIdx, slotIdx := int(index)/blockSize, int(index)%blockSize
	s.ensureBlock(blockIdx)
	if !s.filled[blockIdx][slotIdx] {
		s.count++
	}
	s.blocks[blockIdx][slotIdx] = value
	s.filled[blockIdx][slotIdx] = true
}

func (s *sparseStore) get(index uint32) (any, bool) {
	blockIdx, slotIdx := int(index)/blockSize, int(index)%blockSize
	if blockIdx >= len(s.blocks) || !s.filled[blockIdx][slotIdx] {
		return nil, false
	}
	return s.blocks[blockIdx][slotIdx], true
}

func (s *sparseStore) remove(index uint32) {
	blockIdx, slotIdx := int(index)/blockSize, int(index)%blockSize
	if blockIdx >= len(s.blocks) || !s.filled[blockIdx][slotIdx] {
		return
	}
	s.filled[blockIdx][slotIdx] = false
	s.blocks[blockIdx][slotIdx] = nil
	s.count--
}

func (s *sparseStore) has(index uint32) bool {
	blockIdx, slotIdx := int(index)/blockSize, int(index)%blockSize
	if blockIdx >= len(s.blocks) {
		return false
	}
	return s.filled[blockIdx][slotIdx]
}

func (s *sparseStore) len() int { return s.count }

func (s *sparseStore) iter() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for blockIdx := range s.blocks {
			for slotIdx := 0; slotIdx < blockSize; slotIdx++ {
				if s.filled[blockIdx][slotIdx] {
					if !yield(uint32(blockIdx*blockSize + slotIdx)) {
						return
					}
				}
			}
		}
	}
}

// tagStore is a presence-only component store backed by a Signature
// bitset, since a tag component's store is exactly the set of entity
// indices that have it (spec §3: "tag: set of Entity. No payload.").
type tagStore struct {
	present Signature
	count   int
}

func newTagStore() *tagStore {
	return &tagStore{}
}

func (t *tagStore) set(index uint32, _ any) {
	if !t.present.Has(ComponentId(index)) {
		t.count++
	}
	t.present.Set(ComponentId(index))
}

func (t *tagStore) get(index uint32) (any, bool) {
	if t.present.Has(ComponentId(index)) {
		return Present, true
	}
	return nil, false
}

func (t *tagStore) remove(index uint32) {
	if t.present.Has(ComponentId(index)) {
		t.count--
	}
	t.present.Clear(ComponentId(index))
}

func (t *tagStore) has(index uint32) bool {
	return t.present.Has(ComponentId(index))
}

func (t *tagStore) len() int { return t.count }

func (t *tagStore) iter() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for id := range t.present.Bits {
			if !yield(uint32(id)) {
				return
			}
		}
	}
}

func newStoreForKind(kind ComponentKind) componentStore {
	switch kind {
	case Tag:
		return newTagStore()
	default:
		// Dense aliases to Sparse per spec §9 until packed storage lands.
		return newSparseStore()
	}
}
