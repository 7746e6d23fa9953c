package ecs

import "iter"

// changeTracker holds the per-component added/removed/changed sets for
// the current frame (spec §4.5). Not grounded on any teacher file — the
// teacher has no change-tracking concept — but keyed the same way the
// rest of the package addresses entities directly by slot index, keeping
// the full EntityId (including generation) as the map value so accessors
// can hand back a reference that still resolves via Get/Has.
type changeTracker struct {
	added   map[ComponentId]map[uint32]EntityId
	removed map[ComponentId]map[uint32]EntityId
	changed map[ComponentId]map[uint32]EntityId
}

func newChangeTracker() *changeTracker {
	return &changeTracker{
		added:   make(map[ComponentId]map[uint32]EntityId),
		removed: make(map[ComponentId]map[uint32]EntityId),
		changed: make(map[ComponentId]map[uint32]EntityId),
	}
}

func setFor(m map[ComponentId]map[uint32]EntityId, c ComponentId) map[uint32]EntityId {
	set, ok := m[c]
	if !ok {
		set = make(map[uint32]EntityId)
		m[c] = set
	}
	return set
}

// onAdd records e as added for component c, cancelling any pending
// removal (spec §4.5 "onAdd ... remove from removed[c] if present").
func (ct *changeTracker) onAdd(c ComponentId, e EntityId) {
	setFor(ct.added, c)[e.Index()] = e
	delete(setFor(ct.removed, c), e.Index())
}

// onRemove cancels a same-frame add, or else records a removal and drops
// any pending change (spec §4.5 "onRemove").
func (ct *changeTracker) onRemove(c ComponentId, e EntityId) {
	added := setFor(ct.added, c)
	if _, ok := added[e.Index()]; ok {
		delete(added, e.Index())
		return
	}
	setFor(ct.removed, c)[e.Index()] = e
	delete(setFor(ct.changed, c), e.Index())
}

// onChange records e as changed for component c, unless it was already
// added this frame (still "new", per spec §4.5 "onChange").
func (ct *changeTracker) onChange(c ComponentId, e EntityId) {
	if _, ok := setFor(ct.added, c)[e.Index()]; ok {
		return
	}
	setFor(ct.changed, c)[e.Index()] = e
}

func (ct *changeTracker) clear() {
	ct.added = make(map[ComponentId]map[uint32]EntityId)
	ct.removed = make(map[ComponentId]map[uint32]EntityId)
	ct.changed = make(map[ComponentId]map[uint32]EntityId)
}

func entitySeq(set map[uint32]EntityId) iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for _, e := range set {
			if !yield(e) {
				return
			}
		}
	}
}

// Added returns entities that gained component c this frame.
func (w *World) Added(c ComponentId) iter.Seq[EntityId] {
	if w.changes == nil {
		return func(func(EntityId) bool) {}
	}
	return entitySeq(w.changes.added[c])
}

// Removed returns entities that lost component c this frame.
func (w *World) Removed(c ComponentId) iter.Seq[EntityId] {
	if w.changes == nil {
		return func(func(EntityId) bool) {}
	}
	return entitySeq(w.changes.removed[c])
}

// Changed returns entities whose component c value was overwritten this
// frame.
func (w *World) Changed(c ComponentId) iter.Seq[EntityId] {
	if w.changes == nil {
		return func(func(EntityId) bool) {}
	}
	return entitySeq(w.changes.changed[c])
}

// ClearChanges resets added/removed/changed for every component. Called
// automatically by Scheduler.Step at the end of each step.
func (w *World) ClearChanges() {
	if w.changes != nil {
		w.changes.clear()
	}
}

// TrackingChanges reports whether this world was constructed with
// Options.TrackChanges.
func (w *World) TrackingChanges() bool {
	return w.changes != nil
}
