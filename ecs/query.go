package ecs

import (
	"iter"
	"strconv"
	"strings"
)

// queryCacheEntry is one cached pattern's materialized match list, tagged
// with the epoch it was built at (spec §4.2 "Query Cache Entry").
type queryCacheEntry struct {
	entities []EntityId
	epoch    uint64
}

// QueryBuilder accumulates a fetch/with/without access pattern. It is
// directly iterable via Iter/All — spec §4.2 treats the builder as
// "convertible to an iterator implicitly when fetched directly and
// explicitly via iter()"; both names are provided here as the same
// method so either calling style works.
//
// Grounded on the teacher's query.go (Query[T]: cached match list keyed
// by an archetype set, invalidated by an archetype-count epoch) and
// view.go's matchesArchetype, generalized from per-archetype matching to
// per-entity Signature matching, since a sparse-set world has no
// archetype table to cache against.
type QueryBuilder struct {
	world   *World
	fetch   []ComponentId
	with    []ComponentId
	without []ComponentId
}

// Query seeds a builder with the components to fetch (spec §4.2
// "query(c1,...,cn)").
func (w *World) Query(fetch ...ComponentId) *QueryBuilder {
	return &QueryBuilder{world: w, fetch: append([]ComponentId(nil), fetch...)}
}

// With adds required-but-not-fetched components to the pattern.
func (q *QueryBuilder) With(ids ...ComponentId) *QueryBuilder {
	q.with = append(q.with, ids...)
	return q
}

// Without adds forbidden components to the pattern.
func (q *QueryBuilder) Without(ids ...ComponentId) *QueryBuilder {
	q.without = append(q.without, ids...)
	return q
}

func (q *QueryBuilder) requiredForbidden() (Signature, Signature) {
	required := BuildSignature(q.fetch...)
	for _, id := range q.with {
		required.Set(id)
	}
	forbidden := BuildSignature(q.without...)
	return required, forbidden
}

// canonicalKey maps a (required, forbidden) pair to a cache key that is
// the same regardless of the order fetch/with ids were supplied in,
// since the match set only depends on the bit sets (spec §4.2 "a fetch
// list differing only in order maps to the same set of matches").
func canonicalKey(required, forbidden Signature) string {
	var b strings.Builder
	b.WriteString("r:")
	for id := range required.Bits {
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte(',')
	}
	b.WriteString("|f:")
	for id := range forbidden.Bits {
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte(',')
	}
	return b.String()
}

func (q *QueryBuilder) matches() []EntityId {
	w := q.world
	required, forbidden := q.requiredForbidden()
	key := canonicalKey(required, forbidden)
	if entry, ok := w.queryCache[key]; ok && entry.epoch == w.epoch {
		return entry.entities
	}
	entities := w.scan(required, forbidden)
	w.queryCache[key] = &queryCacheEntry{entities: entities, epoch: w.epoch}
	return entities
}

// scan performs the actual matching pass, implementing spec §4.2's
// "rare-first advisory": it anchors the scan on the required component
// with the fewest entities rather than walking every live entity.
func (w *World) scan(required, forbidden Signature) []EntityId {
	anchor := -1
	anchorLen := -1
	for id := range required.Bits {
		if int(id) >= len(w.components) {
			continue
		}
		if l := w.components[id].store.len(); anchorLen == -1 || l < anchorLen {
			anchorLen, anchor = l, int(id)
		}
	}

	var out []EntityId
	check := func(idx uint32) {
		slot := &w.slots[idx]
		if !slot.alive {
			return
		}
		if slot.signature.Supersets(required) && !slot.signature.Intersects(forbidden) {
			out = append(out, NewEntityId(idx, slot.generation))
		}
	}

	if anchor == -1 {
		for idx := range w.slots {
			check(uint32(idx))
		}
		return out
	}
	for idx := range w.components[anchor].store.iter() {
		check(idx)
	}
	return out
}

// Iter yields (entity, values) pairs for every match, values in fetch
// order, read live from the stores at yield time (spec §4.2 "Values
// reflect the store at the time of yield"). If a fetched component has
// been removed since the match list was cached, that entity is skipped
// rather than yielding a stale value — direct mutation during iteration
// is documented as producing undefined order, never corrupted data
// (spec §4.2 "iteration-during-mutation").
func (q *QueryBuilder) Iter() iter.Seq2[EntityId, []any] {
	entities := q.matches()
	fetch := q.fetch
	world := q.world
	return func(yield func(EntityId, []any) bool) {
		for _, e := range entities {
			values := make([]any, len(fetch))
			complete := true
			for i, c := range fetch {
				v, ok := world.Get(e, c)
				if !ok {
					complete = false
					break
				}
				values[i] = v
			}
			if !complete {
				continue
			}
			if !yield(e, values) {
				return
			}
		}
	}
}

// All is an alias of Iter for the "implicit iterator" calling style.
func (q *QueryBuilder) All() iter.Seq2[EntityId, []any] {
	return q.Iter()
}

// Values yields only the fetched component values, in fetch order.
func (q *QueryBuilder) Values() iter.Seq[[]any] {
	inner := q.Iter()
	return func(yield func([]any) bool) {
		for _, v := range inner {
			if !yield(v) {
				return
			}
		}
	}
}

// Entities yields only the matching entity ids.
func (q *QueryBuilder) Entities() iter.Seq[EntityId] {
	inner := q.Iter()
	return func(yield func(EntityId) bool) {
		for e := range inner {
			if !yield(e) {
				return
			}
		}
	}
}
