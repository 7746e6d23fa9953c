package ecs

import (
	"github.com/kamstrup/intmap"
	"github.com/pkg/errors"
)

// relationIndex stores directed (source, relation, target) triples with
// optional payloads, indexed both by (source, relation) and
// (relation, target) as spec §4.3 requires. Grounded on the teacher's
// archetype.go use of intmap.Map[EntityId, ...] as the core integer-keyed
// index structure; the teacher has no relationship concept of its own, so
// the table shape follows spec §3/§4.3 directly.
type relationIndex struct {
	// forward[source][relation] is the ordered list of targets related
	// from source via relation.
	forward *intmap.Map[EntityId, map[ComponentId][]EntityId]
	// reverse[target][relation] is the ordered list of sources related
	// to target via relation.
	reverse *intmap.Map[EntityId, map[ComponentId][]EntityId]
	// payloads[source][relation][target] is the canonical presence+value
	// table: a present key (even with a nil value) means the triple
	// exists.
	payloads *intmap.Map[EntityId, map[ComponentId]map[EntityId]any]
	count    int
}

func newRelationIndex() *relationIndex {
	return &relationIndex{
		forward:  intmap.New[EntityId, map[ComponentId][]EntityId](64),
		reverse:  intmap.New[EntityId, map[ComponentId][]EntityId](64),
		payloads: intmap.New[EntityId, map[ComponentId]map[EntityId]any](64),
	}
}

func appendUnique(list []EntityId, id EntityId) ([]EntityId, bool) {
	for _, existing := range list {
		if existing == id {
			return list, false
		}
	}
	return append(list, id), true
}

func removeFromList(list []EntityId, id EntityId) []EntityId {
	for i, existing := range list {
		if existing == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (idx *relationIndex) relate(s EntityId, r ComponentId, t EntityId, payload any) {
	byRel, ok := idx.forward.Get(s)
	if !ok {
		byRel = make(map[ComponentId][]EntityId)
		idx.forward.Put(s, byRel)
	}
	list, _ := appendUnique(byRel[r], t)
	byRel[r] = list

	byRelR, ok := idx.reverse.Get(t)
	if !ok {
		byRelR = make(map[ComponentId][]EntityId)
		idx.reverse.Put(t, byRelR)
	}
	byRelR[r], _ = appendUnique(byRelR[r], s)

	byRelP, ok := idx.payloads.Get(s)
	if !ok {
		byRelP = make(map[ComponentId]map[EntityId]any)
		idx.payloads.Put(s, byRelP)
	}
	byTarget, ok := byRelP[r]
	if !ok {
		byTarget = make(map[EntityId]any)
		byRelP[r] = byTarget
	}
	if _, existed := byTarget[t]; !existed {
		idx.count++
	}
	byTarget[t] = payload
}

func (idx *relationIndex) unrelate(s EntityId, r ComponentId, t EntityId) {
	if byRel, ok := idx.forward.Get(s); ok {
		if list, ok := byRel[r]; ok {
			byRel[r] = removeFromList(list, t)
			if len(byRel[r]) == 0 {
				delete(byRel, r)
			}
		}
		if len(byRel) == 0 {
			idx.forward.Del(s)
		}
	}
	if byRel, ok := idx.reverse.Get(t); ok {
		if list, ok := byRel[r]; ok {
			byRel[r] = removeFromList(list, s)
			if len(byRel[r]) == 0 {
				delete(byRel, r)
			}
		}
		if len(byRel) == 0 {
			idx.reverse.Del(t)
		}
	}
	if byRel, ok := idx.payloads.Get(s); ok {
		if byTarget, ok := byRel[r]; ok {
			if _, existed := byTarget[t]; existed {
				delete(byTarget, t)
				idx.count--
			}
			if len(byTarget) == 0 {
				delete(byRel, r)
			}
		}
		if len(byRel) == 0 {
			idx.payloads.Del(s)
		}
	}
}

func (idx *relationIndex) hasRelation(s EntityId, r ComponentId, t EntityId) bool {
	_, ok := idx.getRelation(s, r, t)
	return ok
}

func (idx *relationIndex) getRelation(s EntityId, r ComponentId, t EntityId) (any, bool) {
	byRel, ok := idx.payloads.Get(s)
	if !ok {
		return nil, false
	}
	byTarget, ok := byRel[r]
	if !ok {
		return nil, false
	}
	v, ok := byTarget[t]
	return v, ok
}

// Relationship is one (target-or-source, payload) pair, as returned by
// GetTargets/GetSources.
type Relationship struct {
	Entity  EntityId
	Payload any
}

func (idx *relationIndex) getTargets(s EntityId, r ComponentId) []Relationship {
	byRel, ok := idx.forward.Get(s)
	if !ok {
		return nil
	}
	targets := byRel[r]
	if len(targets) == 0 {
		return nil
	}
	out := make([]Relationship, 0, len(targets))
	for _, t := range targets {
		v, _ := idx.getRelation(s, r, t)
		out = append(out, Relationship{Entity: t, Payload: v})
	}
	return out
}

func (idx *relationIndex) getSources(r ComponentId, t EntityId) []Relationship {
	byRel, ok := idx.reverse.Get(t)
	if !ok {
		return nil
	}
	sources := byRel[r]
	if len(sources) == 0 {
		return nil
	}
	out := make([]Relationship, 0, len(sources))
	for _, s := range sources {
		v, _ := idx.getRelation(s, r, t)
		out = append(out, Relationship{Entity: s, Payload: v})
	}
	return out
}

// removeEntity removes every triple where e appears as source or target
// (spec §4.3: "On destroy(e): remove every triple where e = s or e = t,
// enumerate via the two indices").
func (idx *relationIndex) removeEntity(e EntityId) {
	if byRel, ok := idx.forward.Get(e); ok {
		for r, targets := range byRel {
			for _, t := range append([]EntityId(nil), targets...) {
				idx.unrelate(e, r, t)
			}
		}
	}
	if byRel, ok := idx.reverse.Get(e); ok {
		for r, sources := range byRel {
			for _, s := range append([]EntityId(nil), sources...) {
				idx.unrelate(s, r, e)
			}
		}
	}
}

func (idx *relationIndex) tripleCount() int { return idx.count }

// Relate inserts or overwrites the payload for (s, r, t). Requires s and
// t alive and r a registered ComponentId (spec §4.3).
func (w *World) Relate(s EntityId, r ComponentId, t EntityId, payload ...any) error {
	var p any
	if len(payload) > 0 {
		p = payload[0]
	}
	if w.deferred {
		cmd := command{kind: cmdRelate, entity: s, relation: r, target: t}
		if len(payload) > 0 {
			cmd.payload, cmd.hasPayload = p, true
		}
		w.commands.enqueue(cmd)
		return nil
	}
	return w.relateNow(s, r, t, p)
}

func (w *World) relateNow(s EntityId, r ComponentId, t EntityId, payload any) error {
	if _, err := w.descriptor(r); err != nil {
		return err
	}
	if !w.Alive(s) {
		w.warn("relate from non-alive source", "entity", s)
		return errors.Wrapf(ErrUnknownEntity, "source %s", s)
	}
	if !w.Alive(t) {
		w.warn("relate to non-alive target", "entity", t)
		return errors.Wrapf(ErrUnknownEntity, "target %s", t)
	}
	w.relations.relate(s, r, t, payload)
	return nil
}

// Unrelate removes the (s, r, t) triple if present.
func (w *World) Unrelate(s EntityId, r ComponentId, t EntityId) error {
	if w.deferred {
		w.commands.enqueue(command{kind: cmdUnrelate, entity: s, relation: r, target: t})
		return nil
	}
	w.unrelateNow(s, r, t)
	return nil
}

func (w *World) unrelateNow(s EntityId, r ComponentId, t EntityId) {
	w.relations.unrelate(s, r, t)
}

// HasRelation reports whether triple (s, r, t) exists.
func (w *World) HasRelation(s EntityId, r ComponentId, t EntityId) bool {
	return w.relations.hasRelation(s, r, t)
}

// GetRelation returns the payload for (s, r, t), or (nil, false) if
// absent.
func (w *World) GetRelation(s EntityId, r ComponentId, t EntityId) (any, bool) {
	return w.relations.getRelation(s, r, t)
}

// GetTargets returns (target, payload) pairs for every triple (s, r, *),
// in insertion order.
func (w *World) GetTargets(s EntityId, r ComponentId) []Relationship {
	return w.relations.getTargets(s, r)
}

// GetSources returns (source, payload) pairs for every triple (*, r, t),
// in insertion order.
func (w *World) GetSources(r ComponentId, t EntityId) []Relationship {
	return w.relations.getSources(r, t)
}
