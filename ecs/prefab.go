package ecs

import "github.com/pkg/errors"

// prefabEntry is one (component, value) pair in a prefab template.
type prefabEntry struct {
	component ComponentId
	value     any
	isTag     bool
}

// Prefab is a named, ordered template of (component, default) pairs
// (spec §3 "Prefab").
type Prefab struct {
	name     string
	template []prefabEntry
}

// PrefabBuilder accumulates a prefab's template entries (spec §4.6).
// Grounded on the teacher's fluent builder-returns-self idiom
// (View.Spawn, Commands.Defer... chaining).
type PrefabBuilder struct {
	world   *World
	entries []prefabEntry
}

// PrefabOf starts a new prefab builder.
func (w *World) PrefabOf() *PrefabBuilder {
	return &PrefabBuilder{world: w}
}

// With appends (c, v) to the template. If v is omitted, c must be a tag
// component.
func (b *PrefabBuilder) With(c ComponentId, v ...any) *PrefabBuilder {
	entry := prefabEntry{component: c}
	if len(v) > 0 {
		entry.value = v[0]
	} else {
		entry.isTag = true
	}
	b.entries = append(b.entries, entry)
	return b
}

// Extend appends another prefab's template entries ahead of this
// builder's own entries, letting one prefab compose/override another.
// Not named by spec.md, but nothing in it forbids composing templates,
// and it follows directly from the builder's existing append-only shape
// (SPEC_FULL.md "Prefab inheritance via composition").
func (b *PrefabBuilder) Extend(other *Prefab) *PrefabBuilder {
	if other == nil {
		return b
	}
	b.entries = append(append([]prefabEntry(nil), other.template...), b.entries...)
	return b
}

// Build finalizes the template. If name is given, it is registered in
// the prefab registry, replacing any prior entry under that name (with a
// debug warning).
func (b *PrefabBuilder) Build(name ...string) *Prefab {
	p := &Prefab{template: append([]prefabEntry(nil), b.entries...)}
	if len(name) == 0 {
		return p
	}
	p.name = name[0]
	if _, exists := b.world.prefabs[p.name]; exists {
		b.world.warn("prefab redefinition", "name", p.name)
	}
	b.world.prefabs[p.name] = p
	return p
}

// PrefabByName retrieves a previously registered template by name.
func (w *World) PrefabByName(name string) (*Prefab, error) {
	p, ok := w.prefabs[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPrefab, "prefab %q", name)
	}
	return p, nil
}

func (w *World) resolvePrefab(v any) (*Prefab, error) {
	switch t := v.(type) {
	case *Prefab:
		return t, nil
	case string:
		return w.PrefabByName(t)
	default:
		return nil, errors.Wrapf(ErrUnknownPrefab, "unsupported prefab reference %T", v)
	}
}
