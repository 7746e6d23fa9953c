package ecs

import (
	"github.com/pkg/errors"
)

// Options configures a World at construction time (spec §6).
type Options struct {
	// TrackChanges enables the per-component added/removed/changed sets
	// (spec §4.5).
	TrackChanges bool
	// Debug routes silent no-op boundaries through Logger.Warn.
	Debug bool
	// Logger receives debug warnings. Defaults to a no-op logger.
	Logger Logger
}

// World owns every entity, component store, relationship index, cache,
// and buffer (spec §5: "the world owns all entity registries, stores,
// indices, caches, and buffers exclusively").
type World struct {
	opts Options
	log  Logger

	slots    []entitySlot
	freeList []uint32

	components []componentDescriptor

	relations *relationIndex
	changes   *changeTracker
	commands  *Commands
	deferred  bool
	flushing  bool

	prefabs map[string]*Prefab

	queryCache map[string]*queryCacheEntry
	epoch      uint64

	nextHookToken uint64
}

// NewWorld constructs an empty World.
func NewWorld(opts Options) *World {
	if opts.Logger == nil {
		opts.Logger = defaultLogger
	}
	w := &World{
		opts:       opts,
		log:        opts.Logger,
		relations:  newRelationIndex(),
		prefabs:    make(map[string]*Prefab),
		queryCache: make(map[string]*queryCacheEntry),
		commands:   newCommands(),
	}
	if opts.TrackChanges {
		w.changes = newChangeTracker()
	}
	return w
}

func (w *World) warn(msg string, kv ...any) {
	if w.opts.Debug {
		w.log.Warn(msg, kv...)
	}
}

func (w *World) bumpEpoch() { w.epoch++ }

// Component registers a new component type and returns its id. Never
// fails (spec §4.1).
func (w *World) Component(opts ...ComponentOptions) ComponentId {
	var o ComponentOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	id := ComponentId(len(w.components))
	w.components = append(w.components, componentDescriptor{
		kind:  Sparse,
		name:  o.Name,
		store: newStoreForKind(Sparse),
	})
	return id
}

// DenseComponent registers a component declared with Dense storage
// intent (spec §3/§9: currently aliased to sparse).
func (w *World) DenseComponent(opts ...ComponentOptions) ComponentId {
	id := w.Component(opts...)
	w.components[id].kind = Dense
	return id
}

// Tag registers a presence-only component and returns its id.
func (w *World) Tag(opts ...ComponentOptions) ComponentId {
	var o ComponentOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	id := ComponentId(len(w.components))
	w.components = append(w.components, componentDescriptor{
		kind:  Tag,
		name:  o.Name,
		store: newStoreForKind(Tag),
	})
	return id
}

func (w *World) descriptor(c ComponentId) (*componentDescriptor, error) {
	if int(c) >= len(w.components) {
		return nil, errors.Wrapf(ErrUnknownComponent, "component %d", c)
	}
	return &w.components[c], nil
}

// Alive reports whether e refers to a currently live entity.
func (w *World) Alive(e EntityId) bool {
	idx := e.Index()
	if int(idx) >= len(w.slots) {
		return false
	}
	slot := &w.slots[idx]
	return slot.alive && slot.generation == e.Generation()
}

// Entity spawns a bare entity with an empty signature. Equivalent to
// Spawn() with no prefab. Direct Entity/Spawn calls always allocate
// immediately, even while deferred mode is active: deferred mode (§4.4)
// governs the direct mutators set/add/remove/destroy/relate/unrelate, not
// entity allocation — DeferSpawn is the explicit deferred-spawn path.
func (w *World) Entity() EntityId {
	return w.allocate()
}

func (w *World) allocate() EntityId {
	if n := len(w.freeList); n > 0 {
		idx := w.freeList[n-1]
		w.freeList = w.freeList[:n-1]
		slot := &w.slots[idx]
		slot.alive = true
		slot.signature = Signature{}
		return NewEntityId(idx, slot.generation)
	}
	idx := uint32(len(w.slots))
	w.slots = append(w.slots, entitySlot{generation: 0, alive: true})
	return NewEntityId(idx, 0)
}

// Spawn allocates an entity and, if a prefab (or registered prefab name)
// is given, applies its template in order. See spec §4.6.
func (w *World) Spawn(prefabOrName ...any) (EntityId, error) {
	if len(prefabOrName) == 0 {
		return w.Entity(), nil
	}
	prefab, err := w.resolvePrefab(prefabOrName[0])
	if err != nil {
		return 0, err
	}
	e := w.Entity()
	for _, entry := range prefab.template {
		if entry.isTag {
			if err := w.Add(e, entry.component); err != nil {
				return e, err
			}
			continue
		}
		if err := w.Set(e, entry.component, entry.value); err != nil {
			return e, err
		}
	}
	return e, nil
}

// Destroy removes every component from e, removes every relation triple
// referencing e, and bumps its generation so stale references resolve to
// not-alive (spec §4.1 "destroy").
func (w *World) Destroy(e EntityId) error {
	if w.deferred {
		w.commands.enqueue(command{kind: cmdDestroy, entity: e})
		return nil
	}
	return w.destroyNow(e)
}

func (w *World) destroyNow(e EntityId) error {
	if !w.Alive(e) {
		w.warn("destroy on non-alive entity", "entity", e)
		return nil
	}
	idx := e.Index()
	slot := &w.slots[idx]
	var present []ComponentId
	for c := range slot.signature.Bits {
		present = append(present, c)
	}
	for _, c := range present {
		w.removeComponentNow(e, c)
	}
	w.relations.removeEntity(e)
	slot.alive = false
	slot.generation++
	slot.signature = Signature{}
	w.freeList = append(w.freeList, idx)
	w.bumpEpoch()
	return nil
}

// Set stores v for component c on e (non-tag only). Fires onAdd the first
// time c appears on e, onChange thereafter (spec §4.1 "set").
func (w *World) Set(e EntityId, c ComponentId, v any) error {
	if w.deferred {
		w.commands.enqueue(command{kind: cmdSet, entity: e, component: c, value: v})
		return nil
	}
	return w.setNow(e, c, v)
}

func (w *World) setNow(e EntityId, c ComponentId, v any) error {
	desc, err := w.descriptor(c)
	if err != nil {
		return err
	}
	if desc.kind == Tag {
		w.warn("set on tag component", "component", c)
		return errors.Wrapf(ErrWrongKind, "component %d is a tag", c)
	}
	if !w.Alive(e) {
		w.warn("set on non-alive entity", "entity", e)
		return errors.Wrapf(ErrUnknownEntity, "entity %s", e)
	}
	idx := e.Index()
	slot := &w.slots[idx]
	firstAdd := !slot.signature.Has(c)
	if firstAdd {
		desc.store.set(uint32(idx), v)
		slot.signature.Set(c)
		w.bumpEpoch()
		w.fireAdd(desc, e, v)
		if w.changes != nil {
			w.changes.onAdd(c, e)
		}
		return nil
	}
	old, _ := desc.store.get(uint32(idx))
	desc.store.set(uint32(idx), v)
	w.fireChange(desc, e, old, v)
	if w.changes != nil {
		w.changes.onChange(c, e)
	}
	return nil
}

// Add marks tag component c present on e. No-op (no hook fired) if
// already present (spec §4.1 "add", law L4).
func (w *World) Add(e EntityId, c ComponentId) error {
	if w.deferred {
		w.commands.enqueue(command{kind: cmdAdd, entity: e, component: c})
		return nil
	}
	return w.addNow(e, c)
}

func (w *World) addNow(e EntityId, c ComponentId) error {
	desc, err := w.descriptor(c)
	if err != nil {
		return err
	}
	if desc.kind != Tag {
		w.warn("add on non-tag component", "component", c)
		return errors.Wrapf(ErrWrongKind, "component %d is not a tag", c)
	}
	if !w.Alive(e) {
		w.warn("add on non-alive entity", "entity", e)
		return nil
	}
	idx := e.Index()
	slot := &w.slots[idx]
	if slot.signature.Has(c) {
		return nil
	}
	desc.store.set(uint32(idx), Present)
	slot.signature.Set(c)
	w.bumpEpoch()
	w.fireAdd(desc, e, Present)
	if w.changes != nil {
		w.changes.onAdd(c, e)
	}
	return nil
}

// Remove clears component c from e, firing onRemove if it was present.
// No-op otherwise, including when e is not alive (spec §4.1 "remove",
// §7 "direct mutators silently no-op on destroy/remove", law L4).
func (w *World) Remove(e EntityId, c ComponentId) error {
	if w.deferred {
		w.commands.enqueue(command{kind: cmdRemove, entity: e, component: c})
		return nil
	}
	return w.removeComponentNow(e, c)
}

func (w *World) removeComponentNow(e EntityId, c ComponentId) error {
	desc, err := w.descriptor(c)
	if err != nil {
		return err
	}
	if !w.Alive(e) {
		w.warn("remove on non-alive entity", "entity", e)
		return nil
	}
	idx := e.Index()
	slot := &w.slots[idx]
	if !slot.signature.Has(c) {
		return nil
	}
	old, _ := desc.store.get(uint32(idx))
	desc.store.remove(uint32(idx))
	slot.signature.Clear(c)
	w.bumpEpoch()
	w.fireRemove(desc, e, old)
	if w.changes != nil {
		w.changes.onRemove(c, e)
	}
	return nil
}

// Get returns the value stored for (e, c), or (nil, false) if absent.
// Tag components always return (Present, true) or (nil, false).
func (w *World) Get(e EntityId, c ComponentId) (any, bool) {
	desc, err := w.descriptor(c)
	if err != nil || !w.Alive(e) {
		return nil, false
	}
	return desc.store.get(uint32(e.Index()))
}

// Has reports whether e is alive and has every listed component.
func (w *World) Has(e EntityId, cs ...ComponentId) bool {
	if !w.Alive(e) {
		return false
	}
	sig := w.slots[e.Index()].signature
	for _, c := range cs {
		if !sig.Has(c) {
			return false
		}
	}
	return true
}

func (w *World) fireAdd(desc *componentDescriptor, e EntityId, v any) {
	for _, h := range desc.onAdd {
		h.fn(e, v)
	}
}

func (w *World) fireRemove(desc *componentDescriptor, e EntityId, v any) {
	for _, h := range desc.onRemove {
		h.fn(e, v)
	}
}

func (w *World) fireChange(desc *componentDescriptor, e EntityId, oldV, newV any) {
	for _, h := range desc.onChange {
		h.fn(e, oldV, newV)
	}
}

// OnAdd subscribes fn to additions of component c. Returns a handle whose
// Unsubscribe removes the subscription.
func (w *World) OnAdd(c ComponentId, fn AddHook) HookHandle {
	desc, err := w.descriptor(c)
	if err != nil {
		return HookHandle{}
	}
	token := w.issueToken()
	desc.onAdd = append(desc.onAdd, hookEntry[AddHook]{token: token, fn: fn})
	return HookHandle{unsub: func() {
		d := &w.components[c]
		for i, h := range d.onAdd {
			if h.token == token {
				d.onAdd = append(d.onAdd[:i], d.onAdd[i+1:]...)
				break
			}
		}
	}}
}

// OnRemove subscribes fn to removals of component c.
func (w *World) OnRemove(c ComponentId, fn RemoveHook) HookHandle {
	desc, err := w.descriptor(c)
	if err != nil {
		return HookHandle{}
	}
	token := w.issueToken()
	desc.onRemove = append(desc.onRemove, hookEntry[RemoveHook]{token: token, fn: fn})
	return HookHandle{unsub: func() {
		d := &w.components[c]
		for i, h := range d.onRemove {
			if h.token == token {
				d.onRemove = append(d.onRemove[:i], d.onRemove[i+1:]...)
				break
			}
		}
	}}
}

// OnChange subscribes fn to value overwrites of component c.
func (w *World) OnChange(c ComponentId, fn ChangeHook) HookHandle {
	desc, err := w.descriptor(c)
	if err != nil {
		return HookHandle{}
	}
	token := w.issueToken()
	desc.onChange = append(desc.onChange, hookEntry[ChangeHook]{token: token, fn: fn})
	return HookHandle{unsub: func() {
		d := &w.components[c]
		for i, h := range d.onChange {
			if h.token == token {
				d.onChange = append(d.onChange[:i], d.onChange[i+1:]...)
				break
			}
		}
	}}
}

func (w *World) issueToken() uint64 {
	w.nextHookToken++
	return w.nextHookToken
}

// Stats is a read-only diagnostic snapshot (SPEC_FULL "World.Stats").
type Stats struct {
	LiveEntities    int
	ComponentCounts map[ComponentId]int
	RelationTriples int
	PendingCommands int
}

// Stats returns a snapshot of world size for diagnostics, mirroring the
// teacher's cmd/ecs-stress report generator without its UI dependencies.
func (w *World) Stats() Stats {
	live := 0
	for _, s := range w.slots {
		if s.alive {
			live++
		}
	}
	counts := make(map[ComponentId]int, len(w.components))
	for i, d := range w.components {
		counts[ComponentId(i)] = d.store.len()
	}
	return Stats{
		LiveEntities:    live,
		ComponentCounts: counts,
		RelationTriples: w.relations.tripleCount(),
		PendingCommands: len(w.commands.entries),
	}
}
