package ecs

// commandKind tags a queued deferred operation.
type commandKind int

const (
	cmdSpawn commandKind = iota
	cmdDestroy
	cmdAdd
	cmdSet
	cmdRemove
	cmdRelate
	cmdUnrelate
	cmdFn
)

// command is a single deferred operation. Adapted from the teacher's
// commands.go (Commands queues Spawn/Delete/AddComponent/RemoveComponent
// records), but collapsed into one tagged variant in a single ordered
// slice instead of five separate per-kind slices, because spec §3/§4.4
// requires a single strict insertion order across every command kind.
type command struct {
	kind       commandKind
	entity     EntityId
	component  ComponentId
	value      any
	relation   ComponentId
	target     EntityId
	payload    any
	hasPayload bool
	spawnedID  EntityId
	spawnCb    func(EntityId)
	fn         func()
}

// Commands is the deferred command buffer (spec §4.4): an append-only,
// strictly ordered log of spawn/destroy/add/set/remove/relate/unrelate
// operations, flushed in insertion order.
type Commands struct {
	entries []command
}

func newCommands() *Commands {
	return &Commands{}
}

func (c *Commands) enqueue(cmd command) {
	c.entries = append(c.entries, cmd)
}

// HasPendingCommands reports whether the buffer is non-empty.
func (w *World) HasPendingCommands() bool {
	return len(w.commands.entries) > 0
}

// Defer toggles deferred mode: while active, the direct mutators
// (Set/Add/Remove/Destroy/Relate/Unrelate) transparently enqueue instead
// of applying immediately (spec §4.4 "Deferred mode").
func (w *World) Defer() *World {
	w.deferred = true
	return w
}

// DeferSpawn allocates a tentative entity id immediately (so the caller
// can reference it in further deferred commands), appends a spawn record,
// and returns the world for chaining. If cb is non-nil, it runs during
// Flush immediately after this spawn record is consumed, and may itself
// enqueue further commands that flush within the same pass (spec §4.4
// "Spawn-callback contract", law B2).
func (w *World) DeferSpawn(cb func(EntityId)) *World {
	id := w.allocate()
	w.commands.enqueue(command{kind: cmdSpawn, spawnedID: id, spawnCb: cb})
	return w
}

// DeferDestroy queues a destroy operation.
func (w *World) DeferDestroy(e EntityId) *World {
	w.commands.enqueue(command{kind: cmdDestroy, entity: e})
	return w
}

// DeferAdd queues a tag-add operation.
func (w *World) DeferAdd(e EntityId, c ComponentId) *World {
	w.commands.enqueue(command{kind: cmdAdd, entity: e, component: c})
	return w
}

// DeferSet queues a set operation.
func (w *World) DeferSet(e EntityId, c ComponentId, v any) *World {
	w.commands.enqueue(command{kind: cmdSet, entity: e, component: c, value: v})
	return w
}

// DeferRemove queues a remove operation.
func (w *World) DeferRemove(e EntityId, c ComponentId) *World {
	w.commands.enqueue(command{kind: cmdRemove, entity: e, component: c})
	return w
}

// DeferRelate queues a relate operation. payload is optional.
func (w *World) DeferRelate(s EntityId, r ComponentId, t EntityId, payload ...any) *World {
	cmd := command{kind: cmdRelate, entity: s, relation: r, target: t}
	if len(payload) > 0 {
		cmd.payload = payload[0]
		cmd.hasPayload = true
	}
	w.commands.enqueue(cmd)
	return w
}

// DeferUnrelate queues an unrelate operation.
func (w *World) DeferUnrelate(s EntityId, r ComponentId, t EntityId) *World {
	w.commands.enqueue(command{kind: cmdUnrelate, entity: s, relation: r, target: t})
	return w
}

// deferFn queues an arbitrary callback, run in order during Flush. No
// other code in the package calls it at present.
func (w *World) deferFn(fn func()) *World {
	w.commands.enqueue(command{kind: cmdFn, fn: fn})
	return w
}

// Flush drains the buffer in insertion order, applying each command as
// the equivalent direct operation, then disables deferred mode. Flush is
// not re-entrant: a Flush invoked from within a spawn callback during an
// outer Flush is a no-op, and the commands it would have queued are
// instead picked up by the enclosing drain, because the loop below walks
// by index over a slice the callback is free to append to (spec §4.4,
// §5, law B2).
func (w *World) Flush() {
	if w.flushing {
		return
	}
	w.flushing = true
	defer func() {
		w.flushing = false
		w.deferred = false
	}()

	buf := w.commands
	for i := 0; i < len(buf.entries); i++ {
		cmd := buf.entries[i]
		switch cmd.kind {
		case cmdSpawn:
			// The entity was already allocated at DeferSpawn time; there
			// is nothing further to apply to storage.
			if cmd.spawnCb != nil {
				cmd.spawnCb(cmd.spawnedID)
			}
		case cmdDestroy:
			_ = w.destroyNow(cmd.entity)
		case cmdAdd:
			_ = w.addNow(cmd.entity, cmd.component)
		case cmdSet:
			_ = w.setNow(cmd.entity, cmd.component, cmd.value)
		case cmdRemove:
			_ = w.removeComponentNow(cmd.entity, cmd.component)
		case cmdRelate:
			if cmd.hasPayload {
				_ = w.relateNow(cmd.entity, cmd.relation, cmd.target, cmd.payload)
			} else {
				_ = w.relateNow(cmd.entity, cmd.relation, cmd.target, nil)
			}
		case cmdUnrelate:
			w.unrelateNow(cmd.entity, cmd.relation, cmd.target)
		case cmdFn:
			if cmd.fn != nil {
				cmd.fn()
			}
		}
	}
	buf.entries = buf.entries[:0]
}
