package ecs_test

import (
	"testing"

	"github.com/ironloom/ecsworld/ecs"
	"github.com/stretchr/testify/assert"
)

// Scenario E2 — deferred destruction during query.
func TestDeferredDestructionDuringQueryScenario(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	health := w.Component()

	e1 := w.Entity()
	e2 := w.Entity()
	e3 := w.Entity()
	assert.NoError(t, w.Set(e1, health, 100))
	assert.NoError(t, w.Set(e2, health, 0))
	assert.NoError(t, w.Set(e3, health, 50))

	var yielded []ecs.EntityId
	for e, values := range w.Query(health).Iter() {
		yielded = append(yielded, e)
		if values[0].(int) <= 0 {
			w.DeferDestroy(e)
		}
	}
	assert.ElementsMatch(t, []ecs.EntityId{e1, e2, e3}, yielded, "iteration must not be disturbed by a destroy enqueued mid-pass")

	w.Flush()
	assert.True(t, w.Alive(e1))
	assert.False(t, w.Alive(e2))
	assert.True(t, w.Alive(e3))
}

// B1: a deferred remove queued against an entity that is destroyed and
// whose index is reused before flush must not corrupt the new occupant.
func TestDeferredRemoveAgainstStaleGenerationDoesNotCorruptReusedIndex(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	health := w.Component()

	stale := w.Entity()
	assert.NoError(t, w.Set(stale, health, 100))

	w.DeferRemove(stale, health)
	w.DeferDestroy(stale)
	w.Flush()

	fresh := w.Entity()
	assert.Equal(t, stale.Index(), fresh.Index(), "freed index must be reused")
	assert.NotEqual(t, stale.Generation(), fresh.Generation())
	assert.NoError(t, w.Set(fresh, health, 42))

	w.DeferRemove(stale, health)
	w.Flush()

	v, ok := w.Get(fresh, health)
	assert.True(t, ok, "stale-generation deferred remove must not delete the new occupant's component")
	assert.Equal(t, 42, v)
}

// B2: deferSpawn with a callback that itself enqueues further commands;
// all enqueued work completes within the same flush.
func TestDeferSpawnCallbackCompletesWithinSameFlush(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	tag := w.Tag()

	var child ecs.EntityId
	w.DeferSpawn(func(parent ecs.EntityId) {
		w.DeferAdd(parent, tag)
		w.DeferSpawn(func(c ecs.EntityId) {
			child = c
			w.DeferAdd(c, tag)
		})
	})

	w.Flush()
	assert.False(t, w.HasPendingCommands())
	assert.NotZero(t, child)
	assert.True(t, w.Has(child, tag))
}

// I5: after flush, no pending commands remain, and applying commands
// directly one-by-one yields the same final state as deferring them.
func TestFlushMatchesDirectApplication(t *testing.T) {
	health := func(w *ecs.World) ecs.ComponentId { return w.Component() }

	direct := ecs.NewWorld(ecs.Options{})
	hDirect := health(direct)
	eDirect := direct.Entity()
	assert.NoError(t, direct.Set(eDirect, hDirect, 10))
	assert.NoError(t, direct.Remove(eDirect, hDirect))
	assert.NoError(t, direct.Set(eDirect, hDirect, 20))

	deferred := ecs.NewWorld(ecs.Options{})
	hDeferred := health(deferred)
	eDeferred := deferred.Entity()
	deferred.Defer()
	assert.NoError(t, deferred.Set(eDeferred, hDeferred, 10))
	assert.NoError(t, deferred.Remove(eDeferred, hDeferred))
	assert.NoError(t, deferred.Set(eDeferred, hDeferred, 20))
	assert.True(t, deferred.HasPendingCommands())
	deferred.Flush()

	assert.False(t, deferred.HasPendingCommands())
	dv, _ := direct.Get(eDirect, hDirect)
	fv, _ := deferred.Get(eDeferred, hDeferred)
	assert.Equal(t, dv, fv)
}

func TestFlushPreservesGlobalInsertionOrderAcrossKinds(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	health := w.Component()
	tag := w.Tag()
	e := w.Entity()

	var order []string
	w.OnAdd(health, func(ecs.EntityId, any) { order = append(order, "set") })
	w.OnAdd(tag, func(ecs.EntityId, any) { order = append(order, "add") })
	w.OnRemove(health, func(ecs.EntityId, any) { order = append(order, "remove") })

	w.DeferSet(e, health, 1)
	w.DeferAdd(e, tag)
	w.DeferRemove(e, health)
	w.Flush()

	assert.Equal(t, []string{"set", "add", "remove"}, order)
}

func TestFlushIsNotReentrant(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	tag := w.Tag()
	e := w.Entity()

	w.DeferSpawn(func(ecs.EntityId) {
		// A Flush called from inside a spawn callback must be a no-op;
		// the DeferAdd below is still picked up by the enclosing drain.
		w.Flush()
		w.DeferAdd(e, tag)
	})
	w.Flush()
	assert.True(t, w.Has(e, tag))
}

func TestDeferredModeCapturesDirectMutatorsOnly(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	health := w.Component()
	w.Defer()

	e := w.Entity() // Entity() always allocates immediately
	assert.True(t, w.Alive(e))

	assert.NoError(t, w.Set(e, health, 1))
	_, ok := w.Get(e, health)
	assert.False(t, ok, "Set is captured by deferred mode and must not apply immediately")

	w.Flush()
	v, ok := w.Get(e, health)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
