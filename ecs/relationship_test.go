package ecs_test

import (
	"testing"

	"github.com/ironloom/ecsworld/ecs"
	"github.com/stretchr/testify/assert"
)

// L3: relate then getRelation, then unrelate then hasRelation = false.
func TestRelateGetUnrelate(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	childOf := w.Component()
	parent := w.Entity()
	child := w.Entity()

	assert.NoError(t, w.Relate(child, childOf, parent, "payload"))
	v, ok := w.GetRelation(child, childOf, parent)
	assert.True(t, ok)
	assert.Equal(t, "payload", v)
	assert.True(t, w.HasRelation(child, childOf, parent))

	assert.NoError(t, w.Unrelate(child, childOf, parent))
	assert.False(t, w.HasRelation(child, childOf, parent))
}

// I2: triples are reachable through both the forward and reverse index.
func TestRelationshipForwardAndReverseIndices(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	likes := w.Component()
	a := w.Entity()
	b := w.Entity()
	c := w.Entity()

	assert.NoError(t, w.Relate(a, likes, b))
	assert.NoError(t, w.Relate(a, likes, c))
	assert.NoError(t, w.Relate(c, likes, b))

	targets := w.GetTargets(a, likes)
	var targetIds []ecs.EntityId
	for _, r := range targets {
		targetIds = append(targetIds, r.Entity)
	}
	assert.ElementsMatch(t, []ecs.EntityId{b, c}, targetIds)

	sources := w.GetSources(likes, b)
	var sourceIds []ecs.EntityId
	for _, r := range sources {
		sourceIds = append(sourceIds, r.Entity)
	}
	assert.ElementsMatch(t, []ecs.EntityId{a, c}, sourceIds)
}

// Scenario E4 — relation cleanup on destroy.
func TestRelationCleanupOnDestroyScenario(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	childOf := w.Component()
	parent := w.Entity()
	child := w.Entity()

	assert.NoError(t, w.Relate(child, childOf, parent))
	assert.NoError(t, w.Destroy(parent))

	assert.Empty(t, w.GetSources(childOf, parent))
	assert.False(t, w.HasRelation(child, childOf, parent))
}

func TestDestroyCleansUpRelationsWhereEntityIsSource(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	likes := w.Component()
	a := w.Entity()
	b := w.Entity()

	assert.NoError(t, w.Relate(a, likes, b))
	assert.NoError(t, w.Destroy(a))

	assert.Empty(t, w.GetTargets(a, likes))
	assert.Empty(t, w.GetSources(likes, b))
}

func TestRelateIsIdempotentPerTriple(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	likes := w.Component()
	a := w.Entity()
	b := w.Entity()

	assert.NoError(t, w.Relate(a, likes, b, "first"))
	assert.NoError(t, w.Relate(a, likes, b, "second"))

	v, _ := w.GetRelation(a, likes, b)
	assert.Equal(t, "second", v, "re-relating the same triple overwrites the payload in place")
	assert.Len(t, w.GetTargets(a, likes), 1)
}

func TestRelateRejectsNonAliveEndpoints(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	likes := w.Component()
	a := w.Entity()
	b := w.Entity()
	assert.NoError(t, w.Destroy(b))

	err := w.Relate(a, likes, b)
	assert.ErrorIs(t, err, ecs.ErrUnknownEntity)
}
