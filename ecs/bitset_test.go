package ecs_test

import (
	"testing"

	"github.com/ironloom/ecsworld/ecs"
	"github.com/stretchr/testify/assert"
)

func TestSignatureSetHasClear(t *testing.T) {
	sig := ecs.BuildSignature()
	a, b := ecs.ComponentId(3), ecs.ComponentId(70)

	sig.Set(a)
	sig.Set(b)
	assert.True(t, sig.Has(a))
	assert.True(t, sig.Has(b))
	assert.False(t, sig.Has(ecs.ComponentId(4)))

	sig.Clear(a)
	assert.False(t, sig.Has(a))
	assert.True(t, sig.Has(b))
}

func TestSignatureSupersetsAndIntersects(t *testing.T) {
	required := ecs.BuildSignature(1, 5)
	full := ecs.BuildSignature(1, 2, 5)
	partial := ecs.BuildSignature(1)

	assert.True(t, full.Supersets(required))
	assert.False(t, partial.Supersets(required))

	forbidden := ecs.BuildSignature(2)
	assert.True(t, full.Intersects(forbidden))
	assert.False(t, required.Intersects(forbidden))
}

func TestSignatureCountAndIsEmpty(t *testing.T) {
	var sig ecs.Signature
	assert.True(t, sig.IsEmpty())
	assert.Equal(t, 0, sig.Count())

	sig = ecs.BuildSignature(0, 64, 128)
	assert.False(t, sig.IsEmpty())
	assert.Equal(t, 3, sig.Count())
}

func TestSignatureBitsIterationOrder(t *testing.T) {
	sig := ecs.BuildSignature(130, 1, 64, 0)
	var seen []ecs.ComponentId
	for id := range sig.Bits {
		seen = append(seen, id)
	}
	assert.Equal(t, []ecs.ComponentId{0, 1, 64, 130}, seen)
}

func TestSignatureCloneIsIndependent(t *testing.T) {
	sig := ecs.BuildSignature(1)
	clone := sig.Clone()
	clone.Set(2)
	assert.False(t, sig.Has(2))
	assert.True(t, clone.Has(2))
}
