package ecs_test

import (
	"fmt"
	"testing"

	"github.com/ironloom/ecsworld/ecs"
	"github.com/stretchr/testify/assert"
)

func TestEntityIdEncoding(t *testing.T) {
	id := ecs.NewEntityId(67890, 12345)
	assert.Equal(t, uint32(67890), id.Index())
	assert.Equal(t, uint32(12345), id.Generation())
}

func TestEntityIdEdgeCases(t *testing.T) {
	tests := []struct {
		index      uint32
		generation uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("index=%d,generation=%d", tt.index, tt.generation), func(t *testing.T) {
			id := ecs.NewEntityId(tt.index, tt.generation)
			assert.Equal(t, tt.index, id.Index())
			assert.Equal(t, tt.generation, id.Generation())
		})
	}
}

// I4: after destroy(e), the index may be reused but with a higher
// generation, and the stale id resolves to not-alive.
func TestDestroyBumpsGeneration(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	e1 := w.Entity()
	assert.True(t, w.Alive(e1))

	assert.NoError(t, w.Destroy(e1))
	assert.False(t, w.Alive(e1))

	e2 := w.Entity()
	assert.Equal(t, e1.Index(), e2.Index(), "freed index should be reused")
	assert.Greater(t, e2.Generation(), e1.Generation())
	assert.False(t, w.Alive(e1), "stale reference stays not-alive even once the index is reused")
	assert.True(t, w.Alive(e2))
}
