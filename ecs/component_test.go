package ecs_test

import (
	"testing"

	"github.com/ironloom/ecsworld/ecs"
	"github.com/stretchr/testify/assert"
)

func TestComponentIdsAreSequentialAndDistinct(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	a := w.Component(ecs.ComponentOptions{Name: "A"})
	b := w.Component(ecs.ComponentOptions{Name: "B"})
	tag := w.Tag(ecs.ComponentOptions{Name: "Tag"})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, tag)
	assert.Equal(t, a+1, b)
	assert.Equal(t, b+1, tag)
}

// Dense storage is currently aliased to sparse (spec §9 open question).
func TestDenseComponentBehavesLikeSparse(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	speed := w.DenseComponent()
	e := w.Entity()

	assert.NoError(t, w.Set(e, speed, 5))
	v, ok := w.Get(e, speed)
	assert.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestTagGetReturnsPresentSentinel(t *testing.T) {
	w := ecs.NewWorld(ecs.Options{})
	frozen := w.Tag()
	e := w.Entity()
	assert.NoError(t, w.Add(e, frozen))

	v, ok := w.Get(e, frozen)
	assert.True(t, ok)
	assert.Equal(t, ecs.Present, v)
}

type debugLogger struct{ warnings []string }

func (d *debugLogger) Warn(msg string, kv ...any) { d.warnings = append(d.warnings, msg) }

func TestDebugModeRoutesBoundaryWarningsToLogger(t *testing.T) {
	logger := &debugLogger{}
	w := ecs.NewWorld(ecs.Options{Debug: true, Logger: logger})
	health := w.Component()
	ghost := ecs.NewEntityId(999, 0)

	_ = w.Set(ghost, health, 1)
	assert.NotEmpty(t, logger.warnings)
}

func TestWithoutDebugModeLoggerStaysSilent(t *testing.T) {
	logger := &debugLogger{}
	w := ecs.NewWorld(ecs.Options{Logger: logger})
	health := w.Component()
	ghost := ecs.NewEntityId(999, 0)

	_ = w.Set(ghost, health, 1)
	assert.Empty(t, logger.warnings)
}
