package main

import (
	"math/rand"
	"strconv"

	"github.com/ironloom/ecsworld/ecs"
)

// stressComponent is a fixed-size payload used to approximate real
// gameplay component sizes without generating per-component Go types
// (the teacher's code generator produced one named struct per
// component; this stress harness needs only their shape, not their
// names).
type stressComponent struct {
	values [4]float64
}

// registerStressComponents registers n sparse components, replacing the
// teacher's RegisterAllGeneratedComponents (which wired in N generated
// component-type registrations from codegen output this module does not
// carry).
func registerStressComponents(world *ecs.World, n int) []ecs.ComponentId {
	ids := make([]ecs.ComponentId, n)
	for i := range ids {
		ids[i] = world.Component()
	}
	return ids
}

// registerStressSystems registers m systems spread evenly across the
// five phases, each touching a small random slice of components. This
// stands in for the teacher's RegisterAllGeneratedSystems.
func registerStressSystems(world *ecs.World, scheduler *ecs.Scheduler, components []ecs.ComponentId, m int) {
	phases := [...]ecs.Phase{ecs.PreUpdate, ecs.Update, ecs.PostUpdate, ecs.PreRender, ecs.Render}
	for i := 0; i < m; i++ {
		touch := pickComponents(components, 1+rand.Intn(3))
		phase := phases[i%len(phases)]
		name := componentNameForSystem(i)
		fn := makeStressSystem(world, touch)
		// Duplicate names cannot occur here (i is unique), so the error
		// is impossible and discarded.
		_ = scheduler.AddSystem(name, phase, ecs.Access{Reads: touch}, fn)
	}
}

func componentNameForSystem(i int) string {
	return "stress-system-" + strconv.Itoa(i)
}

func pickComponents(components []ecs.ComponentId, n int) []ecs.ComponentId {
	if n > len(components) {
		n = len(components)
	}
	picked := make([]ecs.ComponentId, n)
	for i, idx := range rand.Perm(len(components))[:n] {
		picked[i] = components[idx]
	}
	return picked
}

// makeStressSystem returns a system that queries every entity holding
// touch's first component and nudges each value field, approximating a
// real per-frame read-modify-write workload.
func makeStressSystem(world *ecs.World, touch []ecs.ComponentId) ecs.SystemFunc {
	anchor := touch[0]
	return func(dt float64) {
		for e, values := range world.Query(anchor).Iter() {
			c, ok := values[0].(stressComponent)
			if !ok {
				continue
			}
			for i := range c.values {
				c.values[i] += dt
			}
			_ = world.Set(e, anchor, c)
		}
	}
}

// spawnRandomEntity creates an entity and sets numComponents randomly
// chosen components on it, adapted from the teacher's
// SpawnRandomEntity(storage, numComponents).
func spawnRandomEntity(world *ecs.World, components []ecs.ComponentId, numComponents int) ecs.EntityId {
	e := world.Entity()
	if numComponents > len(components) {
		numComponents = len(components)
	}
	perm := rand.Perm(len(components))[:numComponents]
	for _, idx := range perm {
		_ = world.Set(e, components[idx], stressComponent{})
	}
	return e
}
