package ecs

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Phase is one bucket of a scheduler step, run in a fixed order
// (spec §4.7).
type Phase int

const (
	PreUpdate Phase = iota
	Update
	PostUpdate
	PreRender
	Render
)

// phaseOrder is the fixed execution order (spec §4.7).
var phaseOrder = [...]Phase{PreUpdate, Update, PostUpdate, PreRender, Render}

func (p Phase) String() string {
	switch p {
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	case PreRender:
		return "PreRender"
	case Render:
		return "Render"
	default:
		return "Phase(?)"
	}
}

// Access is diagnostic metadata describing which components a system
// touches. The core never enforces it at execution time (spec §4.7); it
// exists for diagnostics and future parallelization.
type Access struct {
	Reads  []ComponentId
	Writes []ComponentId
}

// SystemFunc is a system callback, invoked once per run with the frame's
// delta time.
type SystemFunc func(dt float64)

type registeredSystem struct {
	name    string
	phase   Phase
	access  Access
	fn      SystemFunc
	enabled bool
}

// Scheduler holds systems grouped by phase and runs them in fixed phase
// order, flushing the world's deferred command buffer before each phase
// (spec §4.7). Grounded on the teacher's scheduler.go (Scheduler,
// Register, Once, Run with context+time.Ticker), generalized from a
// single unordered system list with reflection-discovered Query[T]
// fields to named, phase-bucketed systems with explicit duplicate/
// unknown-name errors, since this world has no reflection-based query
// wiring to drive.
type Scheduler struct {
	world   *World
	byName  map[string]*registeredSystem
	byPhase map[Phase][]*registeredSystem
}

// NewScheduler creates a scheduler bound to world.
func NewScheduler(world *World) *Scheduler {
	return &Scheduler{
		world:   world,
		byName:  make(map[string]*registeredSystem),
		byPhase: make(map[Phase][]*registeredSystem),
	}
}

// AddSystem registers a system under name in the given phase. Rejects
// duplicate names (spec §4.7).
func (s *Scheduler) AddSystem(name string, phase Phase, access Access, fn SystemFunc) error {
	if _, exists := s.byName[name]; exists {
		s.world.warn("duplicate system name", "name", name)
		return errors.Wrapf(ErrDuplicateSystem, "system %q", name)
	}
	sys := &registeredSystem{name: name, phase: phase, access: access, fn: fn, enabled: true}
	s.byName[name] = sys
	s.byPhase[phase] = append(s.byPhase[phase], sys)
	return nil
}

func (s *Scheduler) lookup(name string) (*registeredSystem, error) {
	sys, ok := s.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSystem, "system %q", name)
	}
	return sys, nil
}

// RemoveSystem unregisters a system by name.
func (s *Scheduler) RemoveSystem(name string) error {
	sys, err := s.lookup(name)
	if err != nil {
		return err
	}
	delete(s.byName, name)
	list := s.byPhase[sys.phase]
	for i, other := range list {
		if other == sys {
			s.byPhase[sys.phase] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

// EnableSystem re-enables a previously disabled system.
func (s *Scheduler) EnableSystem(name string) error {
	sys, err := s.lookup(name)
	if err != nil {
		return err
	}
	sys.enabled = true
	return nil
}

// DisableSystem disables a system without removing it; RunPhase skips
// disabled systems.
func (s *Scheduler) DisableSystem(name string) error {
	sys, err := s.lookup(name)
	if err != nil {
		return err
	}
	sys.enabled = false
	return nil
}

// RunPhase invokes every enabled system in phase, in insertion order.
func (s *Scheduler) RunPhase(phase Phase, dt float64) {
	for _, sys := range s.byPhase[phase] {
		if sys.enabled {
			sys.fn(dt)
		}
	}
}

// RunSystems runs every phase in fixed order, without flushing commands
// or clearing changes — use Step for the full per-frame contract.
func (s *Scheduler) RunSystems(dt float64) {
	for _, phase := range phaseOrder {
		s.RunPhase(phase, dt)
	}
}

// Step executes one full frame (spec §4.7): flush pending commands,
// then for each phase in order flush again and run it, then clear
// change sets if change tracking is enabled.
func (s *Scheduler) Step(dt float64) {
	s.world.Flush()
	for _, phase := range phaseOrder {
		s.world.Flush()
		s.RunPhase(phase, dt)
	}
	if s.world.TrackingChanges() {
		s.world.ClearChanges()
	}
}

// Run ticks Step on interval until ctx is cancelled. Adapted from the
// teacher's scheduler.go Run method; a convenience driver that does not
// change Step's synchronous, single-threaded contract (spec §5).
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Step(dt)
		}
	}
}
