package ecs

import "github.com/pkg/errors"

// Sentinel error kinds (spec §7). Use errors.Is against these to
// distinguish failure modes; wrapped instances carry the offending
// entity/component/name via errors.Wrapf.
var (
	// ErrUnknownEntity is returned when an operation targets an entity
	// whose generation no longer matches the registry (or that was never
	// allocated).
	ErrUnknownEntity = errors.New("ecs: unknown entity")

	// ErrUnknownComponent is returned when a ComponentId has not been
	// registered on this world.
	ErrUnknownComponent = errors.New("ecs: unknown component")

	// ErrWrongKind is returned by Set on a tag component, or Add on a
	// non-tag component.
	ErrWrongKind = errors.New("ecs: wrong component kind")

	// ErrDuplicateSystem is returned by AddSystem when the name is
	// already registered.
	ErrDuplicateSystem = errors.New("ecs: duplicate system")

	// ErrUnknownSystem is returned by RemoveSystem/EnableSystem/
	// DisableSystem for an unregistered name.
	ErrUnknownSystem = errors.New("ecs: unknown system")

	// ErrUnknownPrefab is returned by Spawn(name) for an unregistered
	// prefab name.
	ErrUnknownPrefab = errors.New("ecs: unknown prefab")
)
