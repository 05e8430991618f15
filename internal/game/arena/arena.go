// Package arena ties entities, the spatial index and spawned skill objects
// into one simulation stepped by Tick.
package arena

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/skillcore/internal/game/skill"
	"github.com/udisondev/skillcore/internal/world"
)

// DefaultMoveSpeed is the walking speed given to entities without a
// move speed stat.
const DefaultMoveSpeed = 3.0

// Arena owns every participant of a simulation. It is not safe for
// concurrent use; one goroutine calls Tick and the mutating methods.
type Arena struct {
	world     *world.World
	ids       *world.ObjectIDGenerator
	moveSpeed float64

	entities []*skill.Entity // ordered by object ID
	byID     map[uint32]*skill.Entity
	detach   map[uint32]func()

	spawned []skill.Spawned
	pending []skill.Spawned
	ticking bool

	ticks   uint64
	elapsed float64
}

// Option configures an Arena.
type Option func(*Arena)

// WithMoveSpeed sets the fallback walking speed of new entities.
func WithMoveSpeed(speed float64) Option {
	return func(a *Arena) { a.moveSpeed = speed }
}

// New creates an empty arena indexed by w.
func New(w *world.World, opts ...Option) *Arena {
	a := &Arena{
		world:     w,
		ids:       world.NewObjectIDGenerator(),
		moveSpeed: DefaultMoveSpeed,
		byID:      make(map[uint32]*skill.Entity),
		detach:    make(map[uint32]func()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Arena) World() *world.World { return a.world }
func (a *Arena) Ticks() uint64       { return a.ticks }

// Elapsed returns the simulated time in seconds.
func (a *Arena) Elapsed() float64 { return a.elapsed }

// AddEntity creates an entity, attaches a Mover and indexes it. A zero ID is
// replaced by the next ID of the entity's control type. Physics and Spawner
// always point at the arena.
func (a *Arena) AddEntity(cfg skill.EntityConfig) (*skill.Entity, error) {
	if cfg.ID == 0 {
		if cfg.ControlType == skill.ControlPlayer {
			cfg.ID = a.ids.NextPlayerID()
		} else {
			cfg.ID = a.ids.NextNpcID()
		}
	}
	if _, ok := a.byID[cfg.ID]; ok {
		return nil, fmt.Errorf("entity %d already in arena", cfg.ID)
	}
	cfg.Physics = a.world
	cfg.Spawner = a

	e := skill.NewEntity(cfg)
	e.SetMovement(skill.NewMover(e, a.moveSpeed))
	if err := a.world.AddObject(e); err != nil {
		return nil, fmt.Errorf("adding entity %s: %w", cfg.Name, err)
	}

	idx, _ := slices.BinarySearchFunc(a.entities, e.ObjectID(), func(x *skill.Entity, id uint32) int {
		return cmp.Compare(x.ObjectID(), id)
	})
	a.entities = slices.Insert(a.entities, idx, e)
	a.byID[e.ObjectID()] = e
	a.detach[e.ObjectID()] = e.OnDead(func(dead *skill.Entity) {
		slog.Debug("entity died", "entity", dead.String(), "tick", a.ticks)
	})

	slog.Debug("entity added",
		"entity", e.String(),
		"control", e.ControlType(),
		"categories", e.Categories())
	return e, nil
}

// RemoveEntity cancels the entity's skills and drops it from the arena.
func (a *Arena) RemoveEntity(objectID uint32) bool {
	e, ok := a.byID[objectID]
	if !ok {
		return false
	}
	e.Skills().CancelAll(true)
	a.detach[objectID]()

	delete(a.detach, objectID)
	delete(a.byID, objectID)
	a.entities = slices.DeleteFunc(a.entities, func(x *skill.Entity) bool { return x == e })
	a.world.RemoveObject(objectID)

	for _, other := range a.entities {
		if other.Target() == e {
			other.SetTarget(nil)
		}
	}

	slog.Debug("entity removed", "entity", e.String())
	return true
}

// Entity returns an entity by object ID.
func (a *Arena) Entity(objectID uint32) (*skill.Entity, bool) {
	e, ok := a.byID[objectID]
	return e, ok
}

// Entities returns the entities in object ID order. The slice must not be
// modified.
func (a *Arena) Entities() []*skill.Entity { return a.entities }

// Spawn adds a skill-spawned object. Objects spawned during Tick start
// updating on the next tick.
func (a *Arena) Spawn(obj skill.Spawned) {
	if a.ticking {
		a.pending = append(a.pending, obj)
		return
	}
	a.spawned = append(a.spawned, obj)
}

// SpawnedCount returns the number of live spawned objects, pending included.
func (a *Arena) SpawnedCount() int { return len(a.spawned) + len(a.pending) }

// Tick advances the arena by dt seconds: every entity in object ID order,
// then the spawned objects, then the spatial index.
func (a *Arena) Tick(dt float64) {
	a.ticking = true
	for _, e := range slices.Clone(a.entities) {
		e.Update(dt)
	}

	alive := a.spawned[:0]
	for _, obj := range a.spawned {
		if obj.Update(dt) {
			alive = append(alive, obj)
		}
	}
	clear(a.spawned[len(alive):])
	a.spawned = append(alive, a.pending...)
	clear(a.pending)
	a.pending = a.pending[:0]
	a.ticking = false

	a.world.RefreshAll()
	a.ticks++
	a.elapsed += dt
}

// Snapshot is a summary of the arena at one tick.
type Snapshot struct {
	Tick     uint64
	Elapsed  float64
	Entities int
	Alive    int
	Spawned  int
	// AliveByCategory counts living entities per category.
	AliveByCategory map[string]int
}

// Snapshot summarizes the current state.
func (a *Arena) Snapshot() Snapshot {
	s := Snapshot{
		Tick:            a.ticks,
		Elapsed:         a.elapsed,
		Entities:        len(a.entities),
		Spawned:         a.SpawnedCount(),
		AliveByCategory: make(map[string]int),
	}
	for _, e := range a.entities {
		if e.IsDead() {
			continue
		}
		s.Alive++
		for _, c := range e.Categories() {
			s.AliveByCategory[c]++
		}
	}
	return s
}
