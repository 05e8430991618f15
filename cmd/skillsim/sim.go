package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/udisondev/skillcore/internal/ai"
	"github.com/udisondev/skillcore/internal/data"
	"github.com/udisondev/skillcore/internal/db"
	"github.com/udisondev/skillcore/internal/game/arena"
	"github.com/udisondev/skillcore/internal/game/skill"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/world"
)

// member is a seeded entity with its persistence key.
type member struct {
	entity    *skill.Entity
	archetype string
	key       string
}

// sim owns the arena, its AI controllers and the catalog they were built
// from. After startup every method runs on the tick goroutine.
type sim struct {
	catalog *data.Catalog
	store   db.SkillStore
	arena   *arena.Arena
	ai      *ai.TickManager
	members []member
}

func newSim(cat *data.Catalog, store db.SkillStore, tickRate int) *sim {
	a := arena.New(world.New(world.DefaultBounds, world.DefaultRegionSize))
	return &sim{
		catalog: cat,
		store:   store,
		arena:   a,
		ai:      ai.NewTickManager(a, tickRate),
	}
}

// seed places the requested archetypes evenly on a ring facing its center,
// restores their saved skills and hands them to the AI.
func (s *sim) seed(ctx context.Context, seeds map[string]int, radius float64) error {
	var names []string
	for _, name := range slices.Sorted(maps.Keys(seeds)) {
		for range seeds[name] {
			names = append(names, name)
		}
	}

	counts := make(map[string]int)
	for i, name := range names {
		angle := 2 * math.Pi * float64(i) / float64(len(names))
		pos := model.NewVec3(radius*math.Cos(angle), 0, radius*math.Sin(angle))

		cfg, err := s.catalog.EntityConfig(name, pos)
		if err != nil {
			return err
		}
		cfg.Heading = pos.Scale(-1).Normalized()

		e, err := s.arena.AddEntity(cfg)
		if err != nil {
			return err
		}
		if err := s.catalog.SetupSkills(e, name); err != nil {
			return err
		}

		counts[name]++
		m := member{entity: e, archetype: name, key: fmt.Sprintf("%s-%d", name, counts[name])}
		if err := s.restore(ctx, m); err != nil {
			return err
		}
		s.members = append(s.members, m)
		s.ai.Register(e.ObjectID(), ai.NewBasicAI(e))
	}

	slog.Info("arena seeded", "entities", len(names), "radius", radius)
	return nil
}

func (s *sim) restore(ctx context.Context, m member) error {
	if s.store == nil {
		return nil
	}
	rows, err := s.store.Load(ctx, m.key)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring %s: %w", m.key, err)
	}
	restoreSkills(s.catalog, m.entity, rows)
	return nil
}

// reload rebuilds every member's skills from cat, keeping learned levels.
func (s *sim) reload(cat *data.Catalog) {
	for _, m := range s.members {
		learned := learnedSkills(m.key, m.entity, s.catalog.DigestHex())
		m.entity.Skills().UnregisterAll()
		if err := cat.SetupSkills(m.entity, m.archetype); err != nil {
			slog.Warn("archetype missing after reload",
				"entity", m.key,
				"archetype", m.archetype,
				"error", err)
			continue
		}
		restoreSkills(cat, m.entity, learned)
	}
	slog.Info("catalog reloaded",
		"from", s.catalog.DigestHex(),
		"to", cat.DigestHex(),
		"entities", len(s.members))
	s.catalog = cat
}

// save stores the learned skills of every member.
func (s *sim) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	digest := s.catalog.DigestHex()
	for _, m := range s.members {
		if err := s.store.Save(ctx, m.key, learnedSkills(m.key, m.entity, digest)); err != nil {
			return fmt.Errorf("saving %s: %w", m.key, err)
		}
	}
	slog.Info("learned skills saved", "entities", len(s.members), "digest", digest)
	return nil
}

func (s *sim) logSnapshot() {
	snap := s.arena.Snapshot()
	slog.Info("arena snapshot",
		"tick", snap.Tick,
		"elapsed", snap.Elapsed,
		"alive", snap.Alive,
		"entities", snap.Entities,
		"spawned", snap.Spawned,
		"aliveByCategory", snap.AliveByCategory)
}
