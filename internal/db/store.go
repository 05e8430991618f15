// Package db persists the skills entities have learned.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when an entity or skill row does not exist.
var ErrNotFound = errors.New("not found")

// LearnedSkill is one learned skill of an entity. Digest is the catalog
// digest the level was reached under.
type LearnedSkill struct {
	Entity    string
	SkillCode string
	Level     int
	Digest    string
	UpdatedAt time.Time
}

// SkillStore keeps learned skills per entity key.
type SkillStore interface {
	// Save replaces every learned skill of entity.
	Save(ctx context.Context, entity string, skills []LearnedSkill) error
	// Load returns the skills of entity ordered by code, or ErrNotFound.
	Load(ctx context.Context, entity string) ([]LearnedSkill, error)
	// Upsert stores one skill.
	Upsert(ctx context.Context, s LearnedSkill) error
	// Delete removes one skill, or returns ErrNotFound.
	Delete(ctx context.Context, entity, skillCode string) error
	// Entities returns every entity key with at least one skill, sorted.
	Entities(ctx context.Context) ([]string, error)
	Close() error
}

// Open opens the store for driver: "sqlite" or "postgres". Migrations are
// applied before it returns.
func Open(ctx context.Context, driver, dsn string) (SkillStore, error) {
	switch driver {
	case "sqlite":
		s, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

func validate(s LearnedSkill) error {
	if strings.TrimSpace(s.Entity) == "" {
		return fmt.Errorf("entity is required")
	}
	if strings.TrimSpace(s.SkillCode) == "" {
		return fmt.Errorf("skill code is required")
	}
	if s.Level <= 0 {
		return fmt.Errorf("skill %s: level must be positive, got %d", s.SkillCode, s.Level)
	}
	return nil
}
