package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps learned skills in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if err := RunMigrations(ctx, sqlDB, goose.DialectSQLite3, "sqlite"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLiteStore{db: sqlDB}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, entity string, skills []LearnedSkill) error {
	for _, sk := range skills {
		sk.Entity = entity
		if err := validate(sk); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM learned_skills WHERE entity = ?`, entity); err != nil {
		return fmt.Errorf("deleting skills of %s: %w", entity, err)
	}
	now := time.Now().UTC().UnixMilli()
	for _, sk := range skills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO learned_skills (entity, skill_code, level, digest, updated_at) VALUES (?, ?, ?, ?, ?)`,
			entity, sk.SkillCode, sk.Level, sk.Digest, now,
		); err != nil {
			return fmt.Errorf("inserting skill %s of %s: %w", sk.SkillCode, entity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing skills of %s: %w", entity, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, entity string) ([]LearnedSkill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT skill_code, level, digest, updated_at
		 FROM learned_skills WHERE entity = ?
		 ORDER BY skill_code`, entity)
	if err != nil {
		return nil, fmt.Errorf("querying skills of %s: %w", entity, err)
	}
	defer rows.Close()

	var out []LearnedSkill
	for rows.Next() {
		sk := LearnedSkill{Entity: entity}
		var updated int64
		if err := rows.Scan(&sk.SkillCode, &sk.Level, &sk.Digest, &updated); err != nil {
			return nil, fmt.Errorf("scanning skill row: %w", err)
		}
		sk.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skill rows: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("entity %s: %w", entity, ErrNotFound)
	}
	return out, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, sk LearnedSkill) error {
	if err := validate(sk); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO learned_skills (entity, skill_code, level, digest, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (entity, skill_code)
		 DO UPDATE SET level = excluded.level, digest = excluded.digest, updated_at = excluded.updated_at`,
		sk.Entity, sk.SkillCode, sk.Level, sk.Digest, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upserting skill %s of %s: %w", sk.SkillCode, sk.Entity, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, entity, skillCode string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM learned_skills WHERE entity = ? AND skill_code = ?`, entity, skillCode)
	if err != nil {
		return fmt.Errorf("deleting skill %s of %s: %w", skillCode, entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting skill %s of %s: %w", skillCode, entity, err)
	}
	if n == 0 {
		return fmt.Errorf("skill %s of %s: %w", skillCode, entity, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Entities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT entity FROM learned_skills ORDER BY entity`)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var entity string
		if err := rows.Scan(&entity); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity rows: %w", err)
	}
	return out, nil
}
