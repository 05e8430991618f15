package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresStore keeps learned skills in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres migrates the database at dsn and connects a pool to it.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	err = RunMigrations(ctx, sqlDB, goose.DialectPostgres, "postgres")
	_ = sqlDB.Close()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Pool returns the underlying pgx pool.
func (s *PostgresStore) Pool() *pgxpool.Pool { return s.pool }

func (s *PostgresStore) Save(ctx context.Context, entity string, skills []LearnedSkill) error {
	for _, sk := range skills {
		sk.Entity = entity
		if err := validate(sk); err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM learned_skills WHERE entity = $1`, entity); err != nil {
		return fmt.Errorf("deleting skills of %s: %w", entity, err)
	}
	for _, sk := range skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO learned_skills (entity, skill_code, level, digest) VALUES ($1, $2, $3, $4)`,
			entity, sk.SkillCode, sk.Level, sk.Digest,
		); err != nil {
			return fmt.Errorf("inserting skill %s of %s: %w", sk.SkillCode, entity, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing skills of %s: %w", entity, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, entity string) ([]LearnedSkill, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT skill_code, level, digest, updated_at
		 FROM learned_skills WHERE entity = $1
		 ORDER BY skill_code`, entity)
	if err != nil {
		return nil, fmt.Errorf("querying skills of %s: %w", entity, err)
	}
	defer rows.Close()

	var out []LearnedSkill
	for rows.Next() {
		sk := LearnedSkill{Entity: entity}
		if err := rows.Scan(&sk.SkillCode, &sk.Level, &sk.Digest, &sk.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning skill row: %w", err)
		}
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

func (s *PostgresStore) Upsert(ctx context.Context, sk LearnedSkill) error {
	if err := validate(sk); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO learned_skills (entity, skill_code, level, digest)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (entity, skill_code)
		 DO UPDATE SET level = $3, digest = $4, updated_at = now()`,
		sk.Entity, sk.SkillCode, sk.Level, sk.Digest,
	)
	if err != nil {
		return fmt.Errorf("upserting skill %s of %s: %w", sk.SkillCode, sk.Entity, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, entity, skillCode string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM learned_skills WHERE entity = $1 AND skill_code = $2`, entity, skillCode)
	if err != nil {
		return fmt.Errorf("deleting skill %s of %s: %w", skillCode, entity, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("skill %s of %s: %w", skillCode, entity, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Entities(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT entity FROM learned_skills ORDER BY entity`)
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
