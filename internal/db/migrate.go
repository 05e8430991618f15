package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/udisondev/skillcore/internal/db/migrations"
)

// RunMigrations applies the embedded migrations of dialect to sqlDB.
func RunMigrations(ctx context.Context, sqlDB *sql.DB, dialect goose.Dialect, dir string) error {
	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("opening %s migrations: %w", dir, err)
	}
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		slog.Debug("migration applied", "dialect", dialect, "source", r.Source.Path, "duration", r.Duration)
	}
	return nil
}
