// Command skillsim runs the ability core in a headless arena: entities seeded
// from the data catalog fight under AI control until the configured duration
// elapses or a signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/skillcore/internal/ai"
	"github.com/udisondev/skillcore/internal/config"
	"github.com/udisondev/skillcore/internal/data"
	"github.com/udisondev/skillcore/internal/db"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.DefaultPath
	if p := os.Getenv("SKILLSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSim(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("skillsim starting",
		"config", cfgPath,
		"tick_rate", cfg.TickRate,
		"duration", cfg.Duration,
		"log_level", cfg.LogLevel)

	catalog, err := data.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("loading catalog %q: %w", cfg.DataDir, err)
	}

	var store db.SkillStore
	if cfg.Database.Driver != "" {
		store, err = db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
		}
		defer store.Close()
		slog.Info("skill store opened", "driver", cfg.Database.Driver)
	}

	s := newSim(catalog, store, cfg.TickRate)
	if err := s.seed(ctx, cfg.Arena.SeedEntities, cfg.Arena.Radius); err != nil {
		return fmt.Errorf("seeding arena: %w", err)
	}

	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.ai.Start(gctx); err != nil && !isShutdown(err) {
			return fmt.Errorf("AI tick manager: %w", err)
		}
		return nil
	})

	if cfg.SnapshotEvery > 0 {
		g.Go(func() error {
			return runSnapshots(gctx, s, cfg.SnapshotEvery)
		})
	}

	if cfg.WatchData {
		watcher, err := data.NewWatcher(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("watching %s: %w", cfg.DataDir, err)
		}
		g.Go(func() error {
			<-gctx.Done()
			return watcher.Close()
		})
		g.Go(func() error {
			return runReloads(gctx, s, watcher, cfg.DataDir)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("sim error: %w", err)
	}

	s.logSnapshot()
	// The tick loop has stopped; the parent context may already be canceled.
	saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancelSave()
	return s.save(saveCtx)
}

// runSnapshots logs an arena snapshot every period from the tick goroutine.
func runSnapshots(ctx context.Context, s *sim, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.ai.Enqueue(ctx, s.logSnapshot); err != nil {
				return nil
			}
		}
	}
}

// runReloads reloads the catalog on every watcher event. A catalog that fails
// to load is logged and the running one is kept.
func runReloads(ctx context.Context, s *sim, w *data.Watcher, dir string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "error", err)
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			slog.Info("catalog file changed", "path", path)
			cat, err := data.Load(dir)
			if err != nil {
				slog.Error("catalog reload failed, keeping the current one", "error", err)
				continue
			}
			if err := s.ai.Enqueue(ctx, func() { s.reload(cat) }); err != nil {
				return nil
			}
		}
	}
}

func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
