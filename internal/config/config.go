package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when SKILLSIM_CONFIG is unset.
const DefaultPath = "config/skillsim.yaml"

// Sim holds all configuration for the skill simulator.
type Sim struct {
	// Simulation
	TickRate int           `yaml:"tick_rate" env:"SKILLSIM_TICK_RATE"` // Hz
	Duration time.Duration `yaml:"duration" env:"SKILLSIM_DURATION"`   // 0 runs until a signal

	// Catalog
	DataDir   string `yaml:"data_dir" env:"SKILLSIM_DATA_DIR"`
	WatchData bool   `yaml:"watch_data" env:"SKILLSIM_WATCH_DATA"`

	// Logging
	LogLevel string `yaml:"log_level" env:"SKILLSIM_LOG_LEVEL"` // debug, info, warn, error

	// Snapshot logging period, 0 disables
	SnapshotEvery time.Duration `yaml:"snapshot_every" env:"SKILLSIM_SNAPSHOT_EVERY"`

	Database DatabaseConfig `yaml:"database"`
	Arena    ArenaConfig    `yaml:"arena"`
}

// DatabaseConfig selects the skill store. An empty driver disables
// persistence.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"SKILLSIM_DB_DRIVER"` // sqlite or postgres
	DSN    string `yaml:"dsn" env:"SKILLSIM_DB_DSN"`
}

// ArenaConfig describes the seeded arena.
type ArenaConfig struct {
	// SeedEntities maps archetype names to how many entities to spawn.
	SeedEntities map[string]int `yaml:"seed_entities"`
	// Radius of the ring the entities are placed on.
	Radius float64 `yaml:"radius"`
}

// DefaultSim returns Sim config with sensible defaults.
func DefaultSim() Sim {
	return Sim{
		TickRate:      30,
		DataDir:       "data",
		LogLevel:      "info",
		SnapshotEvery: 5 * time.Second,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "skillsim.db",
		},
		Arena: ArenaConfig{
			SeedEntities: map[string]int{
				"knight": 2,
				"mage":   1,
				"orc":    2,
				"goblin": 3,
			},
			Radius: 12,
		},
	}
}

// LoadSim loads sim config from a YAML file and applies the SKILLSIM_*
// environment on top. If the file doesn't exist, the defaults are used.
func LoadSim(path string) (Sim, error) {
	cfg := DefaultSim()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		// Seeds in the file replace the default set.
		if hasArenaSeeds(data) {
			cfg.Arena.SeedEntities = nil
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func hasArenaSeeds(data []byte) bool {
	var probe struct {
		Arena struct {
			SeedEntities yaml.Node `yaml:"seed_entities"`
		} `yaml:"arena"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	return !probe.Arena.SeedEntities.IsZero()
}

// Validate reports the first invalid field.
func (c Sim) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %s", c.Duration)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is empty")
	}
	switch c.Database.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver != "" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is empty for driver %s", c.Database.Driver)
	}
	for name, n := range c.Arena.SeedEntities {
		if n < 0 {
			return fmt.Errorf("arena seed %s: negative count %d", name, n)
		}
	}
	return nil
}

// TickInterval returns the wall-clock time between ticks.
func (c Sim) TickInterval() time.Duration {
	return time.Second / time.Duration(max(1, c.TickRate))
}
