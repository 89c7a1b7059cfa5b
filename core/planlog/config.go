package planlog

import (
	"database/sql"
	"fmt"
	"slices"
)

// Config selects and configures the plan log backend.
type Config struct {
	Backend    string `json:"backend" yaml:"backend"`
	Path       string `json:"path" yaml:"path"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	// Driver is the database/sql driver of the sqlite backend.
	Driver string `json:"driver" yaml:"driver"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "plans.db"
		default:
			c.Path = "plans.jsonl"
		}
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
	if c.Driver == "" {
		c.Driver = DefaultSQLiteDriver
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Backend {
	case "none", "jsonl", "rotating":
		return nil
	case "sqlite":
		if !slices.Contains(sql.Drivers(), c.Driver) {
			return fmt.Errorf("planlog.driver %q is not registered", c.Driver)
		}
		return nil
	default:
		return fmt.Errorf("planlog.backend %q is not supported", c.Backend)
	}
}

// New opens the configured store.
func New(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return OpenSQLiteStore(cfg.Driver, cfg.Path)
	default:
		return NopStore{}, nil
	}
}
