package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evplanner/core/metrics"
	"github.com/kilianp07/evplanner/core/planlog"
	"github.com/kilianp07/evplanner/core/planner"
	"github.com/kilianp07/evplanner/infra/inference"
	"github.com/kilianp07/evplanner/infra/monitoring"
	"github.com/kilianp07/evplanner/infra/mqtt"
)

type Config struct {
	Server    ServerConfig      `json:"server"`
	Inference inference.Config  `json:"inference"`
	Traffic   TrafficConfig     `json:"traffic"`
	Planner   planner.Config    `json:"planner"`
	Metrics   metrics.Config    `json:"metrics"`
	PlanLog   planlog.Config    `json:"plan_log"`
	MQTT      mqtt.Config       `json:"mqtt"`
	Logging   LoggingConfig     `json:"logging"`
	Sentry    monitoring.Config `json:"sentry"`
}

// Load reads a YAML or JSON file. An empty path loads defaults and the
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides: K_SECTION__FIELD maps to section.field.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Inference.SetDefaults()
	c.Traffic.SetDefaults()
	c.Planner.SetDefaults()
	c.PlanLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Validate},
		{"inference", c.Inference.Validate},
		{"traffic", c.Traffic.Validate},
		{"planner", c.Planner.Validate},
		{"plan_log", c.PlanLog.Validate},
		{"mqtt", c.MQTT.Validate},
		{"logging", c.Logging.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}
