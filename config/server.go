package config

import (
	"fmt"
	"net"
	"time"

	"github.com/kilianp07/evplanner/core/traffic"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr"`
	// LogsToken guards the plan log endpoint. Empty disables the check.
	LogsToken              string `json:"logs_token"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = 10
	}
}

// Validate checks the listen address.
func (c ServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid addr %q: %w", c.Addr, err)
	}
	return nil
}

// ShutdownTimeout returns the graceful shutdown window.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// TrafficConfig configures the traffic source and its cache.
type TrafficConfig struct {
	// Enabled turns on the traffic endpoints and the lookup during planning.
	Enabled    bool                    `json:"enabled"`
	TTLSeconds int                     `json:"ttl_seconds"`
	Simulator  traffic.SimulatorConfig `json:"simulator"`
}

// SetDefaults applies sane defaults.
func (c *TrafficConfig) SetDefaults() {
	if c.TTLSeconds <= 0 {
		c.TTLSeconds = int(traffic.DefaultTTL / time.Second)
	}
	c.Simulator.SetDefaults()
}

// Validate checks the simulator bounds.
func (c TrafficConfig) Validate() error {
	return c.Simulator.Validate()
}

// TTL returns the cache lifetime.
func (c TrafficConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
