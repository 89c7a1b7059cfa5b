package planner

import (
	"errors"
	"fmt"

	"github.com/kilianp07/evplanner/core/optimizer"
)

// Config tunes the planner.
type Config struct {
	Optimizer optimizer.Params `json:"optimizer" yaml:"optimizer"`
	// TrafficTimeoutSeconds bounds the optional traffic lookup.
	TrafficTimeoutSeconds int `json:"traffic_timeout_seconds" yaml:"traffic_timeout_seconds"`
	// EventBuffer is the per-subscriber capacity of the plan bus.
	EventBuffer int `json:"event_buffer" yaml:"event_buffer"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	c.Optimizer.SetDefaults()
	if c.TrafficTimeoutSeconds <= 0 {
		c.TrafficTimeoutSeconds = 5
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 16
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	p := c.Optimizer
	if p.MaxStops < 1 || p.MaxStops > optimizer.StopLimit {
		return fmt.Errorf("planner.optimizer.max_stops must be in [1,%d]", optimizer.StopLimit)
	}
	if p.SafetyBufferPercent < 0 || p.SafetyBufferPercent >= 100 {
		return errors.New("planner.optimizer.safety_buffer_percent must be in [0,100)")
	}
	if p.StopFloorPercent < 0 || p.StopFloorPercent >= 100 {
		return errors.New("planner.optimizer.stop_floor_percent must be in [0,100)")
	}
	if p.AverageSpeedMph <= 0 || p.MaxChargeSpeedKW <= 0 {
		return errors.New("planner.optimizer speeds must be positive")
	}
	return nil
}
