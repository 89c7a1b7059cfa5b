package metrics

import (
	"time"

	"github.com/kilianp07/evplanner/core/model"
)

// PlanEvent summarises one charging plan computed for a route.
type PlanEvent struct {
	PlanID        string
	RouteID       string
	Strategy      model.Strategy
	Stops         int
	ChargingMin   float64
	CostUSD       float64
	NeedsCharging bool
	Duration      time.Duration
	Time          time.Time
}

// MetricsSink records plan events.
type MetricsSink interface {
	RecordPlan(ev PlanEvent) error
}

// RecommendationEvent captures which path produced a recommendation.
type RecommendationEvent struct {
	PlanID     string
	Source     model.RecommendationSource
	RouteID    string
	Confidence int
	// FailureReason is set when the inference path was abandoned.
	FailureReason string
	Latency       time.Duration
	Time          time.Time
}

// RecommendationRecorder records recommendation outcomes.
type RecommendationRecorder interface {
	RecordRecommendation(ev RecommendationEvent) error
}

// TrafficEvent captures one traffic cache lookup.
type TrafficEvent struct {
	Key        string
	Hit        bool
	Congestion model.CongestionLevel
	DelayMin   int
	Time       time.Time
}

// TrafficRecorder records traffic cache lookups.
type TrafficRecorder interface {
	RecordTraffic(ev TrafficEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanEvent) error                     { return nil }
func (NopSink) RecordRecommendation(RecommendationEvent) error { return nil }
func (NopSink) RecordTraffic(TrafficEvent) error               { return nil }
