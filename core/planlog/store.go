// Package planlog persists a summary of every computed trip plan.
package planlog

import (
	"context"
	"time"

	"github.com/kilianp07/evplanner/core/model"
)

// RouteSummary is the per-route outcome stored in a Record.
type RouteSummary struct {
	RouteID          string   `json:"route_id"`
	DistanceMiles    float64  `json:"distance_miles"`
	NeedsCharging    bool     `json:"needs_charging"`
	Stops            int      `json:"stops"`
	TotalChargingMin float64  `json:"total_charging_min"`
	TotalCostUSD     float64  `json:"total_cost_usd"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Record captures one planning request and its result.
type Record struct {
	Timestamp              time.Time                  `json:"timestamp"`
	PlanID                 string                     `json:"plan_id"`
	Vehicle                string                     `json:"vehicle"`
	Strategy               model.Strategy             `json:"strategy"`
	StartingBatteryPercent float64                    `json:"starting_battery_percent"`
	Routes                 []RouteSummary             `json:"routes"`
	RecommendedRouteID     string                     `json:"recommended_route_id"`
	RecommendationSource   model.RecommendationSource `json:"recommendation_source"`
}

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start   time.Time
	End     time.Time
	PlanID  string
	RouteID string
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Match reports whether rec satisfies q.
func (q Query) Match(rec Record) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.PlanID != "" && rec.PlanID != q.PlanID {
		return false
	}
	if q.RouteID != "" {
		for _, r := range rec.Routes {
			if r.RouteID == q.RouteID {
				return true
			}
		}
		return false
	}
	return true
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error            { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
