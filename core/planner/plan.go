package planner

import (
	"time"

	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/tripmetrics"
)

// RoutePlan is the deterministic outcome for one route candidate.
type RoutePlan struct {
	Route    model.RouteCandidate        `json:"route"`
	Range    model.RangePrediction       `json:"range"`
	Charging model.SOCOptimizationResult `json:"charging"`
	Metrics  tripmetrics.TripMetrics     `json:"metrics"`
}

// TripPlan is the result of a planning run.
type TripPlan struct {
	PlanID      string                    `json:"planId"`
	CreatedAt   time.Time                 `json:"createdAt"`
	Strategy    model.Strategy            `json:"strategy"`
	Environment model.ElevationWindImpact `json:"environment"`
	// AdjustedRangeMiles is the rated range corrected by the environment.
	AdjustedRangeMiles float64                `json:"adjustedRangeMiles"`
	Routes             []RoutePlan            `json:"routes"`
	Recommendation     model.Recommendation   `json:"recommendation"`
	Traffic            *model.TrafficSnapshot `json:"traffic,omitempty"`
	Alerts             []model.Alert          `json:"alerts,omitempty"`
}

// Route returns the plan for the given route id.
func (p TripPlan) Route(id string) (RoutePlan, bool) {
	for _, r := range p.Routes {
		if r.Route.ID == id {
			return r, true
		}
	}
	return RoutePlan{}, false
}

// PlanComputed is published on the bus after every successful run.
type PlanComputed struct {
	Plan     TripPlan
	Duration time.Duration
}
