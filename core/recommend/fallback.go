package recommend

import (
	"fmt"

	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/rangemodel"
)

const (
	// FallbackConfidence is reported by the deterministic ranking.
	FallbackConfidence = 80
	// fastestPreferenceMin is how much quicker the fastest route must be to
	// beat the most efficient one.
	fastestPreferenceMin = 20.0
	// slowRiskMin flags a chosen route noticeably slower than the fastest.
	slowRiskMin = 10.0
)

// Fallback ranks routes without any external call. It is total: every input,
// including an empty route list, yields a Recommendation.
func Fallback(req Request) model.Recommendation {
	rec := model.Recommendation{
		Confidence:   FallbackConfidence,
		Reasons:      []string{},
		ChargingPlan: []model.ChargingPlanEntry{},
		Risks:        []string{},
		Source:       model.SourceFallback,
	}
	if len(req.Routes) == 0 {
		rec.Summary = "No route candidates were supplied."
		return rec
	}

	efficient, fastest := req.Routes[0], req.Routes[0]
	for _, r := range req.Routes[1:] {
		if r.EnergyEfficiency < efficient.EnergyEfficiency {
			efficient = r
		}
		if r.DurationMin < fastest.DurationMin {
			fastest = r
		}
	}

	chosen := efficient
	if efficient.DurationMin-fastest.DurationMin > fastestPreferenceMin {
		chosen = fastest
		rec.Reasons = append(rec.Reasons, fmt.Sprintf("Fastest option, %.0f min quicker than the most efficient route", efficient.DurationMin-fastest.DurationMin))
	} else {
		rec.Reasons = append(rec.Reasons, fmt.Sprintf("Most energy-efficient option at %.3f kWh/mi", chosen.EnergyEfficiency))
	}
	rec.RecommendedRouteID = chosen.ID
	rec.Reasons = append(rec.Reasons,
		fmt.Sprintf("Estimated driving time %.0f min over %.1f mi", chosen.DurationMin, chosen.DistanceMiles),
		fmt.Sprintf("Estimated energy cost $%.2f", chosen.EstimatedCost),
	)

	if needsCharging(req, chosen) {
		rec.Risks = append(rec.Risks, fmt.Sprintf("Charging is required to complete route %s with a %.0f%% reserve", chosen.ID, rangemodel.SafetyBufferPercent))
	}
	if slower := chosen.DurationMin - fastest.DurationMin; slower > slowRiskMin {
		rec.Risks = append(rec.Risks, fmt.Sprintf("About %.0f min slower than the fastest route", slower))
	}
	if plan, ok := req.ChargingPlans[chosen.ID]; ok {
		for _, s := range plan.Stops {
			name := s.StationName
			if name == "" {
				name = fmt.Sprintf("Stop %d", s.StopNumber)
			}
			rec.ChargingPlan = append(rec.ChargingPlan, model.ChargingPlanEntry{Stop: name, Minutes: s.DwellTimeMinutes})
		}
	}
	rec.Summary = fmt.Sprintf("Route %s is recommended: %.1f mi in about %.0f min.", chosen.ID, chosen.DistanceMiles, chosen.DurationMin)
	return rec
}

// needsCharging evaluates the route with its own consumption figure when it
// has one.
func needsCharging(req Request, r model.RouteCandidate) bool {
	ev := req.EV
	if r.EnergyEfficiency > 0 {
		ev.EfficiencyKWhPerMile = r.EnergyEfficiency
	}
	if ev.BatteryCapacityKWh <= 0 {
		return false
	}
	return rangemodel.Predict(r.DistanceMiles, req.StartingBatteryPercent, ev).NeedsCharging
}
