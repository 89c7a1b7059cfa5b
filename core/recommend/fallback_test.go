package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evplanner/core/model"
)

func TestFallbackPrefersEfficient(t *testing.T) {
	rs := []model.RouteCandidate{
		{ID: "fast", DistanceMiles: 100, DurationMin: 100, EnergyEfficiency: 0.30, EstimatedCost: 5},
		{ID: "eco", DistanceMiles: 105, DurationMin: 115, EnergyEfficiency: 0.22, EstimatedCost: 4},
	}
	rec := Fallback(Request{EV: ev, Routes: rs, StartingBatteryPercent: 90})
	assert.Equal(t, "eco", rec.RecommendedRouteID)
	assert.Equal(t, FallbackConfidence, rec.Confidence)
	require.Len(t, rec.Reasons, 3)
	assert.Contains(t, rec.Reasons[0], "0.220 kWh/mi")
	assert.Contains(t, rec.Reasons[1], "115 min")
	assert.Contains(t, rec.Reasons[2], "$4.00")
	assert.Len(t, rec.Risks, 1, "15 min slower than fastest")
}

func TestFallbackPrefersFastestWhenMuchQuicker(t *testing.T) {
	rec := Fallback(Request{EV: ev, Routes: routes, StartingBatteryPercent: 100})
	// hwy101 is most efficient but 70 min slower than i5.
	assert.Equal(t, "i5", rec.RecommendedRouteID)
	assert.Contains(t, rec.Reasons[0], "70 min quicker")
}

func TestFallbackRisks(t *testing.T) {
	rs := []model.RouteCandidate{{ID: "only", DistanceMiles: 50, DurationMin: 50, EnergyEfficiency: 0.25}}
	rec := Fallback(Request{EV: ev, Routes: rs, StartingBatteryPercent: 90})
	assert.Empty(t, rec.Risks)

	rec = Fallback(Request{EV: ev, Routes: rs, StartingBatteryPercent: 20})
	require.Len(t, rec.Risks, 1)
	assert.Contains(t, rec.Risks[0], "Charging is required")
}

func TestFallbackChargingPlanFromOptimizer(t *testing.T) {
	rs := []model.RouteCandidate{{ID: "r", DistanceMiles: 300, DurationMin: 300, EnergyEfficiency: 0.229}}
	plans := map[string]model.SOCOptimizationResult{
		"r": {Stops: []model.ChargeStop{
			{StopNumber: 1, StationName: "Harris Ranch", DwellTimeMinutes: 14},
			{StopNumber: 2, DwellTimeMinutes: 9},
		}},
	}
	rec := Fallback(Request{EV: ev, Routes: rs, StartingBatteryPercent: 50, ChargingPlans: plans})
	assert.Equal(t, []model.ChargingPlanEntry{{Stop: "Harris Ranch", Minutes: 14}, {Stop: "Stop 2", Minutes: 9}}, rec.ChargingPlan)
}

func TestFallbackAlwaysPicksInputRoute(t *testing.T) {
	for n := 1; n <= len(routes); n++ {
		rec := Fallback(Request{EV: ev, Routes: routes[:n], StartingBatteryPercent: 60})
		assert.True(t, knownRoute(routes[:n], rec.RecommendedRouteID))
	}
}

func TestFallbackWithoutRoutes(t *testing.T) {
	rec := Fallback(Request{EV: ev})
	assert.Empty(t, rec.RecommendedRouteID)
	assert.Equal(t, FallbackConfidence, rec.Confidence)
	assert.Equal(t, model.SourceFallback, rec.Source)
	assert.NotEmpty(t, rec.Summary)
}
