package rangemodel

import (
	"math"

	"github.com/kilianp07/evplanner/core/model"
)

const (
	// SafetyBufferPercent is the reserve kept at arrival.
	SafetyBufferPercent = 10.0
	// percentPerStop is the coarse gain assumed for each advisory stop.
	percentPerStop = 50.0
)

// BatteryNeededPercent returns the battery percentage consumed over distance.
func BatteryNeededPercent(distanceMiles float64, ev model.EVModel) float64 {
	return ev.PercentForDistance(distanceMiles)
}

// Predict estimates reachability for a trip. SuggestedStops is advisory and
// may disagree with the optimizer's own stop count.
func Predict(distanceMiles, startingBatteryPercent float64, ev model.EVModel) model.RangePrediction {
	needed := BatteryNeededPercent(distanceMiles, ev)
	remaining := startingBatteryPercent - needed
	canReach := remaining > SafetyBufferPercent

	pred := model.RangePrediction{
		CanReach:                canReach,
		RangeAtDestinationMiles: math.Max(0, remaining/100*ev.RatedRangeMiles),
		NeedsCharging:           !canReach,
		BatteryNeededPercent:    needed,
		RemainingPercent:        remaining,
	}
	if pred.NeedsCharging {
		pred.SuggestedStops = int(math.Ceil((needed - startingBatteryPercent + SafetyBufferPercent) / percentPerStop))
		if pred.SuggestedStops < 0 {
			pred.SuggestedStops = 0
		}
	}
	return pred
}
