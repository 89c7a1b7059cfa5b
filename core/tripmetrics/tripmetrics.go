// Package tripmetrics computes the deterministic trip scorecard shown next to
// a plan: emissions avoided, fuel cost avoided and an efficiency score.
package tripmetrics

import (
	"math"

	"github.com/kilianp07/evplanner/core/model"
)

const (
	// co2KgPerMile is the tailpipe emission of an average gasoline car.
	co2KgPerMile = 0.404
	kgPerTree    = 20.0
	// gasCostPerMile and electricityPerKWh are USD averages.
	gasCostPerMile    = 0.14
	electricityPerKWh = 0.15
	minScore          = 40
	maxScore          = 100
)

// TripMetrics is the scorecard for one route.
type TripMetrics struct {
	CO2SavedKg       float64 `json:"co2SavedKg"`
	EquivalentTrees  int     `json:"equivalentTrees"`
	FuelCostSavedUSD float64 `json:"fuelCostSavedUSD"`
	EfficiencyScore  int     `json:"efficiencyScore"`
}

// Calculate is pure: equal inputs give bit-identical outputs.
func Calculate(route model.RouteCandidate, ev model.EVModel) TripMetrics {
	d := route.DistanceMiles
	co2 := d * co2KgPerMile
	m := TripMetrics{
		CO2SavedKg:       co2,
		EquivalentTrees:  int(math.Max(1, math.Round(co2/kgPerTree))),
		FuelCostSavedUSD: math.Max(0, d*gasCostPerMile-d*ev.EfficiencyKWhPerMile*electricityPerKWh),
	}
	m.EfficiencyScore = efficiencyScore(ev.EfficiencyKWhPerMile, route.EnergyEfficiency)
	return m
}

func efficiencyScore(rated, actual float64) int {
	if actual <= 0 {
		return maxScore
	}
	s := math.Round(rated / actual * 100)
	return int(math.Min(maxScore, math.Max(minScore, s)))
}
