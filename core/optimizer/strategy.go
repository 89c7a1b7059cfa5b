package optimizer

import (
	"math"

	"github.com/kilianp07/evplanner/core/model"
)

type chargeRule struct {
	cap  float64
	step float64
}

var rules = map[model.Strategy]chargeRule{
	model.StrategyMinimizeTime: {cap: 80, step: 30},
	model.StrategyMinimizeCost: {cap: 90, step: 40},
	model.StrategyBalanced:     {cap: 85, step: 35},
}

// TargetSOC returns the charge level to stop charging at for the strategy.
func TargetSOC(s model.Strategy, current float64) float64 {
	r, ok := rules[s]
	if !ok {
		r = rules[model.StrategyBalanced]
	}
	return math.Min(r.cap, current+r.step)
}
