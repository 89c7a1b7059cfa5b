package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/evplanner/core/logger"
	"github.com/kilianp07/evplanner/core/model"
)

// WarningNoStations is reported when charging is required but no candidate
// station meets the power threshold. The plan is then returned without stops.
const WarningNoStations = "no_qualifying_stations"

// Input describes one optimization request.
type Input struct {
	DistanceMiles          float64
	StartingBatteryPercent float64
	EV                     model.EVModel
	Stations               []model.ChargingStationCandidate
	Strategy               model.Strategy
}

// Optimizer schedules charging stops.
type Optimizer struct {
	params Params
	logger logger.Logger
}

// New returns an Optimizer. Zero params fields take their default values.
func New(p Params, log logger.Logger) *Optimizer {
	p.SetDefaults()
	return &Optimizer{params: p, logger: logger.OrNop(log)}
}

// Params returns the thresholds in use.
func (o *Optimizer) Params() Params { return o.params }

// Optimize computes the charging plan. It fails when the vehicle is invalid;
// an ErrInvariant indicates a bug rather than bad input.
func (o *Optimizer) Optimize(in Input) (model.SOCOptimizationResult, error) {
	if err := in.EV.Validate(); err != nil {
		return model.SOCOptimizationResult{}, err
	}
	res := model.SOCOptimizationResult{Strategy: in.Strategy, Stops: []model.ChargeStop{}}
	drivingTime := in.DistanceMiles / o.params.AverageSpeedMph * 60
	needed := in.EV.PercentForDistance(in.DistanceMiles)

	if needed <= in.StartingBatteryPercent-o.params.SafetyBufferPercent {
		res.TotalTripTimeMin = drivingTime
		return res, nil
	}

	candidates := o.qualifying(in.Stations)
	if len(candidates) == 0 {
		o.logger.Warnf("charging required (%.1f%% needed, %.1f%% available) but no station qualifies", needed, in.StartingBatteryPercent)
		res.TotalTripTimeMin = drivingTime
		res.Warnings = append(res.Warnings, WarningNoStations)
		return res, nil
	}

	current := in.StartingBatteryPercent
	var totalCharging, totalCost, naiveCharging float64
	for _, st := range candidates {
		toStation := in.EV.PercentForDistance(st.DistanceFromRouteMiles)
		arrival := current - toStation
		if arrival >= o.params.StopFloorPercent {
			continue
		}
		target := TargetSOC(in.Strategy, current)
		if target < current {
			o.logger.Debugf("station %s skipped: battery %.1f%% above the %s cap", st.ID, current, in.Strategy)
			continue
		}
		arrival = math.Max(0, arrival)
		speed := math.Min(st.PowerKW, o.params.MaxChargeSpeedKW)
		energy := (target - current) / 100 * in.EV.BatteryCapacityKWh
		dwell := int(math.Ceil(energy / speed * 60))
		cost := energy * st.CostPerKWh
		res.Stops = append(res.Stops, model.ChargeStop{
			StopNumber:       len(res.Stops) + 1,
			StationID:        st.ID,
			StationName:      st.Name,
			ArrivalSOC:       arrival,
			TargetSOC:        target,
			ChargingSpeedKW:  speed,
			DwellTimeMinutes: dwell,
			CostUSD:          cost,
			Reason:           fmt.Sprintf("battery would fall to %.0f%% before this station; charge to %.0f%% (%s)", arrival, target, in.Strategy),
		})
		naiveCharging += naiveChargingTime(current, speed, in.EV)
		current = target
		totalCharging += float64(dwell)
		totalCost += cost
	}

	res.TotalChargingTimeMin = totalCharging
	res.TotalCostUSD = totalCost
	res.TotalTripTimeMin = drivingTime + totalCharging
	res.TimeSavedMin = math.Max(0, naiveCharging-totalCharging)
	res.CostSavedUSD = totalCost * o.params.CostSavingsRate

	if err := checkInvariants(res, o.params.MaxStops); err != nil {
		return res, err
	}
	o.logger.Debugw("charging plan", map[string]any{
		"strategy":      in.Strategy.String(),
		"stops":         len(res.Stops),
		"charging_min":  totalCharging,
		"cost_usd":      totalCost,
		"needed_pct":    needed,
		"candidate_cnt": len(candidates),
	})
	return res, nil
}

// OptimizeAll runs Optimize once per strategy.
func (o *Optimizer) OptimizeAll(in Input) (map[model.Strategy]model.SOCOptimizationResult, error) {
	out := make(map[model.Strategy]model.SOCOptimizationResult, 3)
	for _, s := range []model.Strategy{model.StrategyMinimizeTime, model.StrategyMinimizeCost, model.StrategyBalanced} {
		in.Strategy = s
		r, err := o.Optimize(in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		out[s] = r
	}
	return out, nil
}

// qualifying keeps fast-enough stations ordered by distance from the route,
// limited to MaxStops entries.
func (o *Optimizer) qualifying(stations []model.ChargingStationCandidate) []model.ChargingStationCandidate {
	out := make([]model.ChargingStationCandidate, 0, len(stations))
	for _, s := range stations {
		if s.PowerKW >= o.params.MinStationPowerKW {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceFromRouteMiles < out[j].DistanceFromRouteMiles
	})
	if len(out) > o.params.MaxStops {
		out = out[:o.params.MaxStops]
	}
	return out
}

// naiveChargingTime is the dwell time needed to charge from current to 100%.
func naiveChargingTime(current, speedKW float64, ev model.EVModel) float64 {
	energy := (100 - current) / 100 * ev.BatteryCapacityKWh
	return math.Ceil(energy / speedKW * 60)
}
