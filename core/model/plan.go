package model

import "fmt"

// Strategy selects how aggressively the optimizer charges at each stop.
type Strategy int

const (
	StrategyBalanced Strategy = iota
	StrategyMinimizeTime
	StrategyMinimizeCost
)

// String returns the wire name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyMinimizeTime:
		return "minimize_time"
	case StrategyMinimizeCost:
		return "minimize_cost"
	case StrategyBalanced:
		return "balanced"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a wire name into a Strategy. An empty name selects
// the balanced strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "minimize_time":
		return StrategyMinimizeTime, nil
	case "minimize_cost":
		return StrategyMinimizeCost, nil
	case "balanced", "":
		return StrategyBalanced, nil
	default:
		return 0, fmt.Errorf("unknown strategy: %s", s)
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ChargeStop is one planned charging session.
type ChargeStop struct {
	StopNumber       int     `json:"stopNumber" csv:"stop_number"`
	StationID        string  `json:"stationId,omitempty" csv:"station_id"`
	StationName      string  `json:"stationName,omitempty" csv:"station_name"`
	ArrivalSOC       float64 `json:"arrivalSOC" csv:"arrival_soc"`
	TargetSOC        float64 `json:"targetSOC" csv:"target_soc"`
	ChargingSpeedKW  float64 `json:"chargingSpeedKW" csv:"charging_speed_kw"`
	DwellTimeMinutes int     `json:"dwellTimeMinutes" csv:"dwell_time_minutes"`
	CostUSD          float64 `json:"costUSD" csv:"cost_usd"`
	Reason           string  `json:"reason" csv:"reason"`
}

// SOCOptimizationResult is the charging plan for one route and strategy.
type SOCOptimizationResult struct {
	TotalTripTimeMin     float64      `json:"totalTripTimeMin"`
	TotalChargingTimeMin float64      `json:"totalChargingTimeMin"`
	TotalCostUSD         float64      `json:"totalCostUSD"`
	Stops                []ChargeStop `json:"stops"`
	Strategy             Strategy     `json:"strategy"`
	TimeSavedMin         float64      `json:"timeSavedMin"`
	CostSavedUSD         float64      `json:"costSavedUSD"`
	// Warnings carries advisory conditions that do not invalidate the plan.
	Warnings []string `json:"warnings,omitempty"`
}

// RangePrediction summarises whether a trip is feasible on the current charge.
type RangePrediction struct {
	CanReach                bool    `json:"canReach"`
	RangeAtDestinationMiles float64 `json:"rangeAtDestinationMiles"`
	NeedsCharging           bool    `json:"needsCharging"`
	SuggestedStops          int     `json:"suggestedStops"`
	BatteryNeededPercent    float64 `json:"batteryNeededPercent"`
	RemainingPercent        float64 `json:"remainingPercent"`
}
