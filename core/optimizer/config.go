package optimizer

// StopLimit is the most stops a plan may carry.
const StopLimit = 3

// Params tunes the optimizer thresholds.
type Params struct {
	SafetyBufferPercent float64 `json:"safety_buffer_percent" yaml:"safety_buffer_percent"`
	StopFloorPercent    float64 `json:"stop_floor_percent" yaml:"stop_floor_percent"`
	MinStationPowerKW   float64 `json:"min_station_power_kw" yaml:"min_station_power_kw"`
	MaxChargeSpeedKW    float64 `json:"max_charge_speed_kw" yaml:"max_charge_speed_kw"`
	MaxStops            int     `json:"max_stops" yaml:"max_stops"`
	AverageSpeedMph     float64 `json:"average_speed_mph" yaml:"average_speed_mph"`
	// CostSavingsRate is a flat share of the charging cost reported as saved.
	CostSavingsRate float64 `json:"cost_savings_rate" yaml:"cost_savings_rate"`
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{
		SafetyBufferPercent: 10,
		StopFloorPercent:    20,
		MinStationPowerKW:   50,
		MaxChargeSpeedKW:    150,
		MaxStops:            StopLimit,
		AverageSpeedMph:     60,
		CostSavingsRate:     0.10,
	}
}

// SetDefaults fills zero fields with DefaultParams values.
func (p *Params) SetDefaults() {
	d := DefaultParams()
	if p.SafetyBufferPercent == 0 {
		p.SafetyBufferPercent = d.SafetyBufferPercent
	}
	if p.StopFloorPercent == 0 {
		p.StopFloorPercent = d.StopFloorPercent
	}
	if p.MinStationPowerKW == 0 {
		p.MinStationPowerKW = d.MinStationPowerKW
	}
	if p.MaxChargeSpeedKW == 0 {
		p.MaxChargeSpeedKW = d.MaxChargeSpeedKW
	}
	if p.MaxStops == 0 {
		p.MaxStops = d.MaxStops
	}
	if p.AverageSpeedMph == 0 {
		p.AverageSpeedMph = d.AverageSpeedMph
	}
	if p.CostSavingsRate == 0 {
		p.CostSavingsRate = d.CostSavingsRate
	}
}
