package model

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

// RouteCandidate is one of several competing routes for the same trip.
type RouteCandidate struct {
	ID            string  `json:"id" yaml:"id" validate:"required"`
	DistanceMiles float64 `json:"distanceMiles" yaml:"distance_miles" validate:"gte=0"`
	DurationMin   float64 `json:"durationMin" yaml:"duration_min" validate:"gte=0"`
	// EnergyEfficiency is the expected consumption on this route in kWh/mi.
	EnergyEfficiency float64 `json:"energyEfficiency" yaml:"energy_efficiency" validate:"gte=0"`
	EstimatedCost    float64 `json:"estimatedCost" yaml:"estimated_cost" validate:"gte=0"`
}

// ChargingStationCandidate is supplied by an external station directory.
type ChargingStationCandidate struct {
	ID                     string  `json:"id,omitempty" yaml:"id"`
	Name                   string  `json:"name,omitempty" yaml:"name"`
	PowerKW                float64 `json:"powerKW" yaml:"power_kw" validate:"gte=0"`
	CostPerKWh             float64 `json:"costPerKWh" yaml:"cost_per_kwh" validate:"gte=0"`
	DistanceFromRouteMiles float64 `json:"distanceFromRouteMiles" yaml:"distance_from_route_miles" validate:"gte=0"`
}
