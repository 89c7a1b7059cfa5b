package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// EVModel describes the battery and consumption profile of a vehicle. It is
// immutable for the duration of a trip.
type EVModel struct {
	Name                 string  `json:"name,omitempty" yaml:"name"`
	BatteryCapacityKWh   float64 `json:"batteryCapacityKWh" yaml:"battery_capacity_kwh" validate:"gt=0"`
	EfficiencyKWhPerMile float64 `json:"efficiencyKWhPerMile" yaml:"efficiency_kwh_per_mile" validate:"gt=0"`
	RatedRangeMiles      float64 `json:"ratedRangeMiles" yaml:"rated_range_miles" validate:"gte=0"`
}

// Validate checks that capacity and efficiency are usable as divisors.
func (e EVModel) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid ev model: %w", err)
	}
	return nil
}

// EnergyForDistance returns the kWh consumed over the given distance.
func (e EVModel) EnergyForDistance(miles float64) float64 {
	return miles * e.EfficiencyKWhPerMile
}

// PercentForDistance converts a distance into battery percentage points.
func (e EVModel) PercentForDistance(miles float64) float64 {
	return e.EnergyForDistance(miles) / e.BatteryCapacityKWh * 100
}

// ValidateStruct checks any value carrying validator tags, including nested
// slices marked with dive.
func ValidateStruct(v any) error {
	return validate.Struct(v)
}
