package model

// ElevationSample is one point of an elevation profile ordered along the route.
type ElevationSample struct {
	Lat                float64 `json:"lat" yaml:"lat"`
	Lng                float64 `json:"lng" yaml:"lng"`
	ElevationMeters    float64 `json:"elevationMeters" yaml:"elevation_meters"`
	CumulativeDistance float64 `json:"cumulativeDistance" yaml:"cumulative_distance"`
}

// WindSample is a wind observation along the route. DirectionDeg is the
// compass bearing the wind blows from.
type WindSample struct {
	SpeedMph     float64 `json:"speedMph" yaml:"speed_mph"`
	DirectionDeg float64 `json:"directionDeg" yaml:"direction_deg"`
	GustMph      float64 `json:"gustMph" yaml:"gust_mph"`
}

// ElevationWindImpact is the environmental adjustment for a route.
type ElevationWindImpact struct {
	ElevationGain     float64  `json:"elevationGain"`
	ElevationLoss     float64  `json:"elevationLoss"`
	NetChange         float64  `json:"netChange"`
	HeadwindMph       float64  `json:"headwindMph"`
	TailwindMph       float64  `json:"tailwindMph"`
	CrosswindMph      float64  `json:"crosswindMph"`
	ElevationDeltaPct float64  `json:"elevationDeltaPct"`
	WindDeltaPct      float64  `json:"windDeltaPct"`
	CombinedDeltaPct  float64  `json:"combinedDeltaPct"`
	Recommendations   []string `json:"recommendations"`
}
