package model

// RecommendationSource tells where a recommendation came from.
type RecommendationSource string

const (
	SourceInference RecommendationSource = "ai"
	SourceFallback  RecommendationSource = "fallback"
)

// ChargingPlanEntry is a coarse charging hint attached to a recommendation.
type ChargingPlanEntry struct {
	Stop    string `json:"stop"`
	Minutes int    `json:"minutes"`
}

// Recommendation is the qualitative route pick returned to callers. It is
// always populated, whether or not the inference service answered.
type Recommendation struct {
	Summary            string               `json:"summary"`
	RecommendedRouteID string               `json:"recommendedRouteId"`
	Confidence         int                  `json:"confidence"`
	Reasons            []string             `json:"reasons"`
	ChargingPlan       []ChargingPlanEntry  `json:"chargingPlan"`
	Risks              []string             `json:"risks"`
	Source             RecommendationSource `json:"source"`
}
