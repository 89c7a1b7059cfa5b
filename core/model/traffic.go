package model

import (
	"fmt"
	"time"
)

// CongestionLevel is the ordinal traffic severity.
type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
	CongestionSevere CongestionLevel = "severe"
)

// CongestionLevels lists every level in ascending severity.
var CongestionLevels = []CongestionLevel{CongestionLow, CongestionMedium, CongestionHigh, CongestionSevere}

// ParseCongestionLevel validates a congestion level name.
func ParseCongestionLevel(s string) (CongestionLevel, error) {
	for _, l := range CongestionLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown congestion level: %s", s)
}

// AlternativeRoute is a detour suggested by the traffic source.
type AlternativeRoute struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Geometry      []LatLng `json:"geometry"`
	ExtraMinutes  float64  `json:"extraMinutes"`
	DistanceMiles float64  `json:"distanceMiles"`
}

// Incident is a traffic event on or near the route.
type Incident struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Location    LatLng `json:"location"`
	DelayMin    int    `json:"delayMin"`
}

// RoadConditions describes persistent conditions on the route.
type RoadConditions struct {
	Construction bool     `json:"construction"`
	Closures     []string `json:"closures,omitempty"`
	Weather      string   `json:"weather,omitempty"`
}

// TrafficSnapshot is a point-in-time view of traffic for an origin and
// destination pair.
type TrafficSnapshot struct {
	CurrentDelayMin   int                `json:"currentDelayMin"`
	CongestionLevel   CongestionLevel    `json:"congestionLevel"`
	AlternativeRoutes []AlternativeRoute `json:"alternativeRoutes"`
	Incidents         []Incident         `json:"incidents"`
	RoadConditions    RoadConditions     `json:"roadConditions"`
	Confidence        int                `json:"confidence"`
	LastUpdated       time.Time          `json:"lastUpdated"`
}

// AlertType is the presentation category of an alert.
type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertError   AlertType = "error"
)

// Alert is a user-facing traffic notice derived from a snapshot.
type Alert struct {
	ID          string    `json:"id"`
	Type        AlertType `json:"type"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Dismissible bool      `json:"dismissible"`
	Action      string    `json:"action,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
