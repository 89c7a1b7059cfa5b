package traffic

import (
	"fmt"

	"github.com/kilianp07/evplanner/core/model"
)

// ActionViewAlternatives is attached to severe congestion alerts.
const ActionViewAlternatives = "View Alternatives"

// DeriveAlerts maps a snapshot to alerts. Only the first closure is cited.
func DeriveAlerts(s model.TrafficSnapshot) []model.Alert {
	alerts := []model.Alert{}
	switch s.CongestionLevel {
	case model.CongestionSevere:
		alerts = append(alerts, model.Alert{
			ID:          "congestion-severe",
			Type:        model.AlertWarning,
			Severity:    "high",
			Title:       "Severe congestion",
			Message:     fmt.Sprintf("Heavy traffic is adding about %d minutes to your trip", s.CurrentDelayMin),
			Dismissible: true,
			Action:      ActionViewAlternatives,
			Timestamp:   s.LastUpdated,
		})
	case model.CongestionHigh:
		alerts = append(alerts, model.Alert{
			ID:          "congestion-high",
			Type:        model.AlertInfo,
			Severity:    "medium",
			Title:       "High traffic",
			Message:     fmt.Sprintf("Expect delays of about %d minutes", s.CurrentDelayMin),
			Dismissible: true,
			Timestamp:   s.LastUpdated,
		})
	}
	if s.RoadConditions.Construction {
		alerts = append(alerts, model.Alert{
			ID:          "construction",
			Type:        model.AlertWarning,
			Severity:    "medium",
			Title:       "Construction zone",
			Message:     "Construction reported along the route",
			Dismissible: true,
			Timestamp:   s.LastUpdated,
		})
	}
	if len(s.RoadConditions.Closures) > 0 {
		alerts = append(alerts, model.Alert{
			ID:          "closure",
			Type:        model.AlertError,
			Severity:    "critical",
			Title:       "Road closure",
			Message:     s.RoadConditions.Closures[0],
			Dismissible: false,
			Timestamp:   s.LastUpdated,
		})
	}
	for _, inc := range s.Incidents {
		alerts = append(alerts, model.Alert{
			ID:          "incident-" + inc.ID,
			Type:        incidentAlertType(inc.Severity),
			Severity:    incidentSeverity(inc.Severity),
			Title:       "Traffic incident",
			Message:     inc.Description,
			Dismissible: true,
			Timestamp:   s.LastUpdated,
		})
	}
	return alerts
}

func incidentSeverity(s string) string {
	if s == "severe" {
		return "critical"
	}
	return s
}

func incidentAlertType(s string) model.AlertType {
	if s == "severe" {
		return model.AlertError
	}
	return model.AlertWarning
}
