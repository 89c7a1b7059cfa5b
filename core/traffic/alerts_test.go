package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evplanner/core/model"
)

func TestDeriveAlertsSevereCongestion(t *testing.T) {
	alerts := DeriveAlerts(model.TrafficSnapshot{CongestionLevel: model.CongestionSevere, CurrentDelayMin: 25})
	high := 0
	for _, a := range alerts {
		if a.Severity == "high" {
			high++
			assert.Equal(t, ActionViewAlternatives, a.Action)
			assert.Equal(t, model.AlertWarning, a.Type)
			assert.True(t, a.Dismissible)
		}
	}
	assert.Equal(t, 1, high)
}

func TestDeriveAlertsHighCongestion(t *testing.T) {
	alerts := DeriveAlerts(model.TrafficSnapshot{CongestionLevel: model.CongestionHigh})
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertInfo, alerts[0].Type)
	assert.True(t, alerts[0].Dismissible)
	assert.Empty(t, alerts[0].Action)
}

func TestDeriveAlertsQuietRoad(t *testing.T) {
	for _, l := range []model.CongestionLevel{model.CongestionLow, model.CongestionMedium} {
		assert.Empty(t, DeriveAlerts(model.TrafficSnapshot{CongestionLevel: l}))
	}
}

func TestDeriveAlertsRoadConditions(t *testing.T) {
	alerts := DeriveAlerts(model.TrafficSnapshot{
		CongestionLevel: model.CongestionLow,
		RoadConditions: model.RoadConditions{
			Construction: true,
			Closures:     []string{"I-5 northbound closed at exit 12", "SR-99 ramp closed"},
		},
	})
	require.Len(t, alerts, 2)
	assert.Equal(t, model.AlertWarning, alerts[0].Type)
	assert.Equal(t, model.AlertError, alerts[1].Type)
	assert.False(t, alerts[1].Dismissible)
	assert.Equal(t, "I-5 northbound closed at exit 12", alerts[1].Message)
}

func TestDeriveAlertsIncidents(t *testing.T) {
	alerts := DeriveAlerts(model.TrafficSnapshot{
		CongestionLevel: model.CongestionLow,
		Incidents: []model.Incident{
			{ID: "1", Severity: "severe", Description: "multi-vehicle crash"},
			{ID: "2", Severity: "moderate", Description: "stalled truck"},
		},
	})
	require.Len(t, alerts, 2)
	assert.Equal(t, "critical", alerts[0].Severity)
	assert.Equal(t, "moderate", alerts[1].Severity)
	assert.Equal(t, "incident-1", alerts[0].ID)
}
