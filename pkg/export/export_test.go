package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/planner"
)

func samplePlan() planner.TripPlan {
	return planner.TripPlan{
		PlanID:   "plan-1",
		Strategy: model.StrategyBalanced,
		Routes: []planner.RoutePlan{
			{Route: model.RouteCandidate{ID: "city"}, Charging: model.SOCOptimizationResult{Stops: []model.ChargeStop{}}},
			{
				Route: model.RouteCandidate{ID: "i5"},
				Charging: model.SOCOptimizationResult{
					Strategy: model.StrategyBalanced,
					Stops: []model.ChargeStop{
						{StopNumber: 1, StationID: "near", ArrivalSOC: 20, TargetSOC: 55, ChargingSpeedKW: 150, DwellTimeMinutes: 12, CostUSD: 11.48, Reason: "low, charge"},
						{StopNumber: 2, StationID: "far", ArrivalSOC: 55, TargetSOC: 85, ChargingSpeedKW: 150, DwellTimeMinutes: 10, CostUSD: 8.61},
					},
				},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samplePlan()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "plan_id,route_id,strategy,stop_number,station_id,station_name,arrival_soc,target_soc,charging_speed_kw,dwell_time_minutes,cost_usd,reason", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "plan-1,i5,balanced,1,near,,20,55,150,12,11.48,"))
	assert.True(t, strings.HasSuffix(lines[1], `"low, charge"`))

	rows, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "far", rows[1].StationID)
	assert.Equal(t, 10, rows[1].DwellTimeMinutes)
	assert.InDelta(t, 8.61, rows[1].CostUSD, 1e-9)
}

func TestWriteCSVWithoutStops(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, planner.TripPlan{PlanID: "p"}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.True(t, strings.HasPrefix(buf.String(), "plan_id,route_id,strategy,"))

	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePlan(), "json"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "plan-1", out["planId"])
	assert.Equal(t, "balanced", out["strategy"])

	assert.Error(t, Write(&buf, samplePlan(), "xml"))
}
