package planning

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/planlog"
	"github.com/kilianp07/evplanner/core/planner"
	"github.com/kilianp07/evplanner/core/recommend"
	"github.com/kilianp07/evplanner/core/traffic"
	"github.com/kilianp07/evplanner/core/tripmetrics"
	"github.com/kilianp07/evplanner/infra/logger"
)

const evJSON = `{"name":"Model Y","batteryCapacityKWh":82,"efficiencyKWhPerMile":0.229,"ratedRangeMiles":358}`

func newMux(t *testing.T, src traffic.Source, logs planlog.Store) *http.ServeMux {
	t.Helper()
	p := planner.New(planner.Config{}, nil, planner.WithLogger(logger.NopLogger{}))
	t.Cleanup(p.Close)
	mux := http.NewServeMux()
	d := Deps{
		Planner:     p,
		Recommender: recommend.NewOrchestrator(nil, nil, nil),
		Logs:        logs,
		LogsToken:   "tok",
	}
	if src != nil {
		d.Traffic = traffic.NewService(traffic.NewCache(src, time.Minute))
	}
	Register(mux, d)
	return mux
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	mux.ServeHTTP(rr, req)
	return rr
}

func TestPlanHandler(t *testing.T) {
	mux := newMux(t, nil, nil)
	body := `{"ev":` + evJSON + `,"startingBatteryPercent":80,"strategy":"balanced",
		"routes":[{"id":"i5","distanceMiles":300,"durationMin":290,"energyEfficiency":0.229}],
		"stations":[{"id":"b","powerKW":250,"costPerKWh":0.48,"distanceFromRouteMiles":230}]}`

	rr := do(mux, http.MethodPost, "/api/plan", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var plan planner.TripPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plan))
	require.Len(t, plan.Routes, 1)
	assert.Len(t, plan.Routes[0].Charging.Stops, 1)
	assert.Equal(t, "i5", plan.Recommendation.RecommendedRouteID)
	assert.Equal(t, model.SourceFallback, plan.Recommendation.Source)

	rr = do(mux, http.MethodPost, "/api/plan?format=csv", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Equal(t, 2, strings.Count(rr.Body.String(), "\n"))
}

func TestPlanHandlerBadInput(t *testing.T) {
	mux := newMux(t, nil, nil)
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/api/plan", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/api/plan", `{"ev":`+evJSON+`,"routes":[]}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(mux, http.MethodGet, "/api/plan", "").Code)
}

func TestOptimizeHandler(t *testing.T) {
	mux := newMux(t, nil, nil)
	body := `{"distanceMiles":300,"startingBatteryPercent":80,"ev":` + evJSON + `,"strategy":"minimize_cost",
		"stations":[{"id":"b","powerKW":250,"costPerKWh":0.48,"distanceFromRouteMiles":230}]}`

	rr := do(mux, http.MethodPost, "/api/optimize", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res model.SOCOptimizationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, model.StrategyMinimizeCost, res.Strategy)
	require.Len(t, res.Stops, 1)
	assert.InDelta(t, 90, res.Stops[0].TargetSOC, 1e-9)

	rr = do(mux, http.MethodPost, "/api/optimize?all=true", body)
	require.Equal(t, http.StatusOK, rr.Code)
	var all map[string]model.SOCOptimizationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all, 3)
	assert.Contains(t, all, "minimize_time")

	bad := `{"distanceMiles":300,"startingBatteryPercent":140,"ev":` + evJSON + `}`
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/api/optimize", bad).Code)
}

func TestRangeHandler(t *testing.T) {
	mux := newMux(t, nil, nil)
	rr := do(mux, http.MethodPost, "/api/range", `{"distanceMiles":300,"startingBatteryPercent":80,"ev":`+evJSON+`}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out rangeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.True(t, out.Prediction.NeedsCharging)
	assert.False(t, out.Prediction.CanReach)
	assert.InDelta(t, 358, out.AdjustedRangeMiles, 1e-9)
}

func TestTripMetricsHandler(t *testing.T) {
	mux := newMux(t, nil, nil)
	rr := do(mux, http.MethodPost, "/api/trip-metrics", `{"route":{"id":"r","distanceMiles":100,"energyEfficiency":0.25},"ev":`+evJSON+`}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var m tripmetrics.TripMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.InDelta(t, 40.4, m.CO2SavedKg, 1e-9)
	assert.Equal(t, 2, m.EquivalentTrees)
}

func TestRecommendationHandler(t *testing.T) {
	mux := newMux(t, nil, nil)
	rr := do(mux, http.MethodPost, "/api/recommendation", `{"ev":`+evJSON+`,"startingBatteryPercent":90,
		"routes":[{"id":"a","distanceMiles":100,"durationMin":100,"energyEfficiency":0.3},
		          {"id":"b","distanceMiles":110,"durationMin":105,"energyEfficiency":0.2}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var rec model.Recommendation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "b", rec.RecommendedRouteID)
	assert.Equal(t, recommend.FallbackConfidence, rec.Confidence)
}

func TestTrafficHandlers(t *testing.T) {
	src := traffic.SourceFunc(func(context.Context, model.LatLng, model.LatLng) (model.TrafficSnapshot, error) {
		return model.TrafficSnapshot{CongestionLevel: model.CongestionHigh, CurrentDelayMin: 14}, nil
	})
	mux := newMux(t, src, nil)

	rr := do(mux, http.MethodGet, "/api/traffic?olat=37.77&olng=-122.42&dlat=34.05&dlng=-118.24", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var snap model.TrafficSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 14, snap.CurrentDelayMin)

	rr = do(mux, http.MethodGet, "/api/traffic/alerts?olat=37.77&olng=-122.42&dlat=34.05&dlng=-118.24", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var alerts []model.Alert
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertInfo, alerts[0].Type)

	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodGet, "/api/traffic?olat=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, http.MethodGet, "/api/traffic?olat=95&olng=0&dlat=0&dlng=0", "").Code)
}

func TestTrafficHandlerUpstreamError(t *testing.T) {
	src := traffic.SourceFunc(func(context.Context, model.LatLng, model.LatLng) (model.TrafficSnapshot, error) {
		return model.TrafficSnapshot{}, errors.New("down")
	})
	mux := newMux(t, src, nil)
	rr := do(mux, http.MethodGet, "/api/traffic?olat=1&olng=2&dlat=3&dlng=4", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestRoutesDisabledWithoutDeps(t *testing.T) {
	mux := newMux(t, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(mux, http.MethodGet, "/api/traffic?olat=1&olng=2&dlat=3&dlng=4", "").Code)
	assert.Equal(t, http.StatusNotFound, do(mux, http.MethodGet, "/api/plans/logs", "").Code)
}

func TestRecoverReportsPanic(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil station")
	}))
	rr := do(h, http.MethodGet, "/api/plan", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
