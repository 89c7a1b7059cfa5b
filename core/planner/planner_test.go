package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/evplanner/core/metrics"
	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/planlog"
	"github.com/kilianp07/evplanner/core/recommend"
	"github.com/kilianp07/evplanner/infra/logger"
)

var (
	modelY   = model.EVModel{Name: "Model Y", BatteryCapacityKWh: 82, EfficiencyKWhPerMile: 0.229, RatedRangeMiles: 358}
	stations = []model.ChargingStationCandidate{
		{ID: "a", PowerKW: 150, CostPerKWh: 0.43, DistanceFromRouteMiles: 120},
		{ID: "b", PowerKW: 250, CostPerKWh: 0.48, DistanceFromRouteMiles: 230},
		{ID: "c", PowerKW: 62.5, CostPerKWh: 0.39, DistanceFromRouteMiles: 290},
	}
	fixedNow = time.Date(2024, 7, 4, 9, 0, 0, 0, time.UTC)
)

func baseRequest() TripRequest {
	return TripRequest{
		EV: modelY,
		Routes: []model.RouteCandidate{
			{ID: "city", DistanceMiles: 100, DurationMin: 110, EnergyEfficiency: 0.25, EstimatedCost: 9},
			{ID: "i5", DistanceMiles: 300, DurationMin: 290, EnergyEfficiency: 0.229, EstimatedCost: 30},
		},
		Stations:               stations,
		StartingBatteryPercent: 80,
		Strategy:               model.StrategyBalanced,
	}
}

type planSink struct {
	mu     sync.Mutex
	events []coremetrics.PlanEvent
}

func (s *planSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

type memStore struct {
	planlog.NopStore
	recs []planlog.Record
}

func (m *memStore) Append(_ context.Context, r planlog.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

type trafficFunc func(ctx context.Context, o, d model.LatLng) (model.TrafficSnapshot, error)

func (f trafficFunc) Data(ctx context.Context, o, d model.LatLng) (model.TrafficSnapshot, error) {
	return f(ctx, o, d)
}

type captureRecommender struct{ req recommend.Request }

func (c *captureRecommender) Recommend(_ context.Context, req recommend.Request) model.Recommendation {
	c.req = req
	return model.Recommendation{RecommendedRouteID: "i5", Source: model.SourceInference}
}

func newPlanner(rec Recommender, opts ...Option) *Planner {
	opts = append([]Option{
		WithLogger(logger.NopLogger{}),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "plan-1" }),
	}, opts...)
	return New(Config{}, rec, opts...)
}

func TestPlanComputesEveryRoute(t *testing.T) {
	sink := &planSink{}
	store := &memStore{}
	p := newPlanner(nil, WithMetrics(sink), WithStore(store))
	defer p.Close()
	events := p.Events().Subscribe()

	plan, err := p.Plan(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, "plan-1", plan.PlanID)
	assert.Equal(t, fixedNow, plan.CreatedAt)
	require.Len(t, plan.Routes, 2)

	city, ok := plan.Route("city")
	require.True(t, ok)
	assert.False(t, city.Range.NeedsCharging)
	assert.Empty(t, city.Charging.Stops)
	assert.InDelta(t, 100, city.Charging.TotalTripTimeMin, 1e-9)

	i5, ok := plan.Route("i5")
	require.True(t, ok)
	assert.True(t, i5.Range.NeedsCharging)
	require.Len(t, i5.Charging.Stops, 2)
	assert.Equal(t, "b", i5.Charging.Stops[0].StationID)
	assert.InDelta(t, 85, i5.Charging.Stops[0].TargetSOC, 1e-9)
	assert.Equal(t, "c", i5.Charging.Stops[1].StationID)
	assert.Zero(t, i5.Charging.Stops[1].DwellTimeMinutes, "already at the balanced cap")
	assert.Equal(t, 100, i5.Metrics.EfficiencyScore)

	assert.Equal(t, model.SourceFallback, plan.Recommendation.Source)
	assert.Nil(t, plan.Traffic)
	assert.Empty(t, plan.Environment.Recommendations)
	assert.InDelta(t, 358, plan.AdjustedRangeMiles, 1e-9)

	assert.Len(t, sink.events, 2)
	require.Len(t, store.recs, 1)
	assert.Equal(t, "Model Y", store.recs[0].Vehicle)
	assert.Len(t, store.recs[0].Routes, 2)

	select {
	case ev := <-events:
		assert.Equal(t, "plan-1", ev.Plan.PlanID)
	case <-time.After(time.Second):
		t.Fatal("no PlanComputed event")
	}
}

func TestPlanPassesChargingPlansToRecommender(t *testing.T) {
	rec := &captureRecommender{}
	plan, err := newPlanner(rec).Plan(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "i5", plan.Recommendation.RecommendedRouteID)
	assert.Equal(t, "plan-1", rec.req.PlanID)
	require.Contains(t, rec.req.ChargingPlans, "i5")
	assert.Len(t, rec.req.ChargingPlans["i5"].Stops, 2)
	assert.Len(t, rec.req.Routes, 2)
}

func TestPlanTrafficFailureIsAbsorbed(t *testing.T) {
	calls := 0
	tp := trafficFunc(func(context.Context, model.LatLng, model.LatLng) (model.TrafficSnapshot, error) {
		calls++
		return model.TrafficSnapshot{}, errors.New("upstream down")
	})
	req := baseRequest()
	req.Origin = &model.LatLng{Lat: 37.77, Lng: -122.42}
	req.Destination = &model.LatLng{Lat: 34.05, Lng: -118.24}

	plan, err := newPlanner(nil, WithTraffic(tp)).Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Nil(t, plan.Traffic)
	assert.Empty(t, plan.Alerts)
	assert.Len(t, plan.Routes, 2)
}

func TestPlanIncludesTrafficAlerts(t *testing.T) {
	tp := trafficFunc(func(context.Context, model.LatLng, model.LatLng) (model.TrafficSnapshot, error) {
		return model.TrafficSnapshot{CongestionLevel: model.CongestionSevere, CurrentDelayMin: 30}, nil
	})
	req := baseRequest()
	req.Origin = &model.LatLng{Lat: 37.77, Lng: -122.42}
	req.Destination = &model.LatLng{Lat: 34.05, Lng: -118.24}

	plan, err := newPlanner(nil, WithTraffic(tp)).Plan(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, plan.Traffic)
	assert.Equal(t, model.CongestionSevere, plan.Traffic.CongestionLevel)
	require.Len(t, plan.Alerts, 1)
	assert.Equal(t, model.AlertWarning, plan.Alerts[0].Type)
}

func TestPlanSkipsTrafficWithoutEndpoints(t *testing.T) {
	tp := trafficFunc(func(context.Context, model.LatLng, model.LatLng) (model.TrafficSnapshot, error) {
		t.Fatal("traffic must not be queried")
		return model.TrafficSnapshot{}, nil
	})
	_, err := newPlanner(nil, WithTraffic(tp)).Plan(context.Background(), baseRequest())
	require.NoError(t, err)
}

func TestPlanRejectsInvalidRequests(t *testing.T) {
	cases := map[string]func(*TripRequest){
		"no routes":      func(r *TripRequest) { r.Routes = nil },
		"battery > 100":  func(r *TripRequest) { r.StartingBatteryPercent = 120 },
		"zero capacity":  func(r *TripRequest) { r.EV.BatteryCapacityKWh = 0 },
		"empty route id": func(r *TripRequest) { r.Routes[0].ID = "" },
		"duplicate id":   func(r *TripRequest) { r.Routes[1].ID = r.Routes[0].ID },
		"negative power": func(r *TripRequest) { r.Stations = []model.ChargingStationCandidate{{PowerKW: -1}} },
		"bad origin":     func(r *TripRequest) { r.Origin = &model.LatLng{Lat: 91} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := baseRequest()
			mutate(&req)
			_, err := newPlanner(nil).Plan(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestConfigDefaultsValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, 3, c.Optimizer.MaxStops)
	assert.Equal(t, 5, c.TrafficTimeoutSeconds)

	c.Optimizer.StopFloorPercent = 120
	assert.Error(t, c.Validate())

	c.SetDefaults()
	c.Optimizer.StopFloorPercent = 20
	c.Optimizer.MaxStops = 4
	assert.Error(t, c.Validate())
	c.Optimizer.MaxStops = 3
	assert.NoError(t, c.Validate())
}
