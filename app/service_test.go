package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evplanner/config"
	"github.com/kilianp07/evplanner/core/factory"
	"github.com/kilianp07/evplanner/core/planlog"
)

const tripBody = `{
  "ev": {"name":"Model 3","batteryCapacityKWh":75,"efficiencyKWhPerMile":0.25,"ratedRangeMiles":300},
  "startingBatteryPercent": 90,
  "routes": [{"id":"short","distanceMiles":120,"durationMin":130,"energyEfficiency":0.25}],
  "origin": {"lat":37.77,"lng":-122.42},
  "destination": {"lat":36.6,"lng":-121.9}
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.PlanLog.Backend = "jsonl"
	cfg.PlanLog.Path = filepath.Join(t.TempDir(), "plans.jsonl")
	cfg.Traffic.Enabled = true
	cfg.Traffic.Simulator.Seed = 1
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServicePlansAndLogs(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/plan", "application/json", strings.NewReader(tripBody))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	recs, err := svc.store.Query(context.Background(), planlog.Query{RouteID: "short"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "short", recs[0].RecommendedRouteID)

	resp, err = http.Get(srv.URL + "/api/traffic?olat=37.77&olng=-122.42&dlat=36.6&dlng=-121.9")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestNewRejectsUnknownSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err := New(cfg)
	assert.Error(t, err)
}
