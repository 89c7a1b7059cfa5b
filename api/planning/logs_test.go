package planning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evplanner/core/planlog"
)

type memStore struct{ recs []planlog.Record }

func (m *memStore) Append(_ context.Context, r planlog.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q planlog.Query) ([]planlog.Record, error) {
	var res []planlog.Record
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandlerAuthAndFilters(t *testing.T) {
	store := &memStore{}
	now := time.Now().UTC()
	require.NoError(t, store.Append(context.Background(), planlog.Record{Timestamp: now, PlanID: "p1", Routes: []planlog.RouteSummary{{RouteID: "i5"}}}))
	require.NoError(t, store.Append(context.Background(), planlog.Record{Timestamp: now, PlanID: "p2", Routes: []planlog.RouteSummary{{RouteID: "coast"}}}))
	h := NewLogHandler(store, "tok")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans/logs", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/plans/logs?route_id=i5", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var out []planlog.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].PlanID)
}

func TestLogHandlerEmpty(t *testing.T) {
	h := NewLogHandler(&memStore{}, "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans/logs?plan_id=none", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestLogHandlerMountedOnMux(t *testing.T) {
	mux := newMux(t, nil, &memStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/plans/logs", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
