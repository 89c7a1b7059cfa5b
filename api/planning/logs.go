package planning

import (
	"net/http"
	"time"

	"github.com/kilianp07/evplanner/core/planlog"
)

// NewLogHandler returns an HTTP handler exposing the plan log via GET /api/plans/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store planlog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodGet) {
			return
		}
		if token != "" {
			if r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := planlog.Query{
			PlanID:  r.URL.Query().Get("plan_id"),
			RouteID: r.URL.Query().Get("route_id"),
		}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			internalError(w, r, err)
			return
		}
		if records == nil {
			records = []planlog.Record{}
		}
		writeJSON(w, records)
	})
}
