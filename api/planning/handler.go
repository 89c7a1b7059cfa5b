// Package planning exposes the planner components over HTTP.
package planning

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kilianp07/evplanner/core/environment"
	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/monitoring"
	"github.com/kilianp07/evplanner/core/optimizer"
	"github.com/kilianp07/evplanner/core/planlog"
	"github.com/kilianp07/evplanner/core/planner"
	"github.com/kilianp07/evplanner/core/rangemodel"
	"github.com/kilianp07/evplanner/core/recommend"
	"github.com/kilianp07/evplanner/core/traffic"
	"github.com/kilianp07/evplanner/core/tripmetrics"
	"github.com/kilianp07/evplanner/pkg/export"
)

const maxBodyBytes = 1 << 20

// Deps are the components served by the handlers. Nil members disable the
// matching routes.
type Deps struct {
	Planner     *planner.Planner
	Recommender planner.Recommender
	Traffic     *traffic.Service
	Logs        planlog.Store
	// LogsToken protects the plan log endpoint when non-empty.
	LogsToken string
}

// Register mounts every available route on mux.
func Register(mux *http.ServeMux, d Deps) {
	if d.Planner != nil {
		mux.Handle("/api/plan", NewPlanHandler(d.Planner))
		mux.Handle("/api/optimize", NewOptimizeHandler(d.Planner.Optimizer()))
	}
	mux.Handle("/api/range", NewRangeHandler())
	mux.Handle("/api/trip-metrics", NewTripMetricsHandler())
	if d.Recommender != nil {
		mux.Handle("/api/recommendation", NewRecommendationHandler(d.Recommender))
	}
	if d.Traffic != nil {
		mux.Handle("/api/traffic", NewTrafficHandler(d.Traffic))
		mux.Handle("/api/traffic/alerts", NewAlertsHandler(d.Traffic))
	}
	if d.Logs != nil {
		mux.Handle("/api/plans/logs", NewLogHandler(d.Logs, d.LogsToken))
	}
}

// NewPlanHandler serves POST /api/plan. ?format=csv returns the stop list.
func NewPlanHandler(p *planner.Planner) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodPost) {
			return
		}
		var req planner.TripRequest
		if !decode(w, r, &req) {
			return
		}
		plan, err := p.Plan(r.Context(), req)
		if err != nil {
			if errors.Is(err, planner.ErrInvalidRequest) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			internalError(w, r, err)
			return
		}
		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			if err := export.WriteCSV(w, plan); err != nil {
				internalError(w, r, err)
			}
			return
		}
		writeJSON(w, plan)
	})
}

type optimizeRequest struct {
	DistanceMiles          float64                          `json:"distanceMiles" validate:"gte=0"`
	StartingBatteryPercent float64                          `json:"startingBatteryPercent" validate:"gte=0,lte=100"`
	EV                     model.EVModel                    `json:"ev"`
	Stations               []model.ChargingStationCandidate `json:"stations" validate:"dive"`
	Strategy               model.Strategy                   `json:"strategy"`
}

// NewOptimizeHandler serves POST /api/optimize. ?all=true returns one plan
// per strategy keyed by strategy name.
func NewOptimizeHandler(o *optimizer.Optimizer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodPost) {
			return
		}
		var req optimizeRequest
		if !decode(w, r, &req) || !validate(w, req) {
			return
		}
		in := optimizer.Input{
			DistanceMiles:          req.DistanceMiles,
			StartingBatteryPercent: req.StartingBatteryPercent,
			EV:                     req.EV,
			Stations:               req.Stations,
			Strategy:               req.Strategy,
		}
		if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
			res, err := o.OptimizeAll(in)
			if err != nil {
				internalError(w, r, err)
				return
			}
			out := make(map[string]model.SOCOptimizationResult, len(res))
			for s, v := range res {
				out[s.String()] = v
			}
			writeJSON(w, out)
			return
		}
		res, err := o.Optimize(in)
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, res)
	})
}

type rangeRequest struct {
	DistanceMiles          float64                 `json:"distanceMiles" validate:"gte=0"`
	StartingBatteryPercent float64                 `json:"startingBatteryPercent" validate:"gte=0,lte=100"`
	EV                     model.EVModel           `json:"ev"`
	Elevation              []model.ElevationSample `json:"elevation,omitempty"`
	Wind                   []model.WindSample      `json:"wind,omitempty"`
}

type rangeResponse struct {
	Prediction         model.RangePrediction     `json:"prediction"`
	Environment        model.ElevationWindImpact `json:"environment"`
	AdjustedRangeMiles float64                   `json:"adjustedRangeMiles"`
}

// NewRangeHandler serves POST /api/range.
func NewRangeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodPost) {
			return
		}
		var req rangeRequest
		if !decode(w, r, &req) || !validate(w, req) {
			return
		}
		imp := environment.Analyze(req.Elevation, req.Wind)
		writeJSON(w, rangeResponse{
			Prediction:         rangemodel.Predict(req.DistanceMiles, req.StartingBatteryPercent, req.EV),
			Environment:        imp,
			AdjustedRangeMiles: environment.AdjustedRangeMiles(req.EV.RatedRangeMiles, imp),
		})
	})
}

type tripMetricsRequest struct {
	Route model.RouteCandidate `json:"route"`
	EV    model.EVModel        `json:"ev"`
}

// NewTripMetricsHandler serves POST /api/trip-metrics.
func NewTripMetricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodPost) {
			return
		}
		var req tripMetricsRequest
		if !decode(w, r, &req) || !validate(w, req) {
			return
		}
		writeJSON(w, tripmetrics.Calculate(req.Route, req.EV))
	})
}

type recommendationRequest struct {
	EV                     model.EVModel          `json:"ev"`
	Routes                 []model.RouteCandidate `json:"routes"`
	StartingBatteryPercent float64                `json:"startingBatteryPercent"`
}

// NewRecommendationHandler serves POST /api/recommendation. The response is
// always a Recommendation, even when the inference service fails.
func NewRecommendationHandler(rec planner.Recommender) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodPost) {
			return
		}
		var req recommendationRequest
		if !decode(w, r, &req) {
			return
		}
		writeJSON(w, rec.Recommend(r.Context(), recommend.Request{
			EV:                     req.EV,
			Routes:                 req.Routes,
			StartingBatteryPercent: req.StartingBatteryPercent,
		}))
	})
}

// NewTrafficHandler serves GET /api/traffic?olat=&olng=&dlat=&dlng=.
func NewTrafficHandler(s *traffic.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodGet) {
			return
		}
		o, d, ok := endpoints(w, r)
		if !ok {
			return
		}
		snap, err := s.Data(r.Context(), o, d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, snap)
	})
}

// NewAlertsHandler serves GET /api/traffic/alerts with the same parameters.
func NewAlertsHandler(s *traffic.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodGet) {
			return
		}
		o, d, ok := endpoints(w, r)
		if !ok {
			return
		}
		alerts, err := s.Alerts(r.Context(), o, d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, alerts)
	})
}

func endpoints(w http.ResponseWriter, r *http.Request) (model.LatLng, model.LatLng, bool) {
	q := r.URL.Query()
	var vals [4]float64
	for i, name := range []string{"olat", "olng", "dlat", "dlng"} {
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid or missing %s", name), http.StatusBadRequest)
			return model.LatLng{}, model.LatLng{}, false
		}
		vals[i] = v
	}
	o := model.LatLng{Lat: vals[0], Lng: vals[1]}
	d := model.LatLng{Lat: vals[2], Lng: vals[3]}
	if err := model.ValidateStruct(struct {
		O model.LatLng
		D model.LatLng
	}{o, d}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return model.LatLng{}, model.LatLng{}, false
	}
	return o, d, true
}

// Recover turns a panicking handler into a 500 and reports the panic.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				monitoring.CapturePanic(v, map[string]string{"path": r.URL.Path})
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	monitoring.CaptureException(err, map[string]string{"path": r.URL.Path})
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func validate(w http.ResponseWriter, v any) bool {
	if err := model.ValidateStruct(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
