package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evplanner/core/metrics"
)

// PromSink records planning events in Prometheus metrics.
type PromSink struct {
	plans         *prometheus.CounterVec
	stops         *prometheus.HistogramVec
	chargingMin   *prometheus.HistogramVec
	planLatency   prometheus.Histogram
	recs          *prometheus.CounterVec
	recLatency    *prometheus.HistogramVec
	inferenceFail prometheus.Counter
	traffic       *prometheus.CounterVec
	delay         prometheus.Gauge
}

// NewPromSink registers planner metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.plans, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evplanner_route_plans_total",
		Help: "Charging plans computed per route",
	}, []string{"strategy", "needs_charging"})); err != nil {
		return nil, err
	}
	if s.stops, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evplanner_plan_stops",
		Help:    "Number of charging stops per route plan",
		Buckets: []float64{0, 1, 2, 3},
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.chargingMin, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evplanner_plan_charging_minutes",
		Help:    "Total charging time per route plan",
		Buckets: []float64{0, 10, 20, 30, 45, 60, 90, 120},
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.planLatency, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "evplanner_plan_duration_seconds",
		Help:    "Wall time of a planning run",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if s.recs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evplanner_recommendations_total",
		Help: "Route recommendations by source",
	}, []string{"source"})); err != nil {
		return nil, err
	}
	if s.recLatency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evplanner_recommendation_duration_seconds",
		Help:    "Time spent producing a recommendation",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})); err != nil {
		return nil, err
	}
	if s.inferenceFail, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "evplanner_inference_failures_total",
		Help: "Inference calls abandoned in favour of the fallback",
	})); err != nil {
		return nil, err
	}
	if s.traffic, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evplanner_traffic_lookups_total",
		Help: "Traffic cache lookups",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.delay, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "evplanner_traffic_delay_minutes",
		Help: "Delay of the most recent traffic snapshot",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan counts the route plan and observes its stops and charging time.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	strategy := ev.Strategy.String()
	s.plans.WithLabelValues(strategy, strconv.FormatBool(ev.NeedsCharging)).Inc()
	s.stops.WithLabelValues(strategy).Observe(float64(ev.Stops))
	s.chargingMin.WithLabelValues(strategy).Observe(ev.ChargingMin)
	s.planLatency.Observe(ev.Duration.Seconds())
	return nil
}

// RecordRecommendation counts recommendations by source.
func (s *PromSink) RecordRecommendation(ev coremetrics.RecommendationEvent) error {
	source := string(ev.Source)
	s.recs.WithLabelValues(source).Inc()
	s.recLatency.WithLabelValues(source).Observe(ev.Latency.Seconds())
	if ev.FailureReason != "" {
		s.inferenceFail.Inc()
	}
	return nil
}

// RecordTraffic counts cache hits and misses.
func (s *PromSink) RecordTraffic(ev coremetrics.TrafficEvent) error {
	result := "miss"
	if ev.Hit {
		result = "hit"
	}
	s.traffic.WithLabelValues(result).Inc()
	s.delay.Set(float64(ev.DelayMin))
	return nil
}
