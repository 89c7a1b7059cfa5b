package planner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/evplanner/core/environment"
	"github.com/kilianp07/evplanner/core/logger"
	coremetrics "github.com/kilianp07/evplanner/core/metrics"
	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/monitoring"
	"github.com/kilianp07/evplanner/core/optimizer"
	"github.com/kilianp07/evplanner/core/planlog"
	"github.com/kilianp07/evplanner/core/rangemodel"
	"github.com/kilianp07/evplanner/core/recommend"
	"github.com/kilianp07/evplanner/core/traffic"
	"github.com/kilianp07/evplanner/core/tripmetrics"
	"github.com/kilianp07/evplanner/internal/eventbus"
)

// Recommender produces the qualitative route pick. It must not fail.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) model.Recommendation
}

// TrafficProvider returns a snapshot for an origin and destination pair.
type TrafficProvider interface {
	Data(ctx context.Context, origin, destination model.LatLng) (model.TrafficSnapshot, error)
}

// Planner runs the full planning pipeline.
type Planner struct {
	cfg         Config
	optimizer   *optimizer.Optimizer
	recommender Recommender
	traffic     TrafficProvider
	bus         *eventbus.Bus[PlanComputed]
	metrics     coremetrics.MetricsSink
	store       planlog.Store
	log         logger.Logger
	now         func() time.Time
	newID       func() string
}

// Option customises a Planner.
type Option func(*Planner)

// WithTraffic enables the traffic lookup.
func WithTraffic(t TrafficProvider) Option { return func(p *Planner) { p.traffic = t } }

// WithMetrics sets the metrics sink.
func WithMetrics(m coremetrics.MetricsSink) Option { return func(p *Planner) { p.metrics = m } }

// WithStore sets the plan log.
func WithStore(s planlog.Store) Option { return func(p *Planner) { p.store = s } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(p *Planner) { p.log = logger.OrNop(l) } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(p *Planner) { p.now = now } }

// WithIDGenerator overrides plan id generation.
func WithIDGenerator(f func() string) Option { return func(p *Planner) { p.newID = f } }

// New returns a Planner. A nil recommender uses the deterministic fallback.
func New(cfg Config, rec Recommender, opts ...Option) *Planner {
	cfg.SetDefaults()
	p := &Planner{
		cfg:         cfg,
		recommender: rec,
		metrics:     coremetrics.NopSink{},
		store:       planlog.NopStore{},
		log:         logger.Nop{},
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	if p.recommender == nil {
		p.recommender = recommend.NewOrchestrator(nil, p.log, nil)
	}
	p.optimizer = optimizer.New(cfg.Optimizer, p.log)
	p.bus = eventbus.New[PlanComputed](cfg.EventBuffer)
	return p
}

// Events returns the bus carrying PlanComputed events.
func (p *Planner) Events() *eventbus.Bus[PlanComputed] { return p.bus }

// Optimizer exposes the configured optimizer for single-route calls.
func (p *Planner) Optimizer() *optimizer.Optimizer { return p.optimizer }

// Close closes the event bus.
func (p *Planner) Close() { p.bus.Close() }

// Plan validates req and computes a TripPlan. Route planning runs per route
// in parallel; traffic runs alongside and its failure only leaves Traffic
// nil. The recommendation waits for the charging plans it summarises.
func (p *Planner) Plan(ctx context.Context, req TripRequest) (TripPlan, error) {
	if err := req.Validate(); err != nil {
		return TripPlan{}, err
	}
	start := p.now()
	plan := TripPlan{
		PlanID:    p.newID(),
		CreatedAt: start,
		Strategy:  req.Strategy,
		Routes:    make([]RoutePlan, len(req.Routes)),
	}
	plan.Environment = environment.Analyze(req.Elevation, req.Wind)
	plan.AdjustedRangeMiles = environment.AdjustedRangeMiles(req.EV.RatedRangeMiles, plan.Environment)

	g, gctx := errgroup.WithContext(ctx)
	if p.traffic != nil && req.HasEndpoints() {
		g.Go(func() error {
			plan.Traffic, plan.Alerts = p.lookupTraffic(gctx, *req.Origin, *req.Destination)
			return nil
		})
	}
	g.Go(func() error {
		var rg errgroup.Group
		for i, route := range req.Routes {
			i, route := i, route
			rg.Go(func() error {
				rp, err := p.planRoute(req, route)
				plan.Routes[i] = rp
				return err
			})
		}
		if err := rg.Wait(); err != nil {
			return err
		}
		charging := make(map[string]model.SOCOptimizationResult, len(plan.Routes))
		for _, rp := range plan.Routes {
			charging[rp.Route.ID] = rp.Charging
		}
		plan.Recommendation = p.recommender.Recommend(gctx, recommend.Request{
			PlanID:                 plan.PlanID,
			EV:                     req.EV,
			Routes:                 req.Routes,
			StartingBatteryPercent: req.StartingBatteryPercent,
			ChargingPlans:          charging,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		p.log.Errorf("plan %s failed: %v", plan.PlanID, err)
		monitoring.CaptureException(err, map[string]string{"component": "planner", "plan_id": plan.PlanID})
		return TripPlan{}, err
	}

	elapsed := p.now().Sub(start)
	p.record(ctx, req, plan, elapsed)
	p.bus.Publish(PlanComputed{Plan: plan, Duration: elapsed})
	p.log.Infof("plan %s computed for %d routes, recommended %s (%s)",
		plan.PlanID, len(plan.Routes), plan.Recommendation.RecommendedRouteID, plan.Recommendation.Source)
	return plan, nil
}

func (p *Planner) planRoute(req TripRequest, route model.RouteCandidate) (RoutePlan, error) {
	rp := RoutePlan{
		Route:   route,
		Range:   rangemodel.Predict(route.DistanceMiles, req.StartingBatteryPercent, req.EV),
		Metrics: tripmetrics.Calculate(route, req.EV),
	}
	res, err := p.optimizer.Optimize(optimizer.Input{
		DistanceMiles:          route.DistanceMiles,
		StartingBatteryPercent: req.StartingBatteryPercent,
		EV:                     req.EV,
		Stations:               req.Stations,
		Strategy:               req.Strategy,
	})
	if err != nil {
		return rp, err
	}
	rp.Charging = res
	return rp, nil
}

func (p *Planner) lookupTraffic(ctx context.Context, origin, destination model.LatLng) (*model.TrafficSnapshot, []model.Alert) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.TrafficTimeoutSeconds)*time.Second)
	defer cancel()
	snap, err := p.traffic.Data(ctx, origin, destination)
	if err != nil {
		p.log.Warnf("traffic unavailable: %v", err)
		return nil, nil
	}
	return &snap, traffic.DeriveAlerts(snap)
}

// record writes metrics and the plan log. Failures are logged only.
func (p *Planner) record(ctx context.Context, req TripRequest, plan TripPlan, elapsed time.Duration) {
	rec := planlog.Record{
		Timestamp:              plan.CreatedAt,
		PlanID:                 plan.PlanID,
		Vehicle:                req.EV.Name,
		Strategy:               plan.Strategy,
		StartingBatteryPercent: req.StartingBatteryPercent,
		RecommendedRouteID:     plan.Recommendation.RecommendedRouteID,
		RecommendationSource:   plan.Recommendation.Source,
		Routes:                 make([]planlog.RouteSummary, 0, len(plan.Routes)),
	}
	for _, rp := range plan.Routes {
		ev := coremetrics.PlanEvent{
			PlanID:        plan.PlanID,
			RouteID:       rp.Route.ID,
			Strategy:      plan.Strategy,
			Stops:         len(rp.Charging.Stops),
			ChargingMin:   rp.Charging.TotalChargingTimeMin,
			CostUSD:       rp.Charging.TotalCostUSD,
			NeedsCharging: rp.Range.NeedsCharging,
			Duration:      elapsed,
			Time:          plan.CreatedAt,
		}
		if err := p.metrics.RecordPlan(ev); err != nil {
			p.log.Warnf("record plan metrics: %v", err)
		}
		rec.Routes = append(rec.Routes, planlog.RouteSummary{
			RouteID:          rp.Route.ID,
			DistanceMiles:    rp.Route.DistanceMiles,
			NeedsCharging:    rp.Range.NeedsCharging,
			Stops:            len(rp.Charging.Stops),
			TotalChargingMin: rp.Charging.TotalChargingTimeMin,
			TotalCostUSD:     rp.Charging.TotalCostUSD,
			Warnings:         rp.Charging.Warnings,
		})
	}
	if err := p.store.Append(ctx, rec); err != nil {
		p.log.Warnf("append plan log: %v", err)
		monitoring.CaptureException(err, map[string]string{"component": "planlog"})
	}
}
