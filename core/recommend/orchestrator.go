package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/evplanner/core/logger"
	coremetrics "github.com/kilianp07/evplanner/core/metrics"
	"github.com/kilianp07/evplanner/core/model"
)

// Advisor asks an external inference service for free-text advice.
type Advisor interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

// Request holds everything the recommendation is based on.
type Request struct {
	PlanID                 string
	EV                     model.EVModel
	Routes                 []model.RouteCandidate
	StartingBatteryPercent float64
	// ChargingPlans optionally maps route IDs to their optimizer result.
	ChargingPlans map[string]model.SOCOptimizationResult
}

var (
	errNoAdvisor    = errors.New("no advisor configured")
	errUnknownRoute = errors.New("recommended route not among candidates")
)

// Orchestrator combines the Advisor with the deterministic Fallback.
type Orchestrator struct {
	advisor Advisor
	log     logger.Logger
	rec     coremetrics.RecommendationRecorder
}

// NewOrchestrator returns an Orchestrator. A nil advisor runs in pure
// deterministic mode; a nil recorder disables metrics.
func NewOrchestrator(advisor Advisor, log logger.Logger, rec coremetrics.RecommendationRecorder) *Orchestrator {
	if rec == nil {
		rec = coremetrics.NopSink{}
	}
	return &Orchestrator{advisor: advisor, log: logger.OrNop(log), rec: rec}
}

// Recommend never fails. Errors from the advisor are logged and replaced by
// the fallback ranking.
func (o *Orchestrator) Recommend(ctx context.Context, req Request) model.Recommendation {
	start := time.Now()
	rec, err := o.fromAdvisor(ctx, req)
	if err != nil {
		if o.advisor != nil {
			o.log.Warnf("inference recommendation unavailable, using fallback: %v", err)
		}
		rec = Fallback(req)
	}
	ev := coremetrics.RecommendationEvent{
		PlanID:     req.PlanID,
		Source:     rec.Source,
		RouteID:    rec.RecommendedRouteID,
		Confidence: rec.Confidence,
		Latency:    time.Since(start),
		Time:       time.Now(),
	}
	if err != nil {
		ev.FailureReason = err.Error()
	}
	if rerr := o.rec.RecordRecommendation(ev); rerr != nil {
		o.log.Warnf("record recommendation: %v", rerr)
	}
	return rec
}

func (o *Orchestrator) fromAdvisor(ctx context.Context, req Request) (model.Recommendation, error) {
	if o.advisor == nil {
		return model.Recommendation{}, errNoAdvisor
	}
	if len(req.Routes) == 0 {
		return model.Recommendation{}, errors.New("no routes")
	}
	text, err := o.advisor.Advise(ctx, BuildPrompt(req))
	if err != nil {
		return model.Recommendation{}, fmt.Errorf("advise: %w", err)
	}
	reply, err := ParseReply(text)
	if err != nil {
		o.log.Debugw("unparseable inference reply", map[string]any{"reply_len": len(text)})
		return model.Recommendation{}, err
	}
	if !knownRoute(req.Routes, reply.RecommendedRouteID) {
		return model.Recommendation{}, fmt.Errorf("%w: %q", errUnknownRoute, reply.RecommendedRouteID)
	}
	summary := reply.Summary
	if summary == "" {
		summary = fmt.Sprintf("Route %s is recommended.", reply.RecommendedRouteID)
	}
	return model.Recommendation{
		Summary:            summary,
		RecommendedRouteID: reply.RecommendedRouteID,
		Confidence:         reply.Confidence,
		Reasons:            reply.Reasons,
		ChargingPlan:       reply.ChargingPlan,
		Risks:              reply.Risks,
		Source:             model.SourceInference,
	}, nil
}

func knownRoute(routes []model.RouteCandidate, id string) bool {
	for _, r := range routes {
		if r.ID == id {
			return true
		}
	}
	return false
}
