package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/planner"
	"github.com/kilianp07/evplanner/infra/logger"
)

// RouteSummary is the per-route part of a published plan.
type RouteSummary struct {
	RouteID          string  `json:"route_id"`
	NeedsCharging    bool    `json:"needs_charging"`
	Stops            int     `json:"stops"`
	TotalChargingMin float64 `json:"total_charging_min"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
}

// PlanMessage is published on <prefix>/plans/<plan id>.
type PlanMessage struct {
	MessageID          string                     `json:"message_id"`
	PlanID             string                     `json:"plan_id"`
	Strategy           model.Strategy             `json:"strategy"`
	RecommendedRouteID string                     `json:"recommended_route_id"`
	Source             model.RecommendationSource `json:"source"`
	Routes             []RouteSummary             `json:"routes"`
	Timestamp          int64                      `json:"timestamp"`
}

// AlertMessage is published on <prefix>/alerts when a plan carries alerts.
type AlertMessage struct {
	MessageID string        `json:"message_id"`
	PlanID    string        `json:"plan_id"`
	Alerts    []model.Alert `json:"alerts"`
	Timestamp int64         `json:"timestamp"`
}

// Publisher fans computed plans and their traffic alerts out over MQTT.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        map[string]byte
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

// NewPublisher connects to the broker and marks the planner online.
func NewPublisher(cfg Config, log logger.Logger) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.New("mqtt_publisher")
	}
	opts, err := NewClientOptions(cfg, log)
	if err != nil {
		return nil, err
	}
	p := &Publisher{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		now:        time.Now,
	}
	status := cfg.statusTopic()
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Publish(status, 1, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// PublishPlan sends the plan summary and, if any, its alerts.
func (p *Publisher) PublishPlan(plan planner.TripPlan) error {
	msg := PlanMessage{
		MessageID:          uuid.NewString(),
		PlanID:             plan.PlanID,
		Strategy:           plan.Strategy,
		RecommendedRouteID: plan.Recommendation.RecommendedRouteID,
		Source:             plan.Recommendation.Source,
		Routes:             make([]RouteSummary, 0, len(plan.Routes)),
		Timestamp:          p.now().UnixMilli(),
	}
	for _, rp := range plan.Routes {
		msg.Routes = append(msg.Routes, RouteSummary{
			RouteID:          rp.Route.ID,
			NeedsCharging:    rp.Range.NeedsCharging,
			Stops:            len(rp.Charging.Stops),
			TotalChargingMin: rp.Charging.TotalChargingTimeMin,
			TotalCostUSD:     rp.Charging.TotalCostUSD,
		})
	}
	if err := p.publishJSON(fmt.Sprintf("%s/plans/%s", p.prefix, plan.PlanID), "plans", msg); err != nil {
		return err
	}
	return p.PublishAlerts(plan.PlanID, plan.Alerts)
}

// PublishAlerts sends alerts for a plan. An empty list publishes nothing.
func (p *Publisher) PublishAlerts(planID string, alerts []model.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return p.publishJSON(p.prefix+"/alerts", "alerts", AlertMessage{
		MessageID: uuid.NewString(),
		PlanID:    planID,
		Alerts:    alerts,
		Timestamp: p.now().UnixMilli(),
	})
}

// Run publishes every PlanComputed received on events until ctx is
// canceled or the channel is closed.
func (p *Publisher) Run(ctx context.Context, events <-chan planner.PlanComputed) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := p.PublishPlan(ev.Plan); err != nil {
				p.logger.Errorf("publish plan %s: %v", ev.Plan.PlanID, err)
			}
		}
	}
}

func (p *Publisher) publishJSON(topic, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	qos := byte(0)
	if q, ok := p.qos[kind]; ok {
		qos = q
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s to %s", kind, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
