package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/evplanner/api/planning"
	"github.com/kilianp07/evplanner/config"
	coremetrics "github.com/kilianp07/evplanner/core/metrics"
	coremon "github.com/kilianp07/evplanner/core/monitoring"
	"github.com/kilianp07/evplanner/core/planlog"
	"github.com/kilianp07/evplanner/core/planner"
	"github.com/kilianp07/evplanner/core/recommend"
	"github.com/kilianp07/evplanner/core/traffic"
	"github.com/kilianp07/evplanner/infra/inference"
	"github.com/kilianp07/evplanner/infra/logger"
	"github.com/kilianp07/evplanner/infra/metrics"
	"github.com/kilianp07/evplanner/infra/monitoring"
	"github.com/kilianp07/evplanner/infra/mqtt"
)

// Service wires the planner, its collaborators and the HTTP API.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	planner   *planner.Planner
	store     planlog.Store
	publisher *mqtt.Publisher
	handler   http.Handler
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := NewLogger(cfg.Logging, "service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	recRecorder, _ := sink.(coremetrics.RecommendationRecorder)
	trafficRecorder, _ := sink.(coremetrics.TrafficRecorder)

	store, err := planlog.New(cfg.PlanLog)
	if err != nil {
		return nil, fmt.Errorf("plan log: %w", err)
	}

	var advisor recommend.Advisor
	client, err := inference.NewClient(cfg.Inference, NewLogger(cfg.Logging, "inference"))
	switch {
	case err == nil:
		advisor = client
	case errors.Is(err, inference.ErrNoCredential):
		logg.Warnf("no inference credential, recommendations use the deterministic ranking")
	default:
		_ = store.Close()
		return nil, fmt.Errorf("inference client: %w", err)
	}
	rec := recommend.NewOrchestrator(advisor, NewLogger(cfg.Logging, "recommend"), recRecorder)

	opts := []planner.Option{
		planner.WithMetrics(sink),
		planner.WithStore(store),
		planner.WithLogger(NewLogger(cfg.Logging, "planner")),
	}
	var trafficSvc *traffic.Service
	if cfg.Traffic.Enabled {
		var cacheOpts []traffic.Option
		if trafficRecorder != nil {
			cacheOpts = append(cacheOpts, traffic.WithRecorder(trafficRecorder))
		}
		cacheOpts = append(cacheOpts, traffic.WithLogger(NewLogger(cfg.Logging, "traffic")))
		sim := traffic.NewSimulator(cfg.Traffic.Simulator, time.Now)
		trafficSvc = traffic.NewService(traffic.NewCache(sim, cfg.Traffic.TTL(), cacheOpts...))
		opts = append(opts, planner.WithTraffic(trafficSvc))
	}
	p := planner.New(cfg.Planner, rec, opts...)

	svc := &Service{cfg: cfg, log: logg, planner: p, store: store}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT, NewLogger(cfg.Logging, "mqtt"))
		if err != nil {
			p.Close()
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}

	mux := http.NewServeMux()
	planning.Register(mux, planning.Deps{
		Planner:     p,
		Recommender: rec,
		Traffic:     trafficSvc,
		Logs:        store,
		LogsToken:   cfg.Server.LogsToken,
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	svc.handler = planning.Recover(mux)
	return svc, nil
}

// NewLogger builds a component logger following the logging section.
func NewLogger(c config.LoggingConfig, component string) logger.Logger {
	var out io.Writer = os.Stdout
	if c.Output == "stderr" {
		out = os.Stderr
	}
	if c.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return logger.NewZerologLoggerTo(out, component, c.Level)
}

// Planner exposes the configured planner.
func (s *Service) Planner() *planner.Planner { return s.planner }

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler { return s.handler }

// Run serves the API on ln, or on the configured address when ln is nil,
// and blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context, ln net.Listener) error {
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", s.cfg.Server.Addr)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	// Subscribe before serving so no plan computed over HTTP is missed.
	if s.publisher != nil {
		events := s.planner.Events().Subscribe()
		g.Go(func() error {
			defer s.planner.Events().Unsubscribe(events)
			s.publisher.Run(gctx, events)
			return nil
		})
	}
	g.Go(func() error {
		s.log.Infof("serving planner API on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error {
			return metrics.StartPromServer(gctx, addr, nil, NewLogger(s.cfg.Logging, "metrics"))
		})
	}
	return g.Wait()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.planner.Close()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	coremon.Flush(2 * time.Second)
	return s.store.Close()
}
