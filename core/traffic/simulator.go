package traffic

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/evplanner/core/model"
)

var (
	incidentTypes      = []string{"accident", "road_work", "disabled_vehicle", "weather_hazard"}
	incidentSeverities = []string{"low", "moderate", "severe"}
	weatherConditions  = []string{"clear", "rain", "fog", "snow"}
)

// SimulatorConfig bounds the generated values.
type SimulatorConfig struct {
	Seed             int64   `json:"seed"`
	MinDelayMin      int     `json:"min_delay_min"`
	MaxDelayMin      int     `json:"max_delay_min"`
	ConstructionProb float64 `json:"construction_prob"`
	ClosureProb      float64 `json:"closure_prob"`
}

// SetDefaults applies the standard bounds.
func (c *SimulatorConfig) SetDefaults() {
	if c.MinDelayMin == 0 && c.MaxDelayMin == 0 {
		c.MinDelayMin, c.MaxDelayMin = 5, 35
	}
	if c.ConstructionProb == 0 {
		c.ConstructionProb = 0.2
	}
	if c.ClosureProb == 0 {
		c.ClosureProb = 0.1
	}
}

// Validate checks the delay bounds.
func (c SimulatorConfig) Validate() error {
	if c.MinDelayMin < 0 || c.MaxDelayMin < c.MinDelayMin {
		return fmt.Errorf("invalid delay range [%d,%d]", c.MinDelayMin, c.MaxDelayMin)
	}
	if c.ConstructionProb < 0 || c.ConstructionProb > 1 || c.ClosureProb < 0 || c.ClosureProb > 1 {
		return fmt.Errorf("probabilities must be within [0,1]")
	}
	return nil
}

// Simulator synthesises plausible traffic snapshots.
type Simulator struct {
	cfg  SimulatorConfig
	now  func() time.Time
	mu   sync.Mutex
	rand *rand.Rand
}

// NewSimulator returns a Simulator. A nil clock selects time.Now.
func NewSimulator(cfg SimulatorConfig, now func() time.Time) *Simulator {
	cfg.SetDefaults()
	if now == nil {
		now = time.Now
	}
	return &Simulator{cfg: cfg, now: now, rand: rand.New(rand.NewSource(cfg.Seed))}
}

// Fetch implements Source.
func (s *Simulator) Fetch(ctx context.Context, origin, destination model.LatLng) (model.TrafficSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.TrafficSnapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.TrafficSnapshot{
		CurrentDelayMin: s.cfg.MinDelayMin + s.rand.Intn(s.cfg.MaxDelayMin-s.cfg.MinDelayMin+1),
		CongestionLevel: model.CongestionLevels[s.rand.Intn(len(model.CongestionLevels))],
		Confidence:      60 + s.rand.Intn(41),
		Incidents:       []model.Incident{},
		LastUpdated:     s.now(),
	}
	for i := 0; i < 2; i++ {
		snap.AlternativeRoutes = append(snap.AlternativeRoutes, model.AlternativeRoute{
			ID:           fmt.Sprintf("alt-%d", i+1),
			Name:         fmt.Sprintf("Alternative %d", i+1),
			Geometry:     s.perturbedLine(origin, destination, 0.01*float64(i+1)),
			ExtraMinutes: float64(2 + s.rand.Intn(15)),
		})
	}
	if s.rand.Intn(2) == 1 {
		mid := model.LatLng{Lat: (origin.Lat + destination.Lat) / 2, Lng: (origin.Lng + destination.Lng) / 2}
		typ := incidentTypes[s.rand.Intn(len(incidentTypes))]
		snap.Incidents = append(snap.Incidents, model.Incident{
			ID:          uuid.NewString(),
			Type:        typ,
			Severity:    incidentSeverities[s.rand.Intn(len(incidentSeverities))],
			Description: fmt.Sprintf("Reported %s near route midpoint", typ),
			Location:    s.jitter(mid, 0.005),
			DelayMin:    s.rand.Intn(20),
		})
	}
	snap.RoadConditions = model.RoadConditions{
		Construction: s.rand.Float64() < s.cfg.ConstructionProb,
		Weather:      weatherConditions[s.rand.Intn(len(weatherConditions))],
	}
	if s.rand.Float64() < s.cfg.ClosureProb {
		snap.RoadConditions.Closures = []string{fmt.Sprintf("Lane closure %d mi ahead", 1+s.rand.Intn(30))}
	}
	return snap, nil
}

func (s *Simulator) perturbedLine(a, b model.LatLng, spread float64) []model.LatLng {
	const points = 5
	line := make([]model.LatLng, 0, points)
	for i := 0; i < points; i++ {
		switch i {
		case 0:
			line = append(line, a)
		case points - 1:
			line = append(line, b)
		default:
			f := float64(i) / float64(points-1)
			p := model.LatLng{Lat: a.Lat + (b.Lat-a.Lat)*f, Lng: a.Lng + (b.Lng-a.Lng)*f}
			line = append(line, s.jitter(p, spread))
		}
	}
	return line
}

func (s *Simulator) jitter(p model.LatLng, spread float64) model.LatLng {
	return model.LatLng{
		Lat: p.Lat + (s.rand.Float64()*2-1)*spread,
		Lng: p.Lng + (s.rand.Float64()*2-1)*spread,
	}
}
