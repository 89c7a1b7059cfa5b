package traffic

import (
	"context"

	"github.com/kilianp07/evplanner/core/model"
)

// Service exposes the two traffic calls used by planners and handlers.
type Service struct {
	cache *Cache
}

// NewService wraps a Cache.
func NewService(c *Cache) *Service {
	return &Service{cache: c}
}

// Data returns the current snapshot for the pair.
func (s *Service) Data(ctx context.Context, origin, destination model.LatLng) (model.TrafficSnapshot, error) {
	return s.cache.Get(ctx, origin, destination)
}

// Alerts returns the alerts derived from the current snapshot.
func (s *Service) Alerts(ctx context.Context, origin, destination model.LatLng) ([]model.Alert, error) {
	snap, err := s.cache.Get(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	return DeriveAlerts(snap), nil
}
