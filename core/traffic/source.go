package traffic

import (
	"context"

	"github.com/kilianp07/evplanner/core/model"
)

// Source produces a fresh traffic snapshot. The simulator is the default
// implementation; a real provider is a drop-in replacement.
type Source interface {
	Fetch(ctx context.Context, origin, destination model.LatLng) (model.TrafficSnapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, origin, destination model.LatLng) (model.TrafficSnapshot, error)

func (f SourceFunc) Fetch(ctx context.Context, origin, destination model.LatLng) (model.TrafficSnapshot, error) {
	return f(ctx, origin, destination)
}
