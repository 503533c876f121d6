package ports

import (
	"context"
	"parcel-dispatch-service/internal/domain"
)

// Persistent origin->destination distance cache (miles).
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
	PutMany(ctx context.Context, origin string, results map[string]float64) error
}

// Persistent address->coordinates cache used by geocoding providers.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
