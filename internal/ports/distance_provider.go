package ports

import "context"

// Contract for retrieving the travel distance between two locations.
// Locations are opaque strings (resolved addresses or the depot label).
type DistanceProvider interface {
	// Return the non-negative distance in miles from origin to destination.
	Distance(ctx context.Context, origin string, destination string) (float64, error)
}
