package distance

import (
	"context"
	"errors"
)

// ConstantDistanceProvider returns the same distance for every pair of
// locations, identical endpoints included. It stands in when no distance
// data is configured.
type ConstantDistanceProvider struct {
	Miles float64
}

func NewConstantDistanceProvider(miles float64) (*ConstantDistanceProvider, error) {
	if miles < 0 {
		return nil, errors.New("constant distance provider: miles must not be negative")
	}
	return &ConstantDistanceProvider{Miles: miles}, nil
}

func (c *ConstantDistanceProvider) Distance(ctx context.Context, origin, destination string) (float64, error) {
	return c.Miles, nil
}
