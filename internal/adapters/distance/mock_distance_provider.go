package distance

import (
	"context"
	"fmt"
	"sync/atomic"
)

type MockPair struct {
	From, To string
	Miles    float64
}

// MockDistanceProvider answers from a fixed list of directed pairs and counts calls.
type MockDistanceProvider struct {
	m     map[string]float64
	calls atomic.Int64
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Miles
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) Distance(ctx context.Context, origin, destination string) (float64, error) {
	p.calls.Add(1)
	if origin == destination {
		return 0, nil
	}
	r, ok := p.m[origin+"|"+destination]
	if !ok {
		return 0, fmt.Errorf("missing pair %q -> %q", origin, destination)
	}

	return r, nil
}

// Calls returns how many lookups were made.
func (p *MockDistanceProvider) Calls() int { return int(p.calls.Load()) }
