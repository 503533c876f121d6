package services

import (
	"context"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/ports"
	"sync"

	"golang.org/x/sync/errgroup"
)

// prefetchLimit bounds concurrent lookups against the distance provider.
const prefetchLimit = 5

// DistanceTable is an in-memory "origin|destination" -> miles table filled by
// PrefetchDistances. It is safe for concurrent use.
type DistanceTable struct {
	mu    sync.RWMutex
	miles map[string]float64
}

func NewDistanceTable() *DistanceTable {
	return &DistanceTable{miles: make(map[string]float64)}
}

func pairKey(origin, destination string) string { return origin + "|" + destination }

// Set records the distance of one directed pair.
func (d *DistanceTable) Set(origin, destination string, miles float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.miles[pairKey(origin, destination)] = miles
}

// Len returns the number of stored pairs.
func (d *DistanceTable) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.miles)
}

// Distance serves a stored pair. An unknown pair from a location to itself is zero.
func (d *DistanceTable) Distance(ctx context.Context, origin, destination string) (float64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.miles[pairKey(origin, destination)]
	if !ok {
		if origin == destination {
			return 0, nil
		}
		return 0, fmt.Errorf("distance table: missing distance from %q to %q", origin, destination)
	}
	return m, nil
}

// PrefetchDistances asks the provider once for every ordered pair of
// locations, self pairs included, and returns the answers as a table.
// Batched providers get one request per origin.
func PrefetchDistances(
	ctx context.Context,
	provider ports.DistanceProvider,
	locations []string,
) (*DistanceTable, error) {
	if provider == nil {
		return nil, errors.New("prefetch distances: distance provider must not be nil")
	}

	uniq := make([]string, 0, len(locations))
	seen := make(map[string]struct{}, len(locations))
	for _, l := range locations {
		if _, ok := seen[l]; ok || l == "" {
			continue
		}
		seen[l] = struct{}{}
		uniq = append(uniq, l)
	}

	table := NewDistanceTable()
	mp, hasMatrix := provider.(ports.DistanceMatrixProvider)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchLimit)

	for _, origin := range uniq {
		g.Go(func() error {
			if hasMatrix {
				row, err := mp.Distances(ctx, origin, uniq)
				if err != nil {
					return fmt.Errorf("prefetch distances: from %q: %w", origin, err)
				}
				for _, dest := range uniq {
					miles, ok := row[dest]
					if !ok {
						return fmt.Errorf("prefetch distances: missing distance from %q to %q", origin, dest)
					}
					table.Set(origin, dest, miles)
				}
				return nil
			}

			for _, dest := range uniq {
				miles, err := provider.Distance(ctx, origin, dest)
				if err != nil {
					return fmt.Errorf("prefetch distances: from %q to %q: %w", origin, dest, err)
				}
				table.Set(origin, dest, miles)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return table, nil
}
