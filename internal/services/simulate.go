package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"parcel-dispatch-service/internal/store"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type FleetOptions struct {
	// Drivers is how many trucks can be on the road at once. Zero means one per truck.
	Drivers int
	Rules   DispatchRules
	// Prefetch queries every distance pair up front so the dispatch loop never
	// waits on the provider.
	Prefetch bool
}

// DeadlineViolation records a package delivered after its deadline.
type DeadlineViolation struct {
	PackageID   int
	TruckID     int
	Deadline    domain.Deadline
	DeliveredAt time.Duration
}

type FleetResult struct {
	RunID      string
	Failures   []error
	Violations []DeadlineViolation
	Delivered  int
	TotalMiles float64
}

type driver struct {
	id     int
	freeAt time.Duration
	// stranded drivers are with a truck that never made it back.
	stranded bool
}

// SimulateFleet dispatches every loaded truck and checks deadlines afterwards.
//
// The first Drivers trucks, in departure order, run in parallel; they share no
// state besides the packages each one owns. Remaining trucks wait for the
// earliest driver back at the depot and leave no earlier than that return.
// A truck that fails is reported in FleetResult.Failures; the other trucks
// keep running.
func SimulateFleet(
	ctx context.Context,
	packages *store.Table[*domain.Package],
	trucks []*domain.Truck,
	provider ports.DistanceProvider,
	opts FleetOptions,
) (_ *FleetResult, err error) {
	ctx, runID := ensureRunID(ctx)
	defer obs.Time(ctx, "services.SimulateFleet")(&err)

	if packages == nil {
		return nil, errors.New("simulate fleet: package table must not be nil")
	}
	if provider == nil {
		return nil, errors.New("simulate fleet: distance provider must not be nil")
	}

	if opts.Prefetch {
		table, err := PrefetchDistances(ctx, provider, fleetLocations(trucks))
		if err != nil {
			return nil, fmt.Errorf("simulate fleet: %w", err)
		}
		provider = table
	}

	order := slices.Clone(trucks)
	slices.SortStableFunc(order, func(a, b *domain.Truck) int {
		if a.DepartAt != b.DepartAt {
			if a.DepartAt < b.DepartAt {
				return -1
			}
			return 1
		}
		return a.TruckID - b.TruckID
	})

	nDrivers := opts.Drivers
	if nDrivers <= 0 || nDrivers > len(order) {
		nDrivers = len(order)
	}

	result := &FleetResult{RunID: runID}
	var mu sync.Mutex
	record := func(t *domain.Truck, err error) error {
		if err == nil {
			return nil
		}
		var f *domain.Failure
		if !errors.As(err, &f) {
			return err
		}
		mu.Lock()
		result.Failures = append(result.Failures, err)
		mu.Unlock()
		log.Printf("run_id=%s level=ERROR op=simulate truck=%d err=%q", runID, t.TruckID, err)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range order[:nDrivers] {
		t.DriverID = i + 1
		g.Go(func() error {
			return record(t, DispatchTruck(gctx, t, provider, opts.Rules))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulate fleet: %w", err)
	}

	drivers := make([]*driver, 0, nDrivers)
	for _, t := range order[:nDrivers] {
		drivers = append(drivers, &driver{id: t.DriverID, freeAt: t.Clock, stranded: t.Location != t.Depot})
	}

	for _, t := range order[nDrivers:] {
		d := earliestDriver(drivers)
		if d == nil {
			_ = record(t, &domain.Failure{Op: "simulate", Severity: domain.Abort, TruckID: t.TruckID, Err: errors.New("no driver available")})
			continue
		}

		t.DriverID = d.id
		if d.freeAt > t.DepartAt {
			t.DepartAt = d.freeAt
		}
		if err := record(t, DispatchTruck(ctx, t, provider, opts.Rules)); err != nil {
			return nil, fmt.Errorf("simulate fleet: %w", err)
		}
		d.freeAt = t.Clock
		d.stranded = t.Location != t.Depot
	}

	for _, t := range trucks {
		if n := len(t.History); n > 0 {
			result.TotalMiles += t.History[n-1].Odometer
		}
	}

	result.Violations, result.Delivered = checkDeadlines(ctx, packages)

	log.Printf("run_id=%s op=simulate delivered=%d/%d miles=%.1f failures=%d violations=%d",
		runID, result.Delivered, packages.Len(), result.TotalMiles, len(result.Failures), len(result.Violations))
	return result, nil
}

func ensureRunID(ctx context.Context) (context.Context, string) {
	if id := obs.RunID(ctx); id != "" {
		return ctx, id
	}
	return obs.WithRunID(ctx)
}

func earliestDriver(drivers []*driver) *driver {
	var best *driver
	for _, d := range drivers {
		if d.stranded {
			continue
		}
		if best == nil || d.freeAt < best.freeAt {
			best = d
		}
	}
	return best
}

// fleetLocations lists every depot and manifest destination, depots first.
func fleetLocations(trucks []*domain.Truck) []string {
	locs := make([]string, 0, 64)
	for _, t := range trucks {
		locs = append(locs, t.Depot)
	}
	for _, t := range trucks {
		for _, p := range t.Manifest {
			locs = append(locs, p.Destination)
		}
	}
	return locs
}

// checkDeadlines is observational: late packages are logged and returned, never changed.
func checkDeadlines(ctx context.Context, packages *store.Table[*domain.Package]) ([]DeadlineViolation, int) {
	var (
		violations []DeadlineViolation
		delivered  int
	)

	packages.Each(func(_ int, pkg *domain.Package) bool {
		if pkg.DeliveredAt == nil {
			return true
		}
		delivered++

		if pkg.Deadline.Missed(*pkg.DeliveredAt) {
			v := DeadlineViolation{
				PackageID:   pkg.PackageID,
				TruckID:     pkg.DeliveredBy,
				Deadline:    pkg.Deadline,
				DeliveredAt: *pkg.DeliveredAt,
			}
			violations = append(violations, v)
			log.Printf("run_id=%s level=WARN op=deadline_check package=%d truck=%d delivered_at=%s deadline=%s",
				obs.RunID(ctx), v.PackageID, v.TruckID, v.DeliveredAt, v.Deadline.At)
		}
		return true
	})

	return violations, delivered
}
