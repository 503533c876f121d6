package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"time"
)

// DispatchRules are the fleet-wide timing rules applied while delivering.
type DispatchRules struct {
	// Delayed packages are not eligible before ReleaseAt.
	ReleaseAt     time.Duration
	DelayedMarker string
	Correction    domain.Correction
}

// DispatchTruck delivers a truck's manifest with a greedy deadline-aware loop
// and then returns the truck to the depot.
//
// At each step a package is eligible when it is not delayed or the truck clock
// has reached the release time, and feasible when driving to it from the
// current location still meets its deadline. The feasible package with the
// earliest deadline is delivered next; ties go to the lowest package id.
//
// When nothing is feasible the truck stops where it is and an Abort Failure
// wrapping ErrInfeasible is returned. Undelivered packages stay in transit.
func DispatchTruck(
	ctx context.Context,
	truck *domain.Truck,
	provider ports.DistanceProvider,
	rules DispatchRules,
) (err error) {
	defer obs.Time(ctx, fmt.Sprintf("services.DispatchTruck truck=%d", truck.TruckID))(&err)

	if provider == nil {
		return errors.New("dispatch truck: distance provider must not be nil")
	}

	abort := func(packageID int, cause error) error {
		return &domain.Failure{Op: "dispatch", Severity: domain.Abort, TruckID: truck.TruckID, PackageID: packageID, Err: cause}
	}

	if err := truck.Depart(); err != nil {
		return abort(0, err)
	}

	for len(truck.Manifest) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, miles, err := nextDelivery(ctx, truck, provider, rules)
		if err != nil {
			return abort(0, err)
		}
		if next == nil {
			log.Printf("run_id=%s level=ERROR op=dispatch truck=%d clock=%s remaining=%v err=%q",
				obs.RunID(ctx), truck.TruckID, truck.Clock, truck.ManifestIDs(), domain.ErrInfeasible)
			return abort(0, domain.ErrInfeasible)
		}

		if err := truck.Deliver(next, miles); err != nil {
			return abort(next.PackageID, err)
		}
		applyCorrection(next, truck.Clock, rules.Correction)
	}

	miles, err := provider.Distance(ctx, truck.Location, truck.Depot)
	if err != nil {
		return abort(0, fmt.Errorf("distance %q -> depot: %w", truck.Location, err))
	}
	truck.ReturnToDepot(miles)

	log.Printf("run_id=%s op=dispatch truck=%d returned=%s miles=%.1f",
		obs.RunID(ctx), truck.TruckID, truck.Clock, truck.Odometer)
	return nil
}

// nextDelivery picks the feasible package with the earliest deadline.
// It returns a nil package when none is feasible.
func nextDelivery(
	ctx context.Context,
	truck *domain.Truck,
	provider ports.DistanceProvider,
	rules DispatchRules,
) (*domain.Package, float64, error) {
	var (
		best      *domain.Package
		bestMiles float64
	)

	for _, pkg := range truck.Manifest {
		if pkg.IsDelayed(rules.DelayedMarker) && truck.Clock < rules.ReleaseAt {
			continue
		}

		miles, err := provider.Distance(ctx, truck.Location, pkg.Destination)
		if err != nil {
			return nil, 0, fmt.Errorf("distance %q -> %q: %w", truck.Location, pkg.Destination, err)
		}
		if miles < 0 {
			return nil, 0, fmt.Errorf("distance %q -> %q: negative distance %v", truck.Location, pkg.Destination, miles)
		}

		if !pkg.Deadline.Allows(truck.Clock + truck.TravelTime(miles)) {
			continue
		}

		if best == nil || pkg.Deadline.Before(best.Deadline) ||
			(!best.Deadline.Before(pkg.Deadline) && pkg.PackageID < best.PackageID) {
			best = pkg
			bestMiles = miles
		}
	}

	return best, bestMiles, nil
}

// applyCorrection switches a delivered package to its corrected destination
// once the cutoff has passed. The truck location is left untouched.
func applyCorrection(pkg *domain.Package, at time.Duration, c domain.Correction) {
	if !c.Applies(pkg) || at < c.Cutoff || c.Destination == "" {
		return
	}
	if pkg.OriginalDestination == "" {
		pkg.OriginalDestination = pkg.Destination
	}
	pkg.Destination = c.Destination
}
