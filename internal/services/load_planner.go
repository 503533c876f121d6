package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/store"
	"slices"
)

// Group forces a set of packages onto one truck.
type Group struct {
	TruckID    int
	PackageIDs []int
}

// LoadRules are the hard constraints applied while loading trucks.
type LoadRules struct {
	Groups []Group
	// Packages whose note contains DelayedMarker ride on DelayedTruckID.
	DelayedTruckID int
	DelayedMarker  string
}

// LoadReport lists what was loaded and which packages could not be.
type LoadReport struct {
	Manifests map[int][]int
	Failures  []error
}

// PlanLoads assigns every package in the table to a truck.
//
// Forced groups and delayed packages are loaded first. The remaining ids,
// ascending, fill the trucks in the order given, each up to its free capacity.
// A package that does not fit is reported as a recoverable Failure and
// planning continues. Rules naming an unknown truck abort the plan.
func PlanLoads(
	ctx context.Context,
	packages *store.Table[*domain.Package],
	trucks []*domain.Truck,
	rules LoadRules,
) (_ *LoadReport, err error) {
	defer obs.Time(ctx, "services.PlanLoads")(&err)

	if packages == nil {
		return nil, errors.New("plan loads: package table must not be nil")
	}
	if len(trucks) == 0 {
		return nil, errors.New("plan loads: truck list must not be empty")
	}

	byID := make(map[int]*domain.Truck, len(trucks))
	for _, t := range trucks {
		byID[t.TruckID] = t
	}
	for _, g := range rules.Groups {
		if _, ok := byID[g.TruckID]; !ok {
			return nil, &domain.Failure{Op: "plan loads", Severity: domain.Abort, TruckID: g.TruckID, Err: domain.ErrTruckNotFound}
		}
	}
	if rules.DelayedTruckID != 0 {
		if _, ok := byID[rules.DelayedTruckID]; !ok {
			return nil, &domain.Failure{Op: "plan loads", Severity: domain.Abort, TruckID: rules.DelayedTruckID, Err: domain.ErrTruckNotFound}
		}
	}

	report := &LoadReport{Manifests: make(map[int][]int, len(trucks))}
	fail := func(truckID, packageID int, cause error) {
		f := &domain.Failure{Op: "plan loads", Severity: domain.Continue, TruckID: truckID, PackageID: packageID, Err: cause}
		log.Printf("run_id=%s level=WARN op=plan_loads truck=%d package=%d err=%q", obs.RunID(ctx), truckID, packageID, cause)
		report.Failures = append(report.Failures, f)
	}

	forced := make(map[int]int)
	for _, g := range rules.Groups {
		for _, id := range g.PackageIDs {
			if _, ok := packages.Lookup(id); !ok {
				fail(g.TruckID, id, domain.ErrPackageNotFound)
				continue
			}
			if prev, ok := forced[id]; ok && prev != g.TruckID {
				fail(g.TruckID, id, fmt.Errorf("already grouped on truck %d: %w", prev, domain.ErrInvalidTransition))
				continue
			}
			forced[id] = g.TruckID
		}
	}

	ids := packages.Keys()
	if rules.DelayedTruckID != 0 {
		for _, id := range ids {
			if _, ok := forced[id]; ok {
				continue
			}
			if pkg, _ := packages.Lookup(id); pkg.IsDelayed(rules.DelayedMarker) {
				forced[id] = rules.DelayedTruckID
			}
		}
	}

	load := func(t *domain.Truck, pkg *domain.Package) {
		if err := t.Load(pkg); err != nil {
			fail(t.TruckID, pkg.PackageID, err)
			return
		}
		report.Manifests[t.TruckID] = append(report.Manifests[t.TruckID], pkg.PackageID)
	}

	// ids are ascending, so every manifest is built in id order.
	for _, t := range trucks {
		for _, id := range ids {
			if forced[id] != t.TruckID {
				continue
			}
			pkg, _ := packages.Lookup(id)
			load(t, pkg)
		}
	}

	remaining := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := forced[id]; ok {
			continue
		}
		if pkg, _ := packages.Lookup(id); !pkg.IsLoaded() {
			remaining = append(remaining, id)
		}
	}

	for _, t := range trucks {
		n := min(t.Free(), len(remaining))
		for _, id := range remaining[:n] {
			pkg, _ := packages.Lookup(id)
			load(t, pkg)
		}
		remaining = remaining[n:]
	}

	for _, id := range remaining {
		fail(0, id, domain.ErrTruckFull)
	}

	for _, t := range trucks {
		slices.Sort(report.Manifests[t.TruckID])
	}

	return report, nil
}
