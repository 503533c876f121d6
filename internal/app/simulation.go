// Package app composes the simulation: it resolves configuration, wires
// adapters and runs load planning, dispatch and reporting in order.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"parcel-dispatch-service/internal/services"
	"parcel-dispatch-service/internal/store"
)

// Simulation is one finished run, ready to be queried.
type Simulation struct {
	Day      domain.Day
	Packages *store.Table[*domain.Package]
	Trucks   []*domain.Truck
	Load     *services.LoadReport
	Result   *services.FleetResult
	View     *services.ReportView
}

// Run validates cfg, opens its adapters and simulates the day.
func Run(ctx context.Context, cfg *config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rules, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	deps, err := OpenDeps(ctx, cfg, rules.Day)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Printf("close adapters: %v", err)
		}
	}()

	return Simulate(ctx, cfg, rules, deps.Repo, deps.Provider)
}

// Simulate runs the day against explicit adapters.
func Simulate(
	ctx context.Context,
	cfg *config.Config,
	rules Rules,
	repo ports.PackageRepository,
	provider ports.DistanceProvider,
) (_ *Simulation, err error) {
	if repo == nil || provider == nil {
		return nil, errors.New("simulate: repository and distance provider are required")
	}

	ctx, runID := obs.WithRunID(ctx)
	defer obs.Time(ctx, "app.Simulate")(&err)

	packages, err := services.LoadPackages(ctx, repo, cfg.Store.Capacity)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	trucks, err := NewFleet(cfg, rules.Day)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	load, err := services.PlanLoads(ctx, packages, trucks, rules.Load)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	result, err := services.SimulateFleet(ctx, packages, trucks, provider, services.FleetOptions{
		Drivers:  cfg.Fleet.Drivers,
		Rules:    rules.Dispatch,
		Prefetch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	log.Printf("run_id=%s op=simulate load_failures=%d", runID, len(load.Failures))

	return &Simulation{
		Day:      rules.Day,
		Packages: packages,
		Trucks:   trucks,
		Load:     load,
		Result:   result,
		View:     services.NewReportView(packages, trucks, rules.Dispatch.Correction),
	}, nil
}
