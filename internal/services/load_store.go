package services

import (
	"context"
	"fmt"
	"log"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"parcel-dispatch-service/internal/store"
)

// LoadPackages reads every package from the repository into a new table.
// A full table aborts the load; the capacity must be sized for the data.
func LoadPackages(
	ctx context.Context,
	repo ports.PackageRepository,
	capacity int,
) (*store.Table[*domain.Package], error) {
	pkgs, err := repo.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("load packages: list packages: %w", err)
	}

	table, err := store.New[*domain.Package](capacity)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	for _, pkg := range pkgs {
		if err := table.Insert(pkg.PackageID, pkg); err != nil {
			return nil, fmt.Errorf("load packages: package_id=%d: %w", pkg.PackageID, err)
		}
	}

	log.Printf("run_id=%s op=load_packages packages=%d capacity=%d", obs.RunID(ctx), table.Len(), table.Cap())
	return table, nil
}
