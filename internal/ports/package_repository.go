package ports

import (
	"context"
	"parcel-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving Package entities from a data source.
type PackageRepository interface {
	// Retrieve all packages to be loaded into the package table.
	ListPackages(ctx context.Context) ([]*domain.Package, error)
}
