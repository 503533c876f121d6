package services

import (
	"context"
	"errors"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/store"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, pkgs ...*domain.Package) *store.Table[*domain.Package] {
	t.Helper()
	table, err := store.New[*domain.Package](32)
	require.NoError(t, err)
	for _, p := range pkgs {
		require.NoError(t, table.Insert(p.PackageID, p))
	}
	return table
}

func numbered(n int) []*domain.Package {
	pkgs := make([]*domain.Package, 0, n)
	for i := 1; i <= n; i++ {
		pkgs = append(pkgs, &domain.Package{PackageID: i, Destination: "A", Deadline: eod()})
	}
	return pkgs
}

func TestPlanLoadsChunksRemainingInIDOrder(t *testing.T) {
	pkgs := numbered(7)
	pkgs[4].Note = "Delayed on flight"
	table := newTable(t, pkgs...)
	trucks := []*domain.Truck{
		domain.NewTruck(1, 3, testSpeed, 0, "HUB"),
		domain.NewTruck(2, 3, testSpeed, 0, "HUB"),
		domain.NewTruck(3, 3, testSpeed, 0, "HUB"),
	}

	report, err := PlanLoads(context.Background(), table, trucks, LoadRules{
		Groups:         []Group{{TruckID: 3, PackageIDs: []int{6, 2}}},
		DelayedTruckID: 2,
		DelayedMarker:  "delayed on flight",
	})
	require.NoError(t, err)
	assert.Empty(t, report.Failures)

	assert.Equal(t, []int{1, 3, 4}, report.Manifests[1])
	assert.Equal(t, []int{5, 7}, report.Manifests[2])
	assert.Equal(t, []int{2, 6}, report.Manifests[3])
	assert.Equal(t, 2, pkgs[4].AssignedTruckID)
}

func TestPlanLoadsOverflowContinues(t *testing.T) {
	pkgs := numbered(5)
	table := newTable(t, pkgs...)
	trucks := []*domain.Truck{
		domain.NewTruck(1, 2, testSpeed, 0, "HUB"),
		domain.NewTruck(2, 2, testSpeed, 0, "HUB"),
	}

	report, err := PlanLoads(context.Background(), table, trucks, LoadRules{
		Groups: []Group{{TruckID: 1, PackageIDs: []int{1, 2, 3, 99}}},
	})
	require.NoError(t, err)

	// 3 overflows truck 1, 99 does not exist; both are recoverable.
	require.Len(t, report.Failures, 2)
	for _, f := range report.Failures {
		assert.True(t, domain.IsRecoverable(f), "%v", f)
	}
	assert.ErrorIs(t, report.Failures[0], domain.ErrPackageNotFound)
	assert.ErrorIs(t, report.Failures[1], domain.ErrTruckFull)

	var f *domain.Failure
	require.True(t, errors.As(report.Failures[1], &f))
	assert.Equal(t, 3, f.PackageID)
	assert.Equal(t, 1, f.TruckID)

	assert.Equal(t, []int{1, 2}, report.Manifests[1])
	assert.Equal(t, []int{4, 5}, report.Manifests[2])
	assert.False(t, pkgs[2].IsLoaded())
}

func TestPlanLoadsFleetFull(t *testing.T) {
	table := newTable(t, numbered(3)...)
	trucks := []*domain.Truck{domain.NewTruck(1, 2, testSpeed, 0, "HUB")}

	report, err := PlanLoads(context.Background(), table, trucks, LoadRules{})
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0], domain.ErrTruckFull)
	assert.Equal(t, []int{1, 2}, report.Manifests[1])
}

func TestPlanLoadsUnknownTruckAborts(t *testing.T) {
	table := newTable(t, numbered(2)...)
	trucks := []*domain.Truck{domain.NewTruck(1, 2, testSpeed, 0, "HUB")}

	_, err := PlanLoads(context.Background(), table, trucks, LoadRules{DelayedTruckID: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTruckNotFound)
	assert.False(t, domain.IsRecoverable(err))

	_, err = PlanLoads(context.Background(), table, trucks, LoadRules{Groups: []Group{{TruckID: 5, PackageIDs: []int{1}}}})
	assert.ErrorIs(t, err, domain.ErrTruckNotFound)

	_, err = PlanLoads(context.Background(), table, nil, LoadRules{})
	assert.Error(t, err)
}

type staticRepo []*domain.Package

func (r staticRepo) ListPackages(ctx context.Context) ([]*domain.Package, error) { return r, nil }

func TestLoadPackagesTableFull(t *testing.T) {
	_, err := LoadPackages(context.Background(), staticRepo(numbered(3)), 2)
	assert.ErrorIs(t, err, store.ErrTableFull)

	table, err := LoadPackages(context.Background(), staticRepo(numbered(3)), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, table.Keys())
}
