package services

import (
	"context"
	"parcel-dispatch-service/internal/adapters/distance"
	"parcel-dispatch-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// At 60 mph one mile takes one minute.
const testSpeed = 60

func testPairs() []distance.MockPair {
	miles := map[[2]string]float64{
		{"HUB", "A"}: 1,
		{"HUB", "B"}: 10,
		{"HUB", "C"}: 5,
		{"A", "B"}:   9,
		{"A", "C"}:   2,
		{"B", "C"}:   4,
	}
	pairs := make([]distance.MockPair, 0, 2*len(miles))
	for k, v := range miles {
		pairs = append(pairs,
			distance.MockPair{From: k[0], To: k[1], Miles: v},
			distance.MockPair{From: k[1], To: k[0], Miles: v},
		)
	}
	return pairs
}

func loadedTruck(t *testing.T, departAt time.Duration, pkgs ...*domain.Package) *domain.Truck {
	t.Helper()
	truck := domain.NewTruck(1, 16, testSpeed, departAt, "HUB")
	require.NoError(t, truck.LoadMultiple(pkgs))
	return truck
}

func at(d time.Duration) domain.Deadline { return domain.Deadline{At: d} }

func eod() domain.Deadline { return domain.Deadline{At: 9 * time.Hour, EndOfDay: true} }

func deliveryOrder(truck *domain.Truck) []int {
	ids := make([]int, 0, len(truck.History))
	for _, s := range truck.History {
		ids = append(ids, s.PackageID)
	}
	return ids
}

func TestDispatchTruckEarliestFeasibleDeadline(t *testing.T) {
	pkgs := []*domain.Package{
		{PackageID: 3, Destination: "C", Deadline: at(30 * time.Minute)},
		{PackageID: 2, Destination: "A", Deadline: eod()},
		{PackageID: 1, Destination: "B", Deadline: at(30 * time.Minute)},
	}
	truck := loadedTruck(t, 0, pkgs...)
	provider := distance.NewMockDistanceProvider(testPairs())

	require.NoError(t, DispatchTruck(context.Background(), truck, provider, DispatchRules{}))

	// 1 and 3 share the earliest deadline; the lower id goes first.
	assert.Equal(t, []int{1, 3, 2, 0}, deliveryOrder(truck))
	assert.InDelta(t, 17.0, truck.Odometer, 1e-9)
	assert.Equal(t, 17*time.Minute, truck.Clock)
	assert.Equal(t, "HUB", truck.Location)
	require.NotNil(t, pkgs[0].DeliveredAt)
	assert.Equal(t, 14*time.Minute, *pkgs[0].DeliveredAt)
	for _, p := range pkgs {
		assert.Equal(t, domain.Delivered, p.Status, "package %d", p.PackageID)
		assert.Equal(t, 1, p.DeliveredBy, "package %d", p.PackageID)
	}
}

func TestDispatchTruckSkipsInfeasibleDeadline(t *testing.T) {
	// B cannot be reached by its deadline from the hub, so A goes first even
	// though B's deadline is earlier. From A, B is still too far away.
	pkgs := []*domain.Package{
		{PackageID: 1, Destination: "B", Deadline: at(5 * time.Minute)},
		{PackageID: 2, Destination: "A", Deadline: at(20 * time.Minute)},
	}
	truck := loadedTruck(t, 0, pkgs...)
	provider := distance.NewMockDistanceProvider(testPairs())

	err := DispatchTruck(context.Background(), truck, provider, DispatchRules{})
	require.ErrorIs(t, err, domain.ErrInfeasible)
	assert.False(t, domain.IsRecoverable(err), "infeasibility must abort the truck")

	var f *domain.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 1, f.TruckID)

	assert.Equal(t, domain.Delivered, pkgs[1].Status)
	assert.Equal(t, domain.InTransit, pkgs[0].Status)
	assert.Nil(t, pkgs[0].DeliveredAt)
	assert.Equal(t, []int{1}, truck.ManifestIDs())
	assert.Equal(t, "A", truck.Location, "truck stops where it halted")
}

func TestDispatchTruckHoldsDelayedPackages(t *testing.T) {
	rules := DispatchRules{ReleaseAt: 30 * time.Minute, DelayedMarker: "delayed on flight"}
	provider := distance.NewMockDistanceProvider(testPairs())

	t.Run("departs before release", func(t *testing.T) {
		delayed := &domain.Package{PackageID: 1, Destination: "A", Deadline: at(time.Hour), Note: "Delayed on flight"}
		other := &domain.Package{PackageID: 2, Destination: "B", Deadline: eod()}
		truck := loadedTruck(t, 0, delayed, other)

		err := DispatchTruck(context.Background(), truck, provider, rules)
		require.ErrorIs(t, err, domain.ErrInfeasible)
		assert.Nil(t, delayed.DeliveredAt, "delayed package delivered before release")
		assert.Equal(t, domain.Delivered, other.Status)
	})

	t.Run("departs at release", func(t *testing.T) {
		delayed := &domain.Package{PackageID: 1, Destination: "A", Deadline: at(time.Hour), Note: "Delayed on flight"}
		truck := loadedTruck(t, 30*time.Minute, delayed)

		require.NoError(t, DispatchTruck(context.Background(), truck, provider, rules))
		require.NotNil(t, delayed.DeliveredAt)
		assert.Equal(t, 31*time.Minute, *delayed.DeliveredAt)
	})
}

func TestDispatchTruckEndOfDayAlwaysFeasible(t *testing.T) {
	late := &domain.Package{PackageID: 1, Destination: "B", Deadline: eod()}
	truck := loadedTruck(t, 12*time.Hour, late)

	err := DispatchTruck(context.Background(), truck, distance.NewMockDistanceProvider(testPairs()), DispatchRules{})
	require.NoError(t, err)
	assert.Equal(t, domain.Delivered, late.Status)
}

func TestDispatchTruckAppliesCorrectionAfterCutoff(t *testing.T) {
	const corrected = "C"
	provider := distance.NewMockDistanceProvider(testPairs())

	tests := []struct {
		name     string
		cutoff   time.Duration
		wantDest string
		wantOrig string
	}{
		{"delivered before cutoff", 15 * time.Minute, "B", ""},
		{"delivered after cutoff", 5 * time.Minute, corrected, "B"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pkg := &domain.Package{PackageID: 9, Destination: "B", Deadline: eod()}
			truck := loadedTruck(t, 0, pkg)
			rules := DispatchRules{Correction: domain.Correction{PackageID: 9, Cutoff: tc.cutoff, Destination: corrected}}

			require.NoError(t, DispatchTruck(context.Background(), truck, provider, rules))
			assert.Equal(t, tc.wantDest, pkg.Destination)
			assert.Equal(t, tc.wantOrig, pkg.OriginalDestination)

			// The truck drove to the listed address either way.
			require.NotEmpty(t, truck.History)
			assert.Equal(t, "B", truck.History[0].Location)
			assert.InDelta(t, 20.0, truck.Odometer, 1e-9)
		})
	}
}

func TestDispatchTruckProviderError(t *testing.T) {
	pkg := &domain.Package{PackageID: 1, Destination: "nowhere", Deadline: eod()}
	truck := loadedTruck(t, 0, pkg)

	err := DispatchTruck(context.Background(), truck, distance.NewMockDistanceProvider(testPairs()), DispatchRules{})
	require.Error(t, err)
	assert.False(t, domain.IsRecoverable(err), "provider errors abort the truck")
	assert.NotEqual(t, domain.Delivered, pkg.Status)
}

func TestDispatchTruckEmptyManifestReturnsHome(t *testing.T) {
	truck := domain.NewTruck(4, 16, testSpeed, 10*time.Minute, "HUB")

	require.NoError(t, DispatchTruck(context.Background(), truck, distance.NewMockDistanceProvider(nil), DispatchRules{}))
	require.Len(t, truck.History, 1)
	assert.Equal(t, 10*time.Minute, truck.History[0].At)
	assert.Zero(t, truck.Odometer)
}
