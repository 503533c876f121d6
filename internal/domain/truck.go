package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Delivery truck aggregate holding its manifest, simulated clock, odometer and history log.
// Manifest entries point at packages owned by the package store.
type Truck struct {
	TruckID  int
	Capacity int
	SpeedMPH float64
	DepartAt time.Duration
	DriverID int

	Depot    string
	Location string
	Clock    time.Duration
	Odometer float64

	Manifest []*Package
	History  []Snapshot
}

func NewTruck(id int, capacity int, speedMPH float64, departAt time.Duration, depot string) *Truck {
	return &Truck{
		TruckID:  id,
		Capacity: capacity,
		SpeedMPH: speedMPH,
		DepartAt: departAt,
		Depot:    depot,
		Location: depot,
		Clock:    departAt,
	}
}

// Load a single package onto the truck.
func (t *Truck) Load(pkg *Package) error {
	if len(t.Manifest) >= t.Capacity {
		return fmt.Errorf("load truck: truck %d capacity=%d: %w", t.TruckID, t.Capacity, ErrTruckFull)
	}
	if pkg.IsLoaded() {
		return fmt.Errorf("load truck: package %d already on truck %d: %w", pkg.PackageID, pkg.AssignedTruckID, ErrInvalidTransition)
	}
	pkg.AssignedTruckID = t.TruckID
	t.Manifest = append(t.Manifest, pkg)
	return nil
}

// Load multiple packages onto the truck.
func (t *Truck) LoadMultiple(pkgs []*Package) error {
	for _, pkg := range pkgs {
		if err := t.Load(pkg); err != nil {
			return err
		}
	}

	return nil
}

// Free returns how many more packages fit on the truck.
func (t *Truck) Free() int { return t.Capacity - len(t.Manifest) }

// ManifestIDs returns the ids of packages still on board, ascending.
func (t *Truck) ManifestIDs() []int {
	ids := make([]int, 0, len(t.Manifest))
	for _, p := range t.Manifest {
		ids = append(ids, p.PackageID)
	}
	slices.Sort(ids)
	return ids
}

// Depart moves the clock to the departure time and marks the manifest in transit.
func (t *Truck) Depart() error {
	t.advanceTo(t.DepartAt)
	for _, p := range t.Manifest {
		if err := p.MarkInTransit(); err != nil {
			return fmt.Errorf("depart truck %d: %w", t.TruckID, err)
		}
	}
	return nil
}

// TravelTime converts a distance in miles into simulated driving time.
func (t *Truck) TravelTime(miles float64) time.Duration {
	if t.SpeedMPH <= 0 || miles <= 0 {
		return 0
	}
	return time.Duration(math.Round(miles * float64(time.Hour) / t.SpeedMPH))
}

// Deliver drives to the package destination and hands it over.
// The package is removed from the manifest before the snapshot is recorded.
func (t *Truck) Deliver(pkg *Package, miles float64) error {
	idx := slices.Index(t.Manifest, pkg)
	if idx < 0 {
		return fmt.Errorf("deliver: truck %d package %d: %w", t.TruckID, pkg.PackageID, ErrNotOnManifest)
	}

	t.Manifest = slices.Delete(t.Manifest, idx, idx+1)
	t.drive(miles, pkg.Destination)

	if err := pkg.MarkDelivered(t.Clock, t.TruckID); err != nil {
		return fmt.Errorf("deliver: truck %d: %w", t.TruckID, err)
	}
	t.record(pkg.PackageID)
	return nil
}

// ReturnToDepot drives back to the depot and records the final snapshot.
func (t *Truck) ReturnToDepot(miles float64) {
	t.drive(miles, t.Depot)
	t.record(0)
}

func (t *Truck) drive(miles float64, to string) {
	if miles < 0 {
		miles = 0
	}
	t.advanceTo(t.Clock + t.TravelTime(miles))
	t.Odometer += miles
	t.Location = to
}

// advanceTo never moves the clock backwards.
func (t *Truck) advanceTo(at time.Duration) {
	if at > t.Clock {
		t.Clock = at
	}
}

func (t *Truck) record(packageID int) {
	t.History = append(t.History, Snapshot{
		At:        t.Clock,
		Location:  t.Location,
		Odometer:  t.Odometer,
		Remaining: t.ManifestIDs(),
		PackageID: packageID,
	})
}

// SnapshotAt returns the latest snapshot recorded at or before the given offset.
func (t *Truck) SnapshotAt(at time.Duration) (Snapshot, bool) {
	var (
		last  Snapshot
		found bool
	)
	for _, s := range t.History {
		if s.At > at {
			break
		}
		last = s
		found = true
	}
	return last, found
}

// MileageAt returns the odometer reading at the given offset (0 before the first snapshot).
func (t *Truck) MileageAt(at time.Duration) float64 {
	s, ok := t.SnapshotAt(at)
	if !ok {
		return 0
	}
	return s.Odometer
}
