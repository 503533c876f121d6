package services

import (
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/store"
	"time"
)

// PackageStatus is the state of one package as seen at a point in time.
type PackageStatus struct {
	PackageID   int
	Destination string
	Deadline    domain.Deadline
	Weight      float64
	Note        string
	Status      domain.Status
	DeliveredAt *time.Duration
	TruckID     int
	// Latest history entry of the assigned truck at or before the query time.
	Snapshot *domain.Snapshot
}

type TruckMileage struct {
	TruckID int
	Miles   float64
}

// Report is the general status report at one point in time.
type Report struct {
	At         time.Duration
	Packages   []PackageStatus
	Trucks     []TruckMileage
	TotalMiles float64
}

// ReportView answers point-in-time queries by replaying truck history logs.
// It only reads; build it after the simulation has finished.
type ReportView struct {
	packages   *store.Table[*domain.Package]
	trucks     []*domain.Truck
	byID       map[int]*domain.Truck
	correction domain.Correction
}

func NewReportView(
	packages *store.Table[*domain.Package],
	trucks []*domain.Truck,
	correction domain.Correction,
) *ReportView {
	byID := make(map[int]*domain.Truck, len(trucks))
	for _, t := range trucks {
		byID[t.TruckID] = t
	}
	return &ReportView{packages: packages, trucks: trucks, byID: byID, correction: correction}
}

// Trucks returns the simulated trucks in fleet order.
func (v *ReportView) Trucks() []*domain.Truck { return v.trucks }

// PackageAt reports a package's state at the given offset. The second return
// is false when no package has that id.
func (v *ReportView) PackageAt(id int, at time.Duration) (PackageStatus, bool) {
	pkg, ok := v.packages.Lookup(id)
	if !ok {
		return PackageStatus{}, false
	}

	ps := PackageStatus{
		PackageID:   pkg.PackageID,
		Destination: pkg.DestinationAt(at, v.correction),
		Deadline:    pkg.Deadline,
		Weight:      pkg.Weight,
		Note:        pkg.Note,
		Status:      domain.AtDepot,
		TruckID:     pkg.AssignedTruckID,
	}

	truck := v.byID[pkg.AssignedTruckID]
	if truck != nil {
		if s, ok := truck.SnapshotAt(at); ok {
			ps.Snapshot = &s
		}
	}

	switch {
	case pkg.DeliveredBefore(at):
		ps.Status = domain.Delivered
		deliveredAt := *pkg.DeliveredAt
		ps.DeliveredAt = &deliveredAt
	// A package whose truck never left (no driver) stays at the depot.
	case pkg.Status != domain.AtDepot && truck != nil && at >= truck.DepartAt:
		ps.Status = domain.InTransit
	}

	return ps, true
}

// TruckMileageAt is the odometer of the latest snapshot at or before the offset.
func (v *ReportView) TruckMileageAt(truckID int, at time.Duration) (float64, error) {
	t, ok := v.byID[truckID]
	if !ok {
		return 0, fmt.Errorf("truck mileage: truck %d: %w", truckID, domain.ErrTruckNotFound)
	}
	return t.MileageAt(at), nil
}

// FleetMileageAt returns per-truck mileage in fleet order and their sum.
func (v *ReportView) FleetMileageAt(at time.Duration) ([]TruckMileage, float64) {
	out := make([]TruckMileage, 0, len(v.trucks))
	var total float64
	for _, t := range v.trucks {
		m := t.MileageAt(at)
		out = append(out, TruckMileage{TruckID: t.TruckID, Miles: m})
		total += m
	}
	return out, total
}

// StatusAt builds the general report: every package by ascending id plus mileage.
func (v *ReportView) StatusAt(at time.Duration) Report {
	r := Report{At: at, Packages: make([]PackageStatus, 0, v.packages.Len())}
	for _, id := range v.packages.Keys() {
		ps, _ := v.PackageAt(id, at)
		r.Packages = append(r.Packages, ps)
	}
	r.Trucks, r.TotalMiles = v.FleetMileageAt(at)
	return r
}
