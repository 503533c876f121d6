package domain

import "time"

// Snapshot is one entry of a truck's history log, recorded after every
// delivery and after the return to the depot. PackageID is the package
// handed over at this stop (0 for the depot return).
type Snapshot struct {
	At        time.Duration
	Location  string
	Odometer  float64
	Remaining []int
	PackageID int
}

// Represents a single stop in a delivery route.
// A RouteStop corresponds to arriving at a specific destination at a computed time,
// and delivering one or more packages associated with that destination.
type RouteStop struct {
	Destination string
	ArriveAt    time.Duration
	PackageIDs  []int
}

// Represents the route a truck actually drove during simulation.
// It is derived from the history log and contains no side effects.
type RoutePlan struct {
	TruckID    int
	DepartAt   time.Duration
	ReturnAt   *time.Duration
	Stops      []RouteStop
	TotalMiles float64
}

// Route rebuilds the driven route from the history log. Deliveries to the
// same destination at the same time collapse into one stop.
func (t *Truck) Route() RoutePlan {
	plan := RoutePlan{TruckID: t.TruckID, DepartAt: t.DepartAt, Stops: []RouteStop{}}

	for _, s := range t.History {
		plan.TotalMiles = s.Odometer
		if s.PackageID == 0 {
			at := s.At
			plan.ReturnAt = &at
			continue
		}

		if n := len(plan.Stops); n > 0 && plan.Stops[n-1].Destination == s.Location && plan.Stops[n-1].ArriveAt == s.At {
			plan.Stops[n-1].PackageIDs = append(plan.Stops[n-1].PackageIDs, s.PackageID)
			continue
		}
		plan.Stops = append(plan.Stops, RouteStop{Destination: s.Location, ArriveAt: s.At, PackageIDs: []int{s.PackageID}})
	}

	return plan
}
