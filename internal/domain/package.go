package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is a package's position in its delivery lifecycle.
// Transitions only move forward: AtDepot -> InTransit -> Delivered.
type Status int

const (
	AtDepot Status = iota
	InTransit
	Delivered
)

func (s Status) String() string {
	switch s {
	case AtDepot:
		return "At Depot"
	case InTransit:
		return "In Transit"
	case Delivered:
		return "Delivered"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Represents a single delivery unit handled by the system.
// A Package has a unique identifier and a single destination address.
// Delivery timestamps are populated during simulation by the truck that
// delivers it.
type Package struct {
	PackageID   int
	Street      string
	City        string
	State       string
	Zip         string
	Destination string
	Deadline    Deadline
	Weight      float64
	Note        string

	// Holds the superseded destination of a package whose address is
	// corrected during the day. Empty for every other package.
	OriginalDestination string

	Status          Status
	DeliveredAt     *time.Duration
	AssignedTruckID int
	DeliveredBy     int
}

// FormatAddress joins address parts the way destinations are keyed.
func FormatAddress(street, city, state, zip string) string {
	return fmt.Sprintf("%s, %s, %s %s",
		strings.TrimSpace(street), strings.TrimSpace(city), strings.TrimSpace(state), strings.TrimSpace(zip))
}

// IsDelayed reports whether the special note carries the delayed-availability marker.
func (p *Package) IsDelayed(marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(p.Note), strings.ToLower(marker))
}

// IsLoaded reports whether the package has been assigned to a truck.
func (p *Package) IsLoaded() bool { return p.AssignedTruckID != 0 }

// MarkInTransit moves a loaded package off the depot floor.
// Calling it on a package already in transit is a no-op.
func (p *Package) MarkInTransit() error {
	switch p.Status {
	case AtDepot:
		if !p.IsLoaded() {
			return fmt.Errorf("mark in transit: package %d is not loaded: %w", p.PackageID, ErrInvalidTransition)
		}
		p.Status = InTransit
		return nil
	case InTransit:
		return nil
	default:
		return fmt.Errorf("mark in transit: package %d is %s: %w", p.PackageID, p.Status, ErrInvalidTransition)
	}
}

// MarkDelivered stamps the delivery time. It can only happen once.
func (p *Package) MarkDelivered(at time.Duration, truckID int) error {
	if p.Status == Delivered {
		return fmt.Errorf("mark delivered: package %d already delivered: %w", p.PackageID, ErrInvalidTransition)
	}
	p.Status = Delivered
	p.DeliveredAt = &at
	p.DeliveredBy = truckID
	return nil
}

// DeliveredBefore reports whether the package had been delivered at the given offset.
func (p *Package) DeliveredBefore(at time.Duration) bool {
	return p.DeliveredAt != nil && *p.DeliveredAt <= at
}

// Correction describes the one package whose destination becomes valid only
// after a cutoff time.
type Correction struct {
	PackageID   int
	Cutoff      time.Duration
	Destination string
}

// Applies reports whether the correction targets this package.
func (c Correction) Applies(p *Package) bool {
	return c.PackageID != 0 && p.PackageID == c.PackageID
}

// DestinationAt returns the destination that is valid at the given offset.
func (p *Package) DestinationAt(at time.Duration, c Correction) string {
	if !c.Applies(p) {
		return p.Destination
	}
	if at >= c.Cutoff {
		return c.Destination
	}
	if p.OriginalDestination != "" {
		return p.OriginalDestination
	}
	return p.Destination
}
