package app

import (
	"fmt"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/services"
	"time"
)

// Rules are the configuration's time strings resolved against the operating day.
type Rules struct {
	Day      domain.Day
	Load     services.LoadRules
	Dispatch services.DispatchRules
}

func Resolve(cfg *config.Config) (Rules, error) {
	day, err := domain.NewDay(cfg.Day.Start, cfg.Day.End)
	if err != nil {
		return Rules{}, fmt.Errorf("resolve rules: day: %w", err)
	}

	var release time.Duration
	if cfg.Load.Release != "" {
		release, err = day.Offset(cfg.Load.Release)
		if err != nil {
			return Rules{}, fmt.Errorf("resolve rules: release: %w", err)
		}
	}

	var correction domain.Correction
	if cfg.Correction.PackageID != 0 {
		cutoff, err := day.Offset(cfg.Correction.Cutoff)
		if err != nil {
			return Rules{}, fmt.Errorf("resolve rules: correction cutoff: %w", err)
		}
		correction = domain.Correction{
			PackageID:   cfg.Correction.PackageID,
			Cutoff:      cutoff,
			Destination: cfg.Correction.Address,
		}
	}

	groups := make([]services.Group, 0, len(cfg.Load.Groups))
	for _, g := range cfg.Load.Groups {
		groups = append(groups, services.Group{TruckID: g.Truck, PackageIDs: append([]int(nil), g.Packages...)})
	}

	return Rules{
		Day: day,
		Load: services.LoadRules{
			Groups:         groups,
			DelayedTruckID: cfg.Load.DelayedTruck,
			DelayedMarker:  cfg.Load.DelayedMarker,
		},
		Dispatch: services.DispatchRules{
			ReleaseAt:     release,
			DelayedMarker: cfg.Load.DelayedMarker,
			Correction:    correction,
		},
	}, nil
}

// NewFleet builds empty trucks at the depot in configuration order.
func NewFleet(cfg *config.Config, day domain.Day) ([]*domain.Truck, error) {
	trucks := make([]*domain.Truck, 0, len(cfg.Fleet.Trucks))
	for _, t := range cfg.Fleet.Trucks {
		depart, err := day.Offset(t.Departure)
		if err != nil {
			return nil, fmt.Errorf("new fleet: truck %d departure: %w", t.ID, err)
		}
		if depart < 0 {
			return nil, fmt.Errorf("new fleet: truck %d departs before the day starts: %w", t.ID, domain.ErrInvalidTime)
		}
		trucks = append(trucks, domain.NewTruck(t.ID, t.Capacity, t.SpeedMPH, depart, cfg.Fleet.Depot))
	}
	return trucks, nil
}
