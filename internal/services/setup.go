package services

import (
	"context"
	"fmt"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
)

// BuildSimulation loads locations and packages for the scenario's service
// day, classifies every package into its deadline tier and prepares the
// simulation. Packages without a deadline are due at end of day.
func BuildSimulation(
	ctx context.Context,
	sc config.Scenario,
	locRepo ports.LocationRepository,
	pkgRepo ports.PackageRepository,
	rec Recorder,
) (_ *Simulation, err error) {
	defer obs.Time(ctx, "dispatch.Build")(&err)

	day, err := sc.Day()
	if err != nil {
		return nil, fmt.Errorf("build simulation: %w", err)
	}
	start, err := sc.At(sc.StartTime)
	if err != nil {
		return nil, fmt.Errorf("build simulation: start_time: %w", err)
	}
	p1, err := sc.At(sc.Priority1Cutoff)
	if err != nil {
		return nil, fmt.Errorf("build simulation: priority_1_cutoff: %w", err)
	}
	p2, err := sc.At(sc.Priority2Cutoff)
	if err != nil {
		return nil, fmt.Errorf("build simulation: priority_2_cutoff: %w", err)
	}
	eod, err := sc.At(sc.EndOfDay)
	if err != nil {
		return nil, fmt.Errorf("build simulation: end_of_day: %w", err)
	}

	locations, err := locRepo.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("build simulation: list locations: %w", err)
	}
	pkgs, err := pkgRepo.ListPackages(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("build simulation: list packages: %w", err)
	}

	for _, p := range pkgs {
		if p.Deadline.IsZero() {
			p.Deadline = eod
		}
		p.Tier = domain.ClassifyDeadline(p.Deadline, p1, p2)
	}

	cfg := SimulationConfig{
		Hub:           sc.HubAddress,
		DepartAt:      start,
		TruckCount:    sc.TruckCount,
		TruckCapacity: sc.TruckCapacity,
		TruckSpeedMPH: sc.TruckSpeedMPH,
		Recorder:      rec,
	}
	if c := sc.AddressCorrection; c != nil {
		at, err := sc.At(c.At)
		if err != nil {
			return nil, fmt.Errorf("build simulation: address_correction.at: %w", err)
		}
		cfg.Correction = &AddressCorrection{PackageID: c.PackageID, Address: c.Address, At: at}
	}

	sim, err := NewSimulation(cfg, locations, pkgs)
	if err != nil {
		return nil, fmt.Errorf("build simulation: %w", err)
	}
	return sim, nil
}
