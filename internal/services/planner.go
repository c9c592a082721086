package services

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/graph"
)

// Planner decides which package rides which truck and in what order.
//
// Selection is a greedy nearest-neighbor over shortest-path distances,
// filtered by truck pins. It does not attempt global route optimization.
// Among equally near candidates the first in pool order wins, so plans are
// reproducible.
type Planner struct {
	Hub      string
	Graph    *graph.Graph
	Packages domain.PackageIndex
}

// LoadSiblingGroups loads each group as a unit onto one truck.
//
// Targets rotate round-robin across trucks, one group per truck in turn.
// A group with a pinned member goes to that truck. A group that cannot be
// loaded now (a member still awaiting release, no room, or its pinned truck
// is not among trucks) is returned for a later attempt.
func (p *Planner) LoadSiblingGroups(
	trucks []*domain.Truck,
	groups []domain.SiblingGroup,
	pools *domain.Pools,
) ([]domain.SiblingGroup, error) {
	if len(trucks) == 0 {
		return nil, errors.New("load sibling groups: truck list must not be empty")
	}

	var deferred []domain.SiblingGroup
	target := 0

	for _, group := range groups {
		pin, ready, err := p.inspectGroup(group)
		if err != nil {
			return nil, fmt.Errorf("load sibling groups: %w", err)
		}

		var truck *domain.Truck
		if ready {
			truck = pickGroupTruck(trucks, target, pin, len(group))
		}
		target = (target + 1) % len(trucks)

		if truck == nil {
			deferred = append(deferred, group)
			continue
		}

		for _, id := range group {
			if err := p.load(truck, id); err != nil {
				return nil, fmt.Errorf("load sibling groups: %w", err)
			}
			pools.RemoveEverywhere(id)
		}
	}

	return deferred, nil
}

// inspectGroup returns the truck the group is pinned to (0 if none) and
// whether every member is at the hub.
func (p *Planner) inspectGroup(group domain.SiblingGroup) (int, bool, error) {
	pin := 0
	ready := true
	for _, id := range group {
		pkg, err := p.Packages.Lookup(id)
		if err != nil {
			return 0, false, err
		}
		if pkg.Status != domain.StatusAtHub {
			ready = false
		}
		if pkg.RequiredTruck == 0 {
			continue
		}
		if pin != 0 && pin != pkg.RequiredTruck {
			return 0, false, fmt.Errorf(
				"sibling group %v pinned to trucks %d and %d: %w",
				group, pin, pkg.RequiredTruck, domain.ErrUnreachablePackage,
			)
		}
		pin = pkg.RequiredTruck
	}
	return pin, ready, nil
}

func pickGroupTruck(trucks []*domain.Truck, target, pin, size int) *domain.Truck {
	if pin != 0 {
		for _, t := range trucks {
			if t.TruckID == pin && t.Free() >= size {
				return t
			}
		}
		return nil
	}
	for i := range trucks {
		t := trucks[(target+i)%len(trucks)]
		if t.Free() >= size {
			return t
		}
	}
	return nil
}

// load appends id to the manifest with the leg from the current last stop
// and marks the package en route.
func (p *Planner) load(truck *domain.Truck, id string) error {
	pkg, err := p.Packages.Lookup(id)
	if err != nil {
		return err
	}
	if pkg.Status != domain.StatusAtHub {
		return fmt.Errorf("load package %s onto truck %d: status %s: %w", id, truck.TruckID, pkg.Status, domain.ErrInvalidTransition)
	}

	from, err := p.referenceAddress(truck)
	if err != nil {
		return err
	}
	miles, err := p.Graph.Distance(from, pkg.Address)
	if err != nil {
		return fmt.Errorf("load package %s: %w", id, err)
	}

	if err := truck.Load(id, miles); err != nil {
		return err
	}
	return pkg.Advance(truck.Clock, truck.TruckID)
}

// referenceAddress is the hub for an empty truck, else the destination of
// the last loaded package.
func (p *Planner) referenceAddress(truck *domain.Truck) (string, error) {
	last, ok := truck.LastPackage()
	if !ok {
		return p.Hub, nil
	}
	pkg, err := p.Packages.Lookup(last)
	if err != nil {
		return "", err
	}
	return pkg.Address, nil
}

// FindNearest returns the package in ids whose destination is closest to
// from, skipping packages pinned to another truck. found is false when no
// candidate remains.
func (p *Planner) FindNearest(from string, truckID int, ids []string) (id string, miles float64, found bool, err error) {
	miles = math.Inf(1)
	for _, candidate := range ids {
		pkg, err := p.Packages.Lookup(candidate)
		if err != nil {
			return "", 0, false, fmt.Errorf("find nearest: %w", err)
		}
		if pkg.RequiredTruck != 0 && pkg.RequiredTruck != truckID {
			continue
		}

		d, err := p.Graph.Distance(from, pkg.Address)
		if err != nil {
			return "", 0, false, fmt.Errorf("find nearest from %q: %w", from, err)
		}
		if d < miles {
			id, miles, found = candidate, d, true
		}
	}
	return id, miles, found, nil
}

// LoadNext loads the package in pool nearest to the truck's last stop.
// It reports false when the truck is full, the pool is empty, or every
// remaining package is pinned elsewhere.
func (p *Planner) LoadNext(truck *domain.Truck, pool *domain.PackagePool) (bool, error) {
	if truck.Full() || pool.Len() == 0 {
		return false, nil
	}

	from, err := p.referenceAddress(truck)
	if err != nil {
		return false, fmt.Errorf("load next onto truck %d: %w", truck.TruckID, err)
	}

	id, miles, found, err := p.FindNearest(from, truck.TruckID, pool.IDs)
	if err != nil {
		return false, fmt.Errorf("load next onto truck %d: %w", truck.TruckID, err)
	}
	if !found {
		return false, nil
	}

	pkg, err := p.Packages.Lookup(id)
	if err != nil {
		return false, err
	}
	if pkg.Status != domain.StatusAtHub {
		return false, fmt.Errorf("load next onto truck %d: package %s is %s: %w", truck.TruckID, id, pkg.Status, domain.ErrInvalidTransition)
	}

	if err := truck.Load(id, miles); err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			return false, nil
		}
		return false, err
	}
	if err := pkg.Advance(truck.Clock, truck.TruckID); err != nil {
		return false, err
	}
	pool.Remove(id)

	return true, nil
}

// Resequence rebuilds the manifest in nearest-neighbor order from the hub,
// recomputing the miles of every leg.
func (p *Planner) Resequence(truck *domain.Truck) error {
	remaining := make([]string, 0, len(truck.Manifest))
	for _, e := range truck.Manifest {
		remaining = append(remaining, e.PackageID)
	}

	sequenced := make([]domain.ManifestEntry, 0, len(remaining))
	from := p.Hub
	for len(remaining) > 0 {
		id, miles, found, err := p.FindNearest(from, truck.TruckID, remaining)
		if err != nil {
			return fmt.Errorf("resequence truck %d: %w", truck.TruckID, err)
		}
		if !found {
			return fmt.Errorf("resequence truck %d: no reachable package among %v: %w", truck.TruckID, remaining, domain.ErrUnreachablePackage)
		}

		sequenced = append(sequenced, domain.ManifestEntry{PackageID: id, Miles: miles})
		remaining = slices.DeleteFunc(remaining, func(s string) bool { return s == id })

		pkg, err := p.Packages.Lookup(id)
		if err != nil {
			return err
		}
		from = pkg.Address
	}

	truck.Manifest = sequenced
	return nil
}

// FillTrucks drains the pools in priority order. Trucks take turns loading
// one package each, and a truck is resequenced after every load. A pool is
// left once it is empty or a full pass over the trucks loads nothing.
func (p *Planner) FillTrucks(trucks []*domain.Truck, pools []*domain.PackagePool) error {
	for _, pool := range pools {
		for pool.Len() > 0 && !allFull(trucks) {
			loaded := false
			for _, truck := range trucks {
				if truck.Full() {
					continue
				}
				ok, err := p.LoadNext(truck, pool)
				if err != nil {
					return fmt.Errorf("fill trucks: %s pool: %w", pool.Tier, err)
				}
				if !ok {
					continue
				}
				loaded = true
				if err := p.Resequence(truck); err != nil {
					return fmt.Errorf("fill trucks: %w", err)
				}
			}
			if !loaded {
				break
			}
		}
	}
	return nil
}

func allFull(trucks []*domain.Truck) bool {
	for _, t := range trucks {
		if !t.Full() {
			return false
		}
	}
	return true
}
