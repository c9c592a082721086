package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle stage of a package. Stages only move forward.
type Status int

const (
	StatusAwaitingRelease Status = iota
	StatusAtHub
	StatusEnRoute
	StatusDelivered
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingRelease:
		return "awaiting_release"
	case StatusAtHub:
		return "at_hub"
	case StatusEnRoute:
		return "en_route"
	case StatusDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Tier is the deadline class a package is loaded from. Lower tiers load first.
type Tier int

const (
	TierPriority1 Tier = iota
	TierPriority2
	TierEndOfDay
)

func (t Tier) String() string {
	switch t {
	case TierPriority1:
		return "priority_1"
	case TierPriority2:
		return "priority_2"
	case TierEndOfDay:
		return "end_of_day"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ClassifyDeadline maps a deadline onto a tier using the two cut-offs.
func ClassifyDeadline(deadline, priority1, priority2 time.Time) Tier {
	switch {
	case !deadline.After(priority1):
		return TierPriority1
	case !deadline.After(priority2):
		return TierPriority2
	default:
		return TierEndOfDay
	}
}

// Represents a single parcel handled by the system.
// Timestamps are zero until the corresponding status is reached.
type Package struct {
	PackageID     string
	Address       string
	City          string
	State         string
	Zip           string
	Deadline      time.Time
	Tier          Tier
	WeightKg      float64
	RequiredTruck int
	Siblings      []string

	Status      Status
	ReleaseAt   time.Time
	AtHubAt     time.Time
	EnRouteAt   time.Time
	DeliveredAt time.Time
	TruckID     int

	OriginalAddress    string
	AddressCorrectedAt time.Time
}

// Delayed reports whether the package has a release time.
func (p *Package) Delayed() bool { return !p.ReleaseAt.IsZero() }

// Receive sets the initial status at the start of the service day.
func (p *Package) Receive(dayStart time.Time) {
	p.AtHubAt = time.Time{}
	p.EnRouteAt = time.Time{}
	p.DeliveredAt = time.Time{}
	p.TruckID = 0

	if p.Delayed() {
		p.Status = StatusAwaitingRelease
		return
	}
	p.Status = StatusAtHub
	p.AtHubAt = dayStart
}

// Advance moves the package to its next status.
// A release is stamped with the package's own release time rather than at,
// so a package always arrives at the hub exactly on schedule.
func (p *Package) Advance(at time.Time, truckID int) error {
	switch p.Status {
	case StatusAwaitingRelease:
		p.Status = StatusAtHub
		p.AtHubAt = p.ReleaseAt
	case StatusAtHub:
		p.Status = StatusEnRoute
		p.EnRouteAt = at
	case StatusEnRoute:
		p.Status = StatusDelivered
		p.DeliveredAt = at
	default:
		return fmt.Errorf("advance package %s from %s: %w", p.PackageID, p.Status, ErrInvalidTransition)
	}

	if truckID != 0 {
		p.TruckID = truckID
	}
	return nil
}

// CorrectAddress replaces the destination once. Later calls are ignored.
func (p *Package) CorrectAddress(address string, at time.Time) bool {
	if !p.AddressCorrectedAt.IsZero() {
		return false
	}
	p.OriginalAddress = p.Address
	p.Address = address
	p.AddressCorrectedAt = at
	return true
}

// OnTime reports whether the package was delivered by its deadline.
func (p *Package) OnTime() bool {
	return p.Status == StatusDelivered && !p.DeliveredAt.After(p.Deadline)
}

// PackageSnapshot is the state of a package as it was at a point in time.
type PackageSnapshot struct {
	At            time.Time
	PackageID     string
	Address       string
	Deadline      time.Time
	Tier          Tier
	WeightKg      float64
	RequiredTruck int
	Status        Status
	ReleaseAt     time.Time
	AtHubAt       time.Time
	EnRouteAt     time.Time
	DeliveredAt   time.Time
	TruckID       int
	OnTime        bool
}

// SnapshotAt derives the package state at t from its recorded timestamps.
// It never reports a status beyond the one the package actually reached.
func (p *Package) SnapshotAt(t time.Time) PackageSnapshot {
	s := PackageSnapshot{
		At:            t,
		PackageID:     p.PackageID,
		Address:       p.Address,
		Deadline:      p.Deadline,
		Tier:          p.Tier,
		WeightKg:      p.WeightKg,
		RequiredTruck: p.RequiredTruck,
		ReleaseAt:     p.ReleaseAt,
	}

	if !p.AddressCorrectedAt.IsZero() && t.Before(p.AddressCorrectedAt) {
		s.Address = p.OriginalAddress
	}

	var stage Status
	switch {
	case p.Delayed() && t.Before(p.ReleaseAt):
		stage = StatusAwaitingRelease
	case p.EnRouteAt.IsZero() || t.Before(p.EnRouteAt):
		stage = StatusAtHub
	case p.DeliveredAt.IsZero() || t.Before(p.DeliveredAt):
		stage = StatusEnRoute
	default:
		stage = StatusDelivered
	}
	if stage > p.Status {
		stage = p.Status
	}
	s.Status = stage

	if stage >= StatusAtHub {
		s.AtHubAt = p.AtHubAt
	}
	if stage >= StatusEnRoute {
		s.EnRouteAt = p.EnRouteAt
		s.TruckID = p.TruckID
	}
	if stage == StatusDelivered {
		s.DeliveredAt = p.DeliveredAt
		s.OnTime = !p.DeliveredAt.After(p.Deadline)
	}

	return s
}

// PackageIndex resolves packages by id.
type PackageIndex map[string]*Package

func NewPackageIndex(pkgs []*Package) PackageIndex {
	idx := make(PackageIndex, len(pkgs))
	for _, p := range pkgs {
		idx[p.PackageID] = p
	}
	return idx
}

func (idx PackageIndex) Lookup(id string) (*Package, error) {
	p, ok := idx[id]
	if !ok {
		return nil, fmt.Errorf("lookup package %q: %w", id, ErrPackageNotFound)
	}
	return p, nil
}
