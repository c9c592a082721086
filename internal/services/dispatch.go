package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/graph"
	"parcel-dispatch-service/internal/platform/obs"
)

// AddressCorrection replaces one package's destination once the
// dispatcher's clock reaches At. A package already loaded keeps its address.
type AddressCorrection struct {
	PackageID string
	Address   string
	At        time.Time
}

// SimulationConfig describes the fleet and the day's one scheduled correction.
type SimulationConfig struct {
	Hub           string
	DepartAt      time.Time
	TruckCount    int
	TruckCapacity int
	TruckSpeedMPH float64
	Correction    *AddressCorrection
	Recorder      Recorder
}

// Simulation owns all state of one service day: the graph, the trucks,
// every package, the loading pools and the pending correction.
type Simulation struct {
	mu sync.RWMutex

	hub        string
	graph      *graph.Graph
	trucks     []*domain.Truck
	packages   domain.PackageIndex
	order      []string
	pools      *domain.Pools
	groups     []domain.SiblingGroup
	held       []domain.SiblingGroup
	heldIDs    map[string]bool
	correction *AddressCorrection
	corrected  bool

	planner   *Planner
	simulator *Simulator
	recorder  Recorder

	report *domain.Report
}

// NewSimulation validates the inputs and prepares the day. Every package
// is received at DepartAt: delayed ones wait for release, the rest are at
// the hub. Tiers must already be set on pkgs.
func NewSimulation(cfg SimulationConfig, locations []*domain.Location, pkgs []*domain.Package) (*Simulation, error) {
	if cfg.TruckCount != 2 {
		return nil, fmt.Errorf("new simulation: need exactly 2 trucks, got %d", cfg.TruckCount)
	}
	if cfg.TruckCapacity < 1 || cfg.TruckSpeedMPH <= 0 {
		return nil, fmt.Errorf("new simulation: invalid truck capacity=%d speed=%v", cfg.TruckCapacity, cfg.TruckSpeedMPH)
	}

	g, err := graph.Build(locations)
	if err != nil {
		return nil, fmt.Errorf("new simulation: %w", err)
	}
	if !g.Has(cfg.Hub) {
		return nil, fmt.Errorf("new simulation: hub %q: %w", cfg.Hub, domain.ErrLocationNotFound)
	}

	idx := make(domain.PackageIndex, len(pkgs))
	order := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		if _, dup := idx[p.PackageID]; dup {
			return nil, fmt.Errorf("new simulation: duplicate package id %q", p.PackageID)
		}
		if !g.Has(p.Address) {
			return nil, fmt.Errorf("new simulation: package %s address %q: %w", p.PackageID, p.Address, domain.ErrLocationNotFound)
		}
		if p.RequiredTruck < 0 || p.RequiredTruck > cfg.TruckCount {
			return nil, fmt.Errorf("new simulation: package %s pinned to truck %d: %w", p.PackageID, p.RequiredTruck, domain.ErrUnreachablePackage)
		}
		idx[p.PackageID] = p
		order = append(order, p.PackageID)
	}
	for _, p := range pkgs {
		for _, sib := range p.Siblings {
			if _, err := idx.Lookup(sib); err != nil {
				return nil, fmt.Errorf("new simulation: package %s sibling: %w", p.PackageID, err)
			}
		}
		p.Receive(cfg.DepartAt)
	}

	if c := cfg.Correction; c != nil {
		if _, err := idx.Lookup(c.PackageID); err != nil {
			return nil, fmt.Errorf("new simulation: address correction: %w", err)
		}
		if !g.Has(c.Address) {
			return nil, fmt.Errorf("new simulation: address correction to %q: %w", c.Address, domain.ErrLocationNotFound)
		}
	}

	trucks := make([]*domain.Truck, 0, cfg.TruckCount)
	for i := 1; i <= cfg.TruckCount; i++ {
		trucks = append(trucks, domain.NewTruck(i, cfg.TruckCapacity, cfg.TruckSpeedMPH, cfg.Hub, cfg.DepartAt))
	}

	rec := cfg.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}

	s := &Simulation{
		hub:        cfg.Hub,
		graph:      g,
		trucks:     trucks,
		packages:   idx,
		order:      order,
		pools:      domain.NewPools(pkgs),
		groups:     domain.MergeSiblingGroups(pkgs),
		heldIDs:    make(map[string]bool),
		correction: cfg.Correction,
		planner:    &Planner{Hub: cfg.Hub, Graph: g, Packages: idx},
		simulator:  &Simulator{Hub: cfg.Hub, Graph: g, Packages: idx, Recorder: rec},
		recorder:   rec,
	}

	for _, group := range s.groups {
		if len(group) > cfg.TruckCapacity {
			return nil, fmt.Errorf("new simulation: sibling group %v exceeds capacity %d: %w", group, cfg.TruckCapacity, domain.ErrUnreachablePackage)
		}
		if _, _, err := s.planner.inspectGroup(group); err != nil {
			return nil, fmt.Errorf("new simulation: %w", err)
		}
	}

	return s, nil
}

// Run plays out the whole day and returns its report.
//
// Sibling groups load first, then both trucks fill from the pools and
// deliver. Afterwards the truck back first reloads, then the other one
// waits for the last pending release before it reloads. A round that
// neither delivers nor releases anything means the remaining packages can
// never be placed.
func (s *Simulation) Run(ctx context.Context) (report *domain.Report, err error) {
	defer obs.Time(ctx, "dispatch.Run")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.report != nil {
		return nil, errors.New("run simulation: already ran")
	}

	held, err := s.planner.LoadSiblingGroups(s.trucks, s.groups, s.pools)
	if err != nil {
		return nil, fmt.Errorf("run simulation: %w", err)
	}
	s.hold(held)
	for _, t := range s.trucks {
		if err := s.planner.Resequence(t); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
	}

	if err := s.planner.FillTrucks(s.trucks, s.pools.Ordered()); err != nil {
		return nil, fmt.Errorf("run simulation: %w", err)
	}
	for _, t := range s.trucks {
		if err := s.dispatch(t); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
	}

	rounds := 0
	for s.pending() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run simulation: round %d: %w", rounds+1, err)
		}
		before := s.delivered()
		waiting := len(s.pools.Delayed)

		first, second := s.returnOrder()

		if err := s.resolveIssues(first.Clock); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
		if err := s.reload(first); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
		if err := s.dispatch(first); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}

		if len(s.pools.Delayed) > 0 {
			latest, err := s.pools.LatestRelease(s.packages)
			if err != nil {
				return nil, fmt.Errorf("run simulation: %w", err)
			}
			second.WaitUntil(latest)
		}
		if err := s.resolveIssues(second.Clock); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
		first.WaitUntil(second.Clock)

		if err := s.reload(second); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}
		if err := s.dispatch(second); err != nil {
			return nil, fmt.Errorf("run simulation: %w", err)
		}

		rounds++
		pending := s.pending()
		delivered := s.delivered() - before
		released := waiting - len(s.pools.Delayed)
		s.recorder.RoundCompleted(pending)
		log.Printf("req_id=%s op=dispatch.round round=%d delivered=%d released=%d pending=%d unassigned=%d held=%d truck%d_clock=%s truck%d_clock=%s",
			obs.RequestID(ctx), rounds, delivered, released, pending, s.pools.Unassigned(), len(s.held),
			first.TruckID, first.Clock.Format(time.Kitchen), second.TruckID, second.Clock.Format(time.Kitchen))

		// Packages released during the second truck's wait may be pinned
		// to the first truck, which picks them up next round.
		if delivered == 0 && released == 0 {
			return nil, fmt.Errorf("run simulation: round %d made no progress, stuck packages %v: %w",
				rounds, s.stuckIDs(), domain.ErrUnreachablePackage)
		}
	}

	s.report = s.buildReport(obs.RequestID(ctx), rounds)
	return s.report, nil
}

// dispatch delivers the whole manifest and brings the truck home.
func (s *Simulation) dispatch(t *domain.Truck) error {
	if _, err := s.simulator.DeliverAll(t); err != nil {
		return err
	}
	return s.simulator.ReturnToHub([]*domain.Truck{t})
}

// reload loads held sibling groups first, then fills from the pools.
func (s *Simulation) reload(t *domain.Truck) error {
	trucks := []*domain.Truck{t}

	before := len(t.Manifest)
	held, err := s.planner.LoadSiblingGroups(trucks, s.held, s.pools)
	if err != nil {
		return err
	}
	s.hold(held)
	if len(t.Manifest) != before {
		if err := s.planner.Resequence(t); err != nil {
			return err
		}
	}

	return s.planner.FillTrucks(trucks, s.pools.Ordered())
}

// hold keeps deferred groups out of the pools so none of their members
// leaves alone on a truck.
func (s *Simulation) hold(groups []domain.SiblingGroup) {
	s.held = groups
	clear(s.heldIDs)
	for _, g := range groups {
		for _, id := range g {
			s.heldIDs[id] = true
			s.pools.RemoveEverywhere(id)
		}
	}
}

// returnOrder sorts the two trucks by clock. On a tie the first truck in
// input order moves first.
func (s *Simulation) returnOrder() (first, second *domain.Truck) {
	if s.trucks[1].Clock.Before(s.trucks[0].Clock) {
		return s.trucks[1], s.trucks[0]
	}
	return s.trucks[0], s.trucks[1]
}

// resolveIssues applies the address correction once it is due and moves
// every package whose release time has passed into its pool.
func (s *Simulation) resolveIssues(at time.Time) error {
	if c := s.correction; c != nil && !s.corrected && !at.Before(c.At) {
		pkg, err := s.packages.Lookup(c.PackageID)
		if err != nil {
			return fmt.Errorf("resolve issues: %w", err)
		}
		if pkg.Status < domain.StatusEnRoute {
			from := pkg.Address
			if pkg.CorrectAddress(c.Address, c.At) {
				log.Printf("op=dispatch.correct package_id=%s from=%q to=%q at=%s", pkg.PackageID, from, c.Address, c.At.Format(time.Kitchen))
			}
		} else {
			log.Printf("op=dispatch.correct package_id=%s skipped status=%s", pkg.PackageID, pkg.Status)
		}
		s.corrected = true
	}

	var waiting []string
	for _, id := range s.pools.Delayed {
		pkg, err := s.packages.Lookup(id)
		if err != nil {
			return fmt.Errorf("resolve issues: %w", err)
		}
		if pkg.ReleaseAt.After(at) {
			waiting = append(waiting, id)
			continue
		}
		if err := pkg.Advance(at, 0); err != nil {
			return fmt.Errorf("resolve issues: %w", err)
		}
		if !s.heldIDs[id] {
			s.pools.ForTier(pkg.Tier).Add(id)
		}
	}
	s.pools.Delayed = waiting

	return nil
}

func (s *Simulation) pending() int {
	n := 0
	for _, id := range s.order {
		if s.packages[id].Status < domain.StatusEnRoute {
			n++
		}
	}
	return n
}

// stuckIDs lists packages still in a pool followed by held group members.
func (s *Simulation) stuckIDs() []string {
	out := s.pools.PendingIDs()
	for _, g := range s.held {
		for _, id := range g {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

func (s *Simulation) delivered() int {
	n := 0
	for _, id := range s.order {
		if s.packages[id].Status == domain.StatusDelivered {
			n++
		}
	}
	return n
}

func (s *Simulation) buildReport(runID string, rounds int) *domain.Report {
	r := &domain.Report{RunID: runID, Rounds: rounds}

	perTruck := make(map[int]int, len(s.trucks))
	for _, id := range s.order {
		pkg := s.packages[id]
		if pkg.Status != domain.StatusDelivered {
			r.PackagesLeft++
			continue
		}
		r.Delivered++
		perTruck[pkg.TruckID]++
		if !pkg.OnTime() {
			r.Late = append(r.Late, id)
		}
	}

	for _, t := range s.trucks {
		r.Trucks = append(r.Trucks, domain.TruckSummary{
			TruckID:    t.TruckID,
			FinishedAt: t.Clock,
			Miles:      t.Miles,
			Delivered:  perTruck[t.TruckID],
		})
		r.TotalMiles += t.Miles
	}
	return r
}

// Report returns the result of the last run, or nil before Run.
func (s *Simulation) Report() *domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Packages returns snapshots of every package at t, in input order.
func (s *Simulation) Packages(t time.Time) []domain.PackageSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PackageSnapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.packages[id].SnapshotAt(t))
	}
	return out
}

// Package returns one package's snapshot at t.
func (s *Simulation) Package(id string, t time.Time) (domain.PackageSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkg, err := s.packages.Lookup(id)
	if err != nil {
		return domain.PackageSnapshot{}, err
	}
	return pkg.SnapshotAt(t), nil
}
