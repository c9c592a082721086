package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/graph"
)

var serviceDay = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

func clock(h, m int) time.Time {
	return serviceDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

// network returns Hub, A, B, C and an isolated Island.
//
//	Hub-A 3, Hub-B 5, Hub-C 9, A-B 4, A-C 8, B-C 6
func network() []*domain.Location {
	hub := domain.NewLocation("Hub", "Depot", "")
	a := domain.NewLocation("A", "", "")
	b := domain.NewLocation("B", "", "")
	c := domain.NewLocation("C", "", "")
	island := domain.NewLocation("Island", "", "")

	hub.SetDistance(a, 3)
	hub.SetDistance(b, 5)
	hub.SetDistance(c, 9)
	a.SetDistance(b, 4)
	a.SetDistance(c, 8)
	b.SetDistance(c, 6)

	return []*domain.Location{hub, a, b, c, island}
}

// parcel builds an end-of-day package bound for address.
func parcel(id, address string) *domain.Package {
	return &domain.Package{
		PackageID: id,
		Address:   address,
		Deadline:  clock(23, 59),
		Tier:      domain.TierEndOfDay,
	}
}

func newPlanner(t *testing.T, pkgs ...*domain.Package) *Planner {
	t.Helper()
	g, err := graph.Build(network())
	require.NoError(t, err)
	for _, p := range pkgs {
		p.Receive(clock(8, 0))
	}
	return &Planner{Hub: "Hub", Graph: g, Packages: domain.NewPackageIndex(pkgs)}
}

func twoTrucks(capacity int) []*domain.Truck {
	return []*domain.Truck{
		domain.NewTruck(1, capacity, 18, "Hub", clock(8, 0)),
		domain.NewTruck(2, capacity, 18, "Hub", clock(8, 0)),
	}
}

func manifestIDs(t *domain.Truck) []string {
	ids := make([]string, 0, len(t.Manifest))
	for _, e := range t.Manifest {
		ids = append(ids, e.PackageID)
	}
	return ids
}

type recorderStub struct {
	delivered map[int]int
	late      int
	rounds    int
	miles     map[int]float64
}

func newRecorderStub() *recorderStub {
	return &recorderStub{delivered: map[int]int{}, miles: map[int]float64{}}
}

func (r *recorderStub) PackageDelivered(truckID int, late bool) {
	r.delivered[truckID]++
	if late {
		r.late++
	}
}

func (r *recorderStub) RoundCompleted(int) { r.rounds++ }

func (r *recorderStub) TruckMoved(truckID int, miles float64) { r.miles[truckID] = miles }
