package services

import (
	"fmt"
	"math"

	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/graph"
)

// Recorder receives delivery progress. *metrics.Collector satisfies it.
type Recorder interface {
	PackageDelivered(truckID int, late bool)
	RoundCompleted(pending int)
	TruckMoved(truckID int, miles float64)
}

type nopRecorder struct{}

func (nopRecorder) PackageDelivered(int, bool) {}
func (nopRecorder) RoundCompleted(int)         {}
func (nopRecorder) TruckMoved(int, float64)    {}

// Simulator drives trucks along their manifests and back to the hub.
type Simulator struct {
	Hub      string
	Graph    *graph.Graph
	Packages domain.PackageIndex
	Recorder Recorder
}

func (s *Simulator) recorder() Recorder {
	if s.Recorder == nil {
		return nopRecorder{}
	}
	return s.Recorder
}

// DeliverNext drives to the head of the manifest and delivers it.
func (s *Simulator) DeliverNext(truck *domain.Truck) (*domain.Package, error) {
	entry, err := truck.Pop()
	if err != nil {
		return nil, fmt.Errorf("deliver next: %w", err)
	}
	pkg, err := s.Packages.Lookup(entry.PackageID)
	if err != nil {
		return nil, fmt.Errorf("deliver next: %w", err)
	}
	if math.IsInf(entry.Miles, 0) {
		return nil, fmt.Errorf("deliver next: package %s on truck %d: %w", pkg.PackageID, truck.TruckID, domain.ErrUnreachablePackage)
	}

	truck.Drive(entry.Miles, pkg.Address)
	if err := pkg.Advance(truck.Clock, truck.TruckID); err != nil {
		return nil, fmt.Errorf("deliver next: %w", err)
	}

	rec := s.recorder()
	rec.PackageDelivered(truck.TruckID, !pkg.OnTime())
	rec.TruckMoved(truck.TruckID, truck.Miles)

	return pkg, nil
}

// DeliverAll empties the manifest in order.
func (s *Simulator) DeliverAll(truck *domain.Truck) (int, error) {
	n := 0
	for !truck.Empty() {
		if _, err := s.DeliverNext(truck); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ReturnToHub drives every truck back along the shortest path.
func (s *Simulator) ReturnToHub(trucks []*domain.Truck) error {
	for _, t := range trucks {
		miles, err := s.Graph.Distance(t.Position, s.Hub)
		if err != nil {
			return fmt.Errorf("return truck %d to hub: %w", t.TruckID, err)
		}
		if math.IsInf(miles, 0) {
			return fmt.Errorf("return truck %d from %q to hub: %w", t.TruckID, t.Position, graph.ErrUnreachable)
		}
		t.Drive(miles, s.Hub)
		s.recorder().TruckMoved(t.TruckID, t.Miles)
	}
	return nil
}
