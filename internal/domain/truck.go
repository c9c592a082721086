package domain

import (
	"fmt"
	"math"
	"time"
)

// ManifestEntry is a loaded package and the miles from the previous stop.
type ManifestEntry struct {
	PackageID string
	Miles     float64
}

// Delivery truck holding an ordered manifest and its simulated position.
type Truck struct {
	TruckID  int
	Capacity int
	SpeedMPH float64
	Clock    time.Time
	Miles    float64
	Position string
	Manifest []ManifestEntry
}

func NewTruck(id, capacity int, speedMPH float64, hub string, departAt time.Time) *Truck {
	return &Truck{
		TruckID:  id,
		Capacity: capacity,
		SpeedMPH: speedMPH,
		Clock:    departAt,
		Position: hub,
	}
}

func (t *Truck) Full() bool  { return len(t.Manifest) >= t.Capacity }
func (t *Truck) Empty() bool { return len(t.Manifest) == 0 }

// Free returns the number of packages the truck can still take.
func (t *Truck) Free() int {
	if n := t.Capacity - len(t.Manifest); n > 0 {
		return n
	}
	return 0
}

// Load a single package onto the end of the manifest.
func (t *Truck) Load(packageID string, miles float64) error {
	if t.Full() {
		return fmt.Errorf("load truck %d (capacity=%d): %w", t.TruckID, t.Capacity, ErrCapacityExceeded)
	}
	t.Manifest = append(t.Manifest, ManifestEntry{PackageID: packageID, Miles: miles})
	return nil
}

// LastPackage returns the id of the most recently loaded package.
func (t *Truck) LastPackage() (string, bool) {
	if t.Empty() {
		return "", false
	}
	return t.Manifest[len(t.Manifest)-1].PackageID, true
}

// Pop removes and returns the head of the manifest.
func (t *Truck) Pop() (ManifestEntry, error) {
	if t.Empty() {
		return ManifestEntry{}, fmt.Errorf("pop truck %d: %w", t.TruckID, ErrEmptyManifest)
	}
	head := t.Manifest[0]
	t.Manifest = t.Manifest[1:]
	return head, nil
}

// Drive advances the truck by the given miles and moves it to address.
func (t *Truck) Drive(miles float64, address string) {
	t.Clock = t.Clock.Add(t.TravelTime(miles))
	t.Miles += miles
	t.Position = address
}

// TravelTime converts miles into driving time at the truck's speed.
func (t *Truck) TravelTime(miles float64) time.Duration {
	if t.SpeedMPH <= 0 || miles <= 0 || math.IsInf(miles, 0) {
		return 0
	}
	return time.Duration(miles / t.SpeedMPH * float64(time.Hour))
}

// WaitUntil moves the clock forward to at. It never moves backwards.
func (t *Truck) WaitUntil(at time.Time) {
	if at.After(t.Clock) {
		t.Clock = at
	}
}
