package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTruckLoadRespectsCapacity(t *testing.T) {
	departAt := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	truck := NewTruck(1, 2, 18, "HUB", departAt)

	if err := truck.Load("1", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := truck.Load("2", 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := truck.Load("3", 1)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if len(truck.Manifest) != 2 {
		t.Fatalf("manifest length = %d, want 2", len(truck.Manifest))
	}
	if truck.Free() != 0 {
		t.Errorf("free = %d, want 0", truck.Free())
	}

	last, ok := truck.LastPackage()
	if !ok || last != "2" {
		t.Errorf("last package = %q (%v), want 2", last, ok)
	}
}

func TestTruckPopAndDrive(t *testing.T) {
	departAt := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	truck := NewTruck(1, 16, 18, "HUB", departAt)

	if _, err := truck.Pop(); !errors.Is(err, ErrEmptyManifest) {
		t.Fatalf("err = %v, want ErrEmptyManifest", err)
	}

	_ = truck.Load("1", 9)
	head, err := truck.Pop()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head.PackageID != "1" || head.Miles != 9 {
		t.Fatalf("head = %+v", head)
	}

	truck.Drive(head.Miles, "A")

	// 9 miles at 18 mph is half an hour.
	if want := departAt.Add(30 * time.Minute); !truck.Clock.Equal(want) {
		t.Errorf("clock = %v, want %v", truck.Clock, want)
	}
	if truck.Miles != 9 {
		t.Errorf("miles = %v, want 9", truck.Miles)
	}
	if truck.Position != "A" {
		t.Errorf("position = %q, want A", truck.Position)
	}
}

func TestTruckWaitUntilNeverRewinds(t *testing.T) {
	departAt := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	truck := NewTruck(2, 16, 18, "HUB", departAt)

	truck.WaitUntil(departAt.Add(-time.Hour))
	if !truck.Clock.Equal(departAt) {
		t.Fatalf("clock moved backwards to %v", truck.Clock)
	}

	truck.WaitUntil(departAt.Add(5 * time.Minute))
	if !truck.Clock.Equal(departAt.Add(5 * time.Minute)) {
		t.Fatalf("clock = %v, want %v", truck.Clock, departAt.Add(5*time.Minute))
	}
}
