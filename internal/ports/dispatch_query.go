package ports

import (
	"parcel-dispatch-service/internal/domain"
	"time"
)

// Port: read access to the state of a completed dispatch run.
type DispatchQuery interface {
	// Snapshots of every package at a point in time, in input order.
	Packages(at time.Time) []domain.PackageSnapshot
	Package(id string, at time.Time) (domain.PackageSnapshot, error)
	// Nil until the run has finished.
	Report() *domain.Report
}
