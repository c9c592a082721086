package ports

import (
	"context"
	"parcel-dispatch-service/internal/domain"
	"time"
)

// Port: a boundary for retrieving Package entities from a data source.
type PackageRepository interface {
	// Retrieve all packages in input order. Deadlines and release times are
	// resolved on day; a package due at end of day has a zero Deadline.
	ListPackages(ctx context.Context, day time.Time) ([]*domain.Package, error)
}
