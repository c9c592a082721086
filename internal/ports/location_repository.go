package ports

import (
	"context"
	"parcel-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving the delivery locations and the
// distances between them.
type LocationRepository interface {
	ListLocations(ctx context.Context) ([]*domain.Location, error)
}
