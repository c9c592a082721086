package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
)

// SQL-backed implementation of the LocationRepository port.
type LocationRepository struct{ DB *sql.DB }

func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{DB: db}
}

// Return every location with its distance row, in seed order.
func (r *LocationRepository) ListLocations(ctx context.Context) (_ []*domain.Location, err error) {
	defer obs.Time(ctx, "locations.List")(&err)

	if r.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT address, name, zip
	FROM locations
	ORDER BY seq;
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	locs := make([]*domain.Location, 0, 32)
	byAddr := make(map[string]*domain.Location)
	for rows.Next() {
		var addr, name, zip string
		if err := rows.Scan(&addr, &name, &zip); err != nil {
			return nil, fmt.Errorf("list locations: scan row: %w", err)
		}
		loc := domain.NewLocation(addr, name, zip)
		locs = append(locs, loc)
		byAddr[addr] = loc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	drows, err := r.DB.QueryContext(ctx, `
	SELECT origin, destination, miles
	FROM distances;
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: query distances table: %w", err)
	}
	defer drows.Close()

	for drows.Next() {
		var origin, dest string
		var miles float64
		if err := drows.Scan(&origin, &dest, &miles); err != nil {
			return nil, fmt.Errorf("list locations: scan distance: %w", err)
		}
		from, ok := byAddr[origin]
		if !ok {
			return nil, fmt.Errorf("list locations: distance origin %q: %w", origin, domain.ErrLocationNotFound)
		}
		to, ok := byAddr[dest]
		if !ok {
			return nil, fmt.Errorf("list locations: distance destination %q: %w", dest, domain.ErrLocationNotFound)
		}
		from.SetDistance(to, miles)
	}
	if err := drows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: distance iteration: %w", err)
	}

	return locs, nil
}
