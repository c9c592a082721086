package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"time"
)

// SQL-backed implementation of the PackageRepository port.
type PackageRepository struct{ DB *sql.DB }

func NewPackageRepository(db *sql.DB) *PackageRepository {
	return &PackageRepository{DB: db}
}

// Return all packages in seed order with their sibling lists, resolving
// stored times of day on day.
func (r *PackageRepository) ListPackages(ctx context.Context, day time.Time) (_ []*domain.Package, err error) {
	defer obs.Time(ctx, "packages.List")(&err)

	if r.DB == nil {
		return nil, errors.New("package repository: DB is nil")
	}

	query := `
	SELECT
		package_id,
		address,
		city,
		state,
		zip,
		deadline_minutes,
		weight_kg,
		required_truck,
		release_minutes
	FROM packages
	ORDER BY seq;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list packages: query packages table: %w", err)
	}
	defer rows.Close()

	packages := make([]*domain.Package, 0, 64)
	byID := make(map[string]*domain.Package)
	for rows.Next() {
		p := &domain.Package{}
		var deadline, release sql.NullInt64
		err := rows.Scan(
			&p.PackageID, &p.Address, &p.City, &p.State, &p.Zip,
			&deadline, &p.WeightKg, &p.RequiredTruck, &release,
		)
		if err != nil {
			return nil, fmt.Errorf("list packages: scan row: %w", err)
		}
		if deadline.Valid {
			p.Deadline = day.Add(time.Duration(deadline.Int64) * time.Minute)
		}
		if release.Valid {
			p.ReleaseAt = day.Add(time.Duration(release.Int64) * time.Minute)
		}
		packages = append(packages, p)
		byID[p.PackageID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packages: row iteration: %w", err)
	}

	srows, err := r.DB.QueryContext(ctx, `
	SELECT package_id, sibling_id
	FROM package_siblings
	ORDER BY package_id, sibling_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list packages: query package_siblings table: %w", err)
	}
	defer srows.Close()

	for srows.Next() {
		var id, sib string
		if err := srows.Scan(&id, &sib); err != nil {
			return nil, fmt.Errorf("list packages: scan sibling: %w", err)
		}
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("list packages: sibling row for %q: %w", id, domain.ErrPackageNotFound)
		}
		p.Siblings = append(p.Siblings, sib)
	}
	if err := srows.Err(); err != nil {
		return nil, fmt.Errorf("list packages: sibling iteration: %w", err)
	}

	return packages, nil
}
