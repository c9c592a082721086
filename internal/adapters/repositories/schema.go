package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the database schema. The DDL is valid for SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		address TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		zip TEXT NOT NULL DEFAULT ''
	);
	`

	createDistancesQuery := `
	CREATE TABLE IF NOT EXISTS distances (
		origin TEXT NOT NULL REFERENCES locations(address),
		destination TEXT NOT NULL REFERENCES locations(address),
		miles DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createPackagesQuery := `
	CREATE TABLE IF NOT EXISTS packages (
		package_id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		address TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip TEXT NOT NULL DEFAULT '',
		deadline_minutes INTEGER,
		weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		required_truck INTEGER NOT NULL DEFAULT 0,
		release_minutes INTEGER
	);
	`

	createSiblingsQuery := `
	CREATE TABLE IF NOT EXISTS package_siblings (
		package_id TEXT NOT NULL REFERENCES packages(package_id),
		sibling_id TEXT NOT NULL REFERENCES packages(package_id),
		PRIMARY KEY (package_id, sibling_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distances_destination_origin
	ON distances(destination, origin);
	`

	statements := []string{
		createLocationsQuery,
		createDistancesQuery,
		createPackagesQuery,
		createSiblingsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
