package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/adapters/seedfile"
	"time"
)

// Populate the database with locations and packages from a JSON seed file.
func SeedFromJSON(ctx context.Context, db *sql.DB, dialect Dialect, jsonPath string) error {
	seed, err := seedfile.Load(jsonPath)
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	return Seed(ctx, db, dialect, seed)
}

// Seed upserts a parsed seed in a single transaction.
func Seed(ctx context.Context, db *sql.DB, dialect Dialect, seed *seedfile.Seed) error {
	if db == nil {
		return errors.New("seed database: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed database: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := seedLocations(ctx, tx, dialect, seed.Locations); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	if err := seedPackages(ctx, tx, dialect, seed.Packages); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed database: commit tx: %w", err)
	}

	return nil
}

func seedLocations(ctx context.Context, tx *sql.Tx, dialect Dialect, locs []seedfile.LocationSeed) error {
	locStmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO locations (address, seq, name, zip)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (address) DO UPDATE
	SET seq = excluded.seq,
		name = excluded.name,
		zip = excluded.zip;
	`))
	if err != nil {
		return fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer locStmt.Close()

	for i, l := range locs {
		if _, err := locStmt.ExecContext(ctx, l.Address, i, l.Name, l.Zip); err != nil {
			return fmt.Errorf("seed locations: insert address=%q: %w", l.Address, err)
		}
	}

	distStmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO distances (origin, destination, miles)
	VALUES (?, ?, ?)
	ON CONFLICT (origin, destination) DO UPDATE
	SET miles = excluded.miles;
	`))
	if err != nil {
		return fmt.Errorf("seed distances: prepare insert: %w", err)
	}
	defer distStmt.Close()

	for _, l := range locs {
		for dest, miles := range l.Distances {
			if _, err := distStmt.ExecContext(ctx, l.Address, dest, miles); err != nil {
				return fmt.Errorf("seed distances: insert %q -> %q: %w", l.Address, dest, err)
			}
		}
	}

	return nil
}

func seedPackages(ctx context.Context, tx *sql.Tx, dialect Dialect, pkgs []seedfile.PackageSeed) error {
	pkgStmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO packages (
		package_id,
		seq,
		address,
		city,
		state,
		zip,
		deadline_minutes,
		weight_kg,
		required_truck,
		release_minutes
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (package_id) DO UPDATE
	SET seq = excluded.seq,
		address = excluded.address,
		city = excluded.city,
		state = excluded.state,
		zip = excluded.zip,
		deadline_minutes = excluded.deadline_minutes,
		weight_kg = excluded.weight_kg,
		required_truck = excluded.required_truck,
		release_minutes = excluded.release_minutes;
	`))
	if err != nil {
		return fmt.Errorf("seed packages: prepare insert: %w", err)
	}
	defer pkgStmt.Close()

	for i, p := range pkgs {
		deadline, err := minutes(p.DeadlineOffset())
		if err != nil {
			return fmt.Errorf("seed packages: %w", err)
		}
		release, err := minutes(p.ReleaseOffset())
		if err != nil {
			return fmt.Errorf("seed packages: %w", err)
		}

		if _, err := pkgStmt.ExecContext(ctx,
			p.PackageID, i, p.Address, p.City, p.State, p.Zip,
			deadline, p.WeightKg, p.RequiredTruck, release,
		); err != nil {
			return fmt.Errorf("seed packages: insert package_id=%s: %w", p.PackageID, err)
		}
	}

	clearStmt, err := tx.PrepareContext(ctx, dialect.rebind(`DELETE FROM package_siblings WHERE package_id = ?;`))
	if err != nil {
		return fmt.Errorf("seed siblings: prepare delete: %w", err)
	}
	defer clearStmt.Close()

	sibStmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO package_siblings (package_id, sibling_id)
	VALUES (?, ?)
	ON CONFLICT (package_id, sibling_id) DO NOTHING;
	`))
	if err != nil {
		return fmt.Errorf("seed siblings: prepare insert: %w", err)
	}
	defer sibStmt.Close()

	for _, p := range pkgs {
		if _, err := clearStmt.ExecContext(ctx, p.PackageID); err != nil {
			return fmt.Errorf("seed siblings: clear package_id=%s: %w", p.PackageID, err)
		}
		for _, sib := range p.MustShipWith {
			if _, err := sibStmt.ExecContext(ctx, p.PackageID, sib); err != nil {
				return fmt.Errorf("seed siblings: insert %s -> %s: %w", p.PackageID, sib, err)
			}
		}
	}

	return nil
}

// minutes stores a time-of-day offset as whole minutes, NULL when absent.
func minutes(offset time.Duration, ok bool, err error) (sql.NullInt64, error) {
	if err != nil || !ok {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: int64(offset / time.Minute), Valid: true}, nil
}
