package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"parcel-dispatch-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPackagesQuery := `
	CREATE TABLE IF NOT EXISTS packages (
		package_id INTEGER PRIMARY KEY,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip TEXT NOT NULL,
		deadline_minutes INTEGER NOT NULL,
		end_of_day INTEGER NOT NULL DEFAULT 0,
		weight REAL NOT NULL DEFAULT 0,
		note TEXT NOT NULL DEFAULT ''
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        miles REAL NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
    ON distance_cache(destination, origin);
	`

	statements := []string{
		createPackagesQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the database with package data from a CSV file.
func SeedFromCSV(db *sql.DB, csvPath string, day domain.Day) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("seed packages: open %q: %w", csvPath, err)
	}
	defer f.Close()

	packages, err := ParsePackagesCSV(f, day)
	if err != nil {
		return fmt.Errorf("seed packages: %w", err)
	}

	return SeedPackages(db, packages)
}

// Insert or replace packages in the SQLite packages table.
func SeedPackages(db *sql.DB, packages []*domain.Package) error {
	query := `
	INSERT OR REPLACE INTO packages (
		package_id,
		street,
		city,
		state,
		zip,
		deadline_minutes,
		end_of_day,
		weight,
		note
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	return seed(db, query, packages)
}

func seed(db *sql.DB, query string, packages []*domain.Package) error {
	if db == nil {
		return errors.New("seed packages: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed packages: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed packages: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range packages {
		if p.PackageID <= 0 {
			return fmt.Errorf("seed packages: invalid packageID %d", p.PackageID)
		}
		_, err := stmt.Exec(
			p.PackageID,
			p.Street,
			p.City,
			p.State,
			p.Zip,
			int(p.Deadline.At.Minutes()),
			p.Deadline.EndOfDay,
			p.Weight,
			p.Note,
		)
		if err != nil {
			return fmt.Errorf("seed packages: insert package_id=%d: %w", p.PackageID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed packages: commit tx: %w", err)
	}

	return nil
}
