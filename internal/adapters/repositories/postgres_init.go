package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
)

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS packages (
			package_id INTEGER PRIMARY KEY,
			street TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			zip TEXT NOT NULL,
			deadline_minutes INTEGER NOT NULL,
			end_of_day BOOLEAN NOT NULL DEFAULT FALSE,
			weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT ''
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS distance_cache (
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			miles DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (origin, destination)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			address TEXT PRIMARY KEY,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL
		);
		`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}

// Upsert packages into the Postgres packages table.
func SeedPostgresPackages(db *sql.DB, packages []*domain.Package) error {
	query := `
	INSERT INTO packages (
		package_id, street, city, state, zip,
		deadline_minutes, end_of_day, weight, note
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (package_id) DO UPDATE
	SET street = EXCLUDED.street,
		city = EXCLUDED.city,
		state = EXCLUDED.state,
		zip = EXCLUDED.zip,
		deadline_minutes = EXCLUDED.deadline_minutes,
		end_of_day = EXCLUDED.end_of_day,
		weight = EXCLUDED.weight,
		note = EXCLUDED.note;
	`
	return seed(db, query, packages)
}
