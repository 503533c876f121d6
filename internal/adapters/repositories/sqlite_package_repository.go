package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"time"
)

var (
	_ ports.PackageRepository = (*SqlitePackageRepository)(nil)
	_ ports.PackageRepository = (*SQLPackageRepository)(nil)
)

const listPackagesQuery = `
	SELECT
		package_id,
		street,
		city,
		state,
		zip,
		deadline_minutes,
		end_of_day,
		weight,
		note
	FROM packages
	ORDER BY package_id;
	`

// SQLite-backed implementation of the PackageRepository port.
type SqlitePackageRepository struct{ DB *sql.DB }

func NewSqlitePackageRepository(db *sql.DB) *SqlitePackageRepository {
	return &SqlitePackageRepository{DB: db}
}

// Return all packages stored in the database.
func (s *SqlitePackageRepository) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite package repository: DB is nil")
	}
	return listPackages(ctx, s.DB)
}

// Postgres-backed implementation of the PackageRepository port (pgx driver).
type SQLPackageRepository struct{ DB *sql.DB }

func NewSQLPackageRepository(db *sql.DB) *SQLPackageRepository {
	return &SQLPackageRepository{DB: db}
}

// Return all packages stored in the database.
func (s *SQLPackageRepository) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	if s.DB == nil {
		return nil, errors.New("sql package repository: DB is nil")
	}
	return listPackages(ctx, s.DB)
}

func listPackages(ctx context.Context, db *sql.DB) ([]*domain.Package, error) {
	rows, err := db.QueryContext(ctx, listPackagesQuery)
	if err != nil {
		return nil, fmt.Errorf("list packages: query packages table: %w", err)
	}
	defer rows.Close()

	packages := make([]*domain.Package, 0, 64)
	for rows.Next() {
		var (
			id                       int
			street, city, state, zip string
			minutes                  int
			eod                      bool
			weight                   float64
			note                     string
		)
		err := rows.Scan(&id, &street, &city, &state, &zip, &minutes, &eod, &weight, &note)
		if err != nil {
			return nil, fmt.Errorf("list packages: scan row: %w", err)
		}

		deadline := domain.Deadline{At: time.Duration(minutes) * time.Minute, EndOfDay: eod}
		pkg, err := newPackage(id, street, city, state, zip, deadline, weight, note)
		if err != nil {
			return nil, fmt.Errorf("list packages: %w", err)
		}
		packages = append(packages, pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packages: row iteration: %w", err)
	}

	return packages, nil
}
