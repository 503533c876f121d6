package repositories

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/ports"
	"strconv"
	"strings"
)

var _ ports.PackageRepository = (*CSVPackageRepository)(nil)

const packageColumns = 8

// CSV-backed implementation of the PackageRepository port.
// Columns: id, street, city, state, zip, deadline, weight, note. The first row is a header.
type CSVPackageRepository struct {
	Path string
	Day  domain.Day
}

func NewCSVPackageRepository(path string, day domain.Day) *CSVPackageRepository {
	return &CSVPackageRepository{Path: path, Day: day}
}

// Return all packages listed in the file, in file order.
func (c *CSVPackageRepository) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	if strings.TrimSpace(c.Path) == "" {
		return nil, errors.New("csv package repository: path is empty")
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("list packages: open %q: %w", c.Path, err)
	}
	defer f.Close()

	return ParsePackagesCSV(f, c.Day)
}

// ParsePackagesCSV reads package rows and resolves their destinations and deadlines.
func ParsePackagesCSV(r io.Reader, day domain.Day) ([]*domain.Package, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse packages: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("parse packages: missing header row")
	}

	packages := make([]*domain.Package, 0, len(records)-1)
	seen := make(map[int]struct{}, len(records)-1)
	for i, row := range records[1:] {
		line := i + 2
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < packageColumns-1 {
			return nil, fmt.Errorf("parse packages: line %d: expected %d columns, got %d", line, packageColumns, len(row))
		}

		pkg, err := packageFromRow(row, day)
		if err != nil {
			return nil, fmt.Errorf("parse packages: line %d: %w", line, err)
		}
		if _, dup := seen[pkg.PackageID]; dup {
			return nil, fmt.Errorf("parse packages: line %d: duplicate package id %d", line, pkg.PackageID)
		}
		seen[pkg.PackageID] = struct{}{}
		packages = append(packages, pkg)
	}

	return packages, nil
}

func packageFromRow(row []string, day domain.Day) (*domain.Package, error) {
	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	id, err := strconv.Atoi(field(0))
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid package id %q", field(0))
	}

	deadline, err := day.ParseDeadline(field(5))
	if err != nil {
		return nil, fmt.Errorf("package %d: %w", id, err)
	}

	var weight float64
	if w := field(6); w != "" {
		weight, err = strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, fmt.Errorf("package %d: invalid weight %q", id, w)
		}
	}

	return newPackage(id, field(1), field(2), field(3), field(4), deadline, weight, field(7))
}

// newPackage builds a package at the depot, rejecting records without an address.
func newPackage(
	id int,
	street, city, state, zip string,
	deadline domain.Deadline,
	weight float64,
	note string,
) (*domain.Package, error) {
	if street == "" {
		return nil, fmt.Errorf("package %d: street cannot be empty", id)
	}

	dest := domain.FormatAddress(street, city, state, zip)
	return &domain.Package{
		PackageID:   id,
		Street:      street,
		City:        city,
		State:       state,
		Zip:         zip,
		Destination: dest,
		Deadline:    deadline,
		Weight:      weight,
		Note:        note,
	}, nil
}
