package distance

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DepotAlias always resolves to the first location of a distance table.
const DepotAlias = "HUB"

var punct = regexp.MustCompile(`[^\w\s]`)

// NormalizeAddress lowercases, strips punctuation and collapses whitespace so
// that differently formatted spellings of one address compare equal.
func NormalizeAddress(addr string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(addr), " "))
	norm = punct.ReplaceAllString(norm, "")
	return strings.Join(strings.Fields(norm), " ")
}

// streetKey is the first three tokens of the normalized address (house number and street).
func streetKey(addr string) string {
	tokens := strings.Fields(NormalizeAddress(addr))
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	return strings.Join(tokens, " ")
}

// TableDistanceProvider serves distances from a symmetric mileage table.
//
// The table is a CSV file whose header row lists the location labels (the
// first cell is ignored) and whose following rows hold a label followed by
// distances to the locations in header order. Only the lower triangle needs
// to be filled; blank cells are mirrored from the opposite half. The first
// location is the depot.
type TableDistanceProvider struct {
	labels []string
	norm   []string
	miles  [][]float64
}

func NewTableDistanceProvider(r io.Reader) (*TableDistanceProvider, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("distance table: read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("distance table: expected a header row and at least one location row")
	}

	labels := make([]string, 0, len(records[0])-1)
	for _, cell := range records[0][1:] {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		labels = append(labels, cell)
	}
	n := len(labels)
	if n == 0 {
		return nil, errors.New("distance table: header lists no locations")
	}
	if len(records)-1 < n {
		return nil, fmt.Errorf("distance table: header lists %d locations but only %d rows", n, len(records)-1)
	}

	miles := make([][]float64, n)
	set := make([][]bool, n)
	for i := range miles {
		miles[i] = make([]float64, n)
		set[i] = make([]bool, n)
	}

	for i := 0; i < n; i++ {
		row := records[i+1]
		for j := 0; j < n && j+1 < len(row); j++ {
			cell := strings.TrimSpace(row[j+1])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("distance table: row %d col %d: %w", i+2, j+2, err)
			}
			if v < 0 {
				return nil, fmt.Errorf("distance table: row %d col %d: negative distance %v", i+2, j+2, v)
			}
			miles[i][j] = v
			set[i][j] = true
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if set[i][j] || i == j {
				continue
			}
			if !set[j][i] {
				return nil, fmt.Errorf("distance table: no distance between %q and %q", labels[i], labels[j])
			}
			miles[i][j] = miles[j][i]
		}
	}

	norm := make([]string, n)
	for i, l := range labels {
		norm[i] = NormalizeAddress(l)
	}

	return &TableDistanceProvider{labels: labels, norm: norm, miles: miles}, nil
}

// LoadTableDistanceProvider reads a distance table from a CSV file.
func LoadTableDistanceProvider(path string) (*TableDistanceProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("distance table: open %q: %w", path, err)
	}
	defer f.Close()

	return NewTableDistanceProvider(f)
}

// Locations returns the table labels in file order.
func (t *TableDistanceProvider) Locations() []string {
	return append([]string(nil), t.labels...)
}

// Resolve maps an address to its table index: exact normalized match first,
// then a label containing the same house number and street.
func (t *TableDistanceProvider) Resolve(addr string) (int, error) {
	if strings.EqualFold(strings.TrimSpace(addr), DepotAlias) {
		return 0, nil
	}
	na := NormalizeAddress(addr)
	if na == "" {
		return 0, errors.New("resolve address: empty address")
	}
	for i, l := range t.norm {
		if l == na {
			return i, nil
		}
	}

	sk := streetKey(addr)
	for i, l := range t.norm {
		if strings.Contains(l, sk) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("resolve address: %q not found in distance table", addr)
}

// Distance is safe for concurrent use once the table is loaded.
func (t *TableDistanceProvider) Distance(ctx context.Context, origin, destination string) (float64, error) {
	i, err := t.Resolve(origin)
	if err != nil {
		return 0, fmt.Errorf("table distance: origin: %w", err)
	}
	j, err := t.Resolve(destination)
	if err != nil {
		return 0, fmt.Errorf("table distance: destination: %w", err)
	}
	return t.miles[i][j], nil
}
