// Package directory answers name queries against the static retailer store
// dataset. The dataset is small (hundreds to low thousands of rows) and read
// fresh on each query; no index is kept.
package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/retailradar/event-insights/internal/domain"
)

// Directory reads the store dataset at the configured path.
type Directory struct {
	path string
}

// New creates a Directory over the CSV file at path. The file is not opened
// until the first query.
func New(path string) *Directory {
	return &Directory{path: path}
}

// Search returns every store whose name contains term, ignoring case. A
// blank term matches nothing. Load failures return
// domain.ErrDatasetUnavailable; callers may treat that as zero matches.
func (d *Directory) Search(term string) ([]domain.StoreRecord, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	records, err := d.load()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	var matches []domain.StoreRecord
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), needle) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// LookupByName returns the store whose name matches exactly, case-sensitive.
// A missing store is domain.ErrNotFound, distinct from a load failure.
func (d *Directory) LookupByName(name string) (domain.StoreRecord, error) {
	records, err := d.load()
	if err != nil {
		return domain.StoreRecord{}, err
	}

	for _, rec := range records {
		if rec.Name == name {
			return rec, nil
		}
	}
	return domain.StoreRecord{}, fmt.Errorf("store %q: %w", name, domain.ErrNotFound)
}

// Check reports whether the dataset is currently readable. Used by the
// readiness probe.
func (d *Directory) Check() error {
	_, err := d.load()
	return err
}

func (d *Directory) load() ([]domain.StoreRecord, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrDatasetUnavailable, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"name", "street_address", "city", "state", "zip_code", "latitude", "longitude"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrDatasetUnavailable, required)
		}
	}

	var records []domain.StoreRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", domain.ErrDatasetUnavailable, err)
		}

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		lat, latErr := strconv.ParseFloat(field("latitude"), 64)
		lon, lonErr := strconv.ParseFloat(field("longitude"), 64)
		if latErr != nil || lonErr != nil {
			continue // rows without usable coordinates cannot be resolved
		}

		records = append(records, domain.StoreRecord{
			Name:          field("name"),
			StreetAddress: field("street_address"),
			City:          field("city"),
			State:         field("state"),
			Zip:           field("zip_code"),
			Lat:           lat,
			Lon:           lon,
			Phone:         field("phone_number_1"),
			Hours:         field("open_hours"),
			URL:           field("url"),
		})
	}
	return records, nil
}
