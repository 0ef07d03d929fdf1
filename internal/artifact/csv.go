package artifact

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/homedex/internal/domain/distance"
	"github.com/kailas-cloud/homedex/internal/domain/geo"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
	"github.com/kailas-cloud/homedex/internal/domain/similarity"
)

// CSVPaths locates the CSV exports a bundle is built from.
//
// Distances come either from a wide table (Distances) or are computed from
// landmark and property coordinates (Landmarks plus Coordinates).
type CSVPaths struct {
	Names       string                     // one "name" column, catalog order
	Similarity  [similarity.Signals]string // square matrices without header
	Distances   string                     // property column, then one column per location
	Landmarks   string                     // name, latitude, longitude
	Coordinates string                     // property, latitude, longitude
	Listings    string                     // optional analytics dataset
}

// Listing columns accepted in the listings CSV, with their aliases.
var listingColumns = map[string][]string{
	"property_type":   {"property_type"},
	"society":         {"society"},
	"sector":          {"sector"},
	"price":           {"price"},
	"price_per_sqft":  {"price_per_sqft"},
	"built_up_area":   {"built_up_area"},
	"bedrooms":        {"bedrooms", "bedRoom"},
	"bathrooms":       {"bathrooms", "bathroom"},
	"balcony":         {"balcony"},
	"luxury_score":    {"luxury_score"},
	"furnishing_type": {"furnishing_type"},
	"age_possession":  {"age_possession", "agePossession"},
	"latitude":        {"latitude"},
	"longitude":       {"longitude"},
}

// ReadCSV reads bundle sources from CSV files.
func ReadCSV(p *CSVPaths) (*Source, error) {
	names, err := readNames(p.Names)
	if err != nil {
		return nil, err
	}
	src := &Source{Names: names}

	for i, path := range p.Similarity {
		if path == "" {
			return nil, fmt.Errorf("similarity matrix %d: path is required", i+1)
		}
		m, err := readSquare(path, len(names))
		if err != nil {
			return nil, fmt.Errorf("similarity matrix %d: %w", i+1, err)
		}
		src.Matrices[i] = m
	}

	switch {
	case p.Distances != "":
		src.Distances, err = readWideDistances(p.Distances)
	case p.Landmarks != "" && p.Coordinates != "":
		src.Distances, err = computeDistances(p.Landmarks, p.Coordinates)
	default:
		err = errors.New("distances: either a distance table or landmarks with coordinates is required")
	}
	if err != nil {
		return nil, err
	}

	if p.Listings != "" {
		src.Listings, err = readListings(p.Listings)
		if err != nil {
			return nil, err
		}
	}
	return src, nil
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
}

func readNames(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("names: path is required")
	}
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("names %s: empty file", path)
	}
	col := indexOf(rows[0], "name")
	if col < 0 {
		return nil, fmt.Errorf("names %s: missing \"name\" column", path)
	}
	names := make([]string, 0, len(rows)-1)
	for i, rec := range rows[1:] {
		if col >= len(rec) {
			return nil, fmt.Errorf("names %s line %d: missing name", path, i+2)
		}
		names = append(names, rec[col])
	}
	return names, nil
}

func readSquare(path string, n int) ([]float64, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) != n {
		return nil, fmt.Errorf("%s: expected %d rows, got %d", path, n, len(rows))
	}
	data := make([]float64, 0, n*n)
	for i, rec := range rows {
		if len(rec) != n {
			return nil, fmt.Errorf("%s line %d: expected %d values, got %d", path, i+1, n, len(rec))
		}
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%s cell (%d,%d): %w", path, i, j, err)
			}
			data = append(data, v)
		}
	}
	return data, nil
}

// readWideDistances reads a property-by-location table. Empty and NaN cells
// are unknown distances.
func readWideDistances(path string) ([]distance.Entry, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("distances %s: header needs a property column and at least one location", path)
	}
	locations := rows[0][1:]
	var entries []distance.Entry
	for i, rec := range rows[1:] {
		if len(rec) != len(rows[0]) {
			return nil, fmt.Errorf("distances %s line %d: expected %d fields, got %d",
				path, i+2, len(rows[0]), len(rec))
		}
		for j, cell := range rec[1:] {
			v, ok, err := parseOptional(cell)
			if err != nil {
				return nil, fmt.Errorf("distances %s line %d column %q: %w", path, i+2, locations[j], err)
			}
			if ok {
				entries = append(entries, distance.Entry{Location: locations[j], Property: rec[0], Meters: v})
			}
		}
	}
	return entries, nil
}

// computeDistances measures the great-circle distance between every landmark
// and every property with known coordinates.
func computeDistances(landmarksPath, coordsPath string) ([]distance.Entry, error) {
	landmarks, err := readPoints(landmarksPath)
	if err != nil {
		return nil, err
	}
	props, err := readPoints(coordsPath)
	if err != nil {
		return nil, err
	}
	entries := make([]distance.Entry, 0, len(landmarks)*len(props))
	for _, lm := range landmarks {
		for _, p := range props {
			entries = append(entries, distance.Entry{
				Location: lm.name,
				Property: p.name,
				Meters:   lm.point.DistanceMeters(p.point),
			})
		}
	}
	return entries, nil
}

type namedPoint struct {
	name  string
	point geo.Point
}

// readPoints reads name, latitude, longitude rows after a header.
// Rows with a missing coordinate are skipped.
func readPoints(path string) ([]namedPoint, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	latCol, lonCol := indexOf(rows[0], "latitude"), indexOf(rows[0], "longitude")
	if latCol < 1 || lonCol < 1 {
		return nil, fmt.Errorf("%s: header must be name, latitude, longitude", path)
	}
	var out []namedPoint
	for i, rec := range rows[1:] {
		if len(rec) != len(rows[0]) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", path, i+2, len(rows[0]), len(rec))
		}
		lat, okLat, err := parseOptional(rec[latCol])
		if err != nil {
			return nil, fmt.Errorf("%s line %d latitude: %w", path, i+2, err)
		}
		lon, okLon, err := parseOptional(rec[lonCol])
		if err != nil {
			return nil, fmt.Errorf("%s line %d longitude: %w", path, i+2, err)
		}
		if !okLat || !okLon {
			continue
		}
		pt := geo.Point{Lat: lat, Lon: lon}
		if err := pt.Validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		out = append(out, namedPoint{name: rec[0], point: pt})
	}
	return out, nil
}

func readListings(path string) ([]listing.Listing, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("listings %s: empty file", path)
	}
	cols := make(map[string]int, len(listingColumns))
	for key, aliases := range listingColumns {
		cols[key] = -1
		for _, a := range aliases {
			if i := indexOf(rows[0], a); i >= 0 {
				cols[key] = i
				break
			}
		}
	}

	out := make([]listing.Listing, 0, len(rows)-1)
	for i, rec := range rows[1:] {
		line := i + 2
		str := func(key string) string {
			if c := cols[key]; c >= 0 && c < len(rec) {
				return strings.TrimSpace(rec[c])
			}
			return ""
		}
		var rowErr error
		num := func(key string) float64 {
			v, ok, err := parseOptional(str(key))
			if err != nil && rowErr == nil {
				rowErr = fmt.Errorf("listings %s line %d column %s: %w", path, line, key, err)
			}
			if !ok {
				return math.NaN()
			}
			return v
		}
		l := listing.Listing{
			PropertyType:   str("property_type"),
			Society:        str("society"),
			Sector:         str("sector"),
			Price:          num("price"),
			PricePerSqft:   num("price_per_sqft"),
			BuiltUpArea:    num("built_up_area"),
			Bedrooms:       num("bedrooms"),
			Bathrooms:      num("bathrooms"),
			Balconies:      str("balcony"),
			LuxuryScore:    num("luxury_score"),
			FurnishingType: str("furnishing_type"),
			AgePossession:  str("age_possession"),
			Latitude:       num("latitude"),
			Longitude:      num("longitude"),
		}
		if rowErr != nil {
			return nil, rowErr
		}
		out = append(out, l)
	}
	return out, nil
}

// parseOptional parses a numeric cell. Empty and NaN cells report ok=false.
func parseOptional(cell string) (float64, bool, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, err //nolint:wrapcheck // callers add position context
	}
	return v, true, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
