package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/domain/catalog"
	"github.com/kailas-cloud/homedex/internal/domain/distance"
	"github.com/kailas-cloud/homedex/internal/domain/listing"
	"github.com/kailas-cloud/homedex/internal/domain/similarity"
)

// Bundle holds every precomputed artifact, read-only after Load.
type Bundle struct {
	Catalog   catalog.Catalog
	Matrices  [similarity.Signals]similarity.Matrix
	Distances distance.Table
	Listings  []listing.Listing // nil when the bundle has no listings file
}

// Load reads and validates the bundle in dir.
// All failures wrap domain.ErrInvalidArtifact.
func Load(dir string) (*Bundle, error) {
	m, err := readManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArtifact, err)
	}
	b, err := load(dir, &m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArtifact, err)
	}
	return b, nil
}

func load(dir string, m *Manifest) (*Bundle, error) {
	cat, err := loadCatalog(filepath.Join(dir, m.Catalog))
	if err != nil {
		return nil, err
	}

	b := &Bundle{Catalog: cat}
	for i, sf := range m.Similarity {
		name := sf.Name
		if name == "" {
			name = fmt.Sprintf("signal_%d", i+1)
		}
		mat, err := loadMatrix(filepath.Join(dir, sf.File), name, cat.Len())
		if err != nil {
			return nil, err
		}
		b.Matrices[i] = mat
	}

	rows, err := parquet.ReadFile[distanceRow](filepath.Join(dir, m.Distances))
	if err != nil {
		return nil, fmt.Errorf("read distances: %w", err)
	}
	entries := make([]distance.Entry, len(rows))
	for i, r := range rows {
		entries[i] = distance.Entry{Location: r.Location, Property: r.Property, Meters: r.Meters}
	}
	b.Distances, err = distance.New(&b.Catalog, entries)
	if err != nil {
		return nil, fmt.Errorf("distances: %w", err)
	}

	if m.Listings != "" {
		lrows, err := parquet.ReadFile[listingRow](filepath.Join(dir, m.Listings))
		if err != nil {
			return nil, fmt.Errorf("read listings: %w", err)
		}
		b.Listings = make([]listing.Listing, len(lrows))
		for i := range lrows {
			b.Listings[i] = lrows[i].toDomain()
		}
	}

	return b, nil
}

func loadCatalog(path string) (catalog.Catalog, error) {
	rows, err := parquet.ReadFile[catalogRow](path)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	names := make([]string, len(rows))
	filled := make([]bool, len(rows))
	for _, r := range rows {
		i := int(r.Index)
		if i < 0 || i >= len(rows) || filled[i] {
			return catalog.Catalog{}, fmt.Errorf("catalog: index %d out of range or repeated", r.Index)
		}
		names[i] = r.Name
		filled[i] = true
	}
	cat, err := catalog.New(names)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("catalog: %w", err)
	}
	return cat, nil
}

func loadMatrix(path, name string, n int) (similarity.Matrix, error) {
	rows, err := parquet.ReadFile[similarityRow](path)
	if err != nil {
		return similarity.Matrix{}, fmt.Errorf("read matrix %q: %w", name, err)
	}
	if len(rows) != n*n {
		return similarity.Matrix{}, fmt.Errorf("matrix %q: expected %d cells for catalog of %d, got %d",
			name, n*n, n, len(rows))
	}
	data := make([]float64, n*n)
	filled := make([]bool, n*n)
	for _, r := range rows {
		i, j := int(r.Row), int(r.Col)
		if i < 0 || i >= n || j < 0 || j >= n {
			return similarity.Matrix{}, fmt.Errorf("matrix %q: cell (%d,%d) out of range", name, i, j)
		}
		k := i*n + j
		if filled[k] {
			return similarity.Matrix{}, fmt.Errorf("matrix %q: cell (%d,%d) repeated", name, i, j)
		}
		data[k] = r.Score
		filled[k] = true
	}
	mat, err := similarity.New(name, n, data)
	if err != nil {
		return similarity.Matrix{}, fmt.Errorf("validate matrix: %w", err)
	}
	return mat, nil
}

// Source is the in-memory content of a bundle to be written.
type Source struct {
	Names     []string
	Matrices  [similarity.Signals][]float64 // row-major n*n
	Distances []distance.Entry
	Listings  []listing.Listing
}

// Write stores src as a version 1 bundle in dir, creating it if needed.
// The bundle is validated by loading it back.
func Write(dir string, src *Source) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}
	m := DefaultManifest(len(src.Listings) > 0)

	crow := make([]catalogRow, len(src.Names))
	for i, n := range src.Names {
		crow[i] = catalogRow{Index: int32(i), Name: n} //nolint:gosec // catalog sizes are far below 2^31
	}
	if err := parquet.WriteFile(filepath.Join(dir, m.Catalog), crow); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	n := len(src.Names)
	for s, data := range src.Matrices {
		if len(data) != n*n {
			return fmt.Errorf("matrix %d: expected %d values, got %d", s+1, n*n, len(data))
		}
		rows := make([]similarityRow, 0, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				rows = append(rows, similarityRow{Row: int32(i), Col: int32(j), Score: data[i*n+j]}) //nolint:gosec // see above
			}
		}
		if err := parquet.WriteFile(filepath.Join(dir, m.Similarity[s].File), rows); err != nil {
			return fmt.Errorf("write matrix %d: %w", s+1, err)
		}
	}

	drows := make([]distanceRow, len(src.Distances))
	for i, e := range src.Distances {
		drows[i] = distanceRow{Location: e.Location, Property: e.Property, Meters: e.Meters}
	}
	if err := parquet.WriteFile(filepath.Join(dir, m.Distances), drows); err != nil {
		return fmt.Errorf("write distances: %w", err)
	}

	if m.Listings != "" {
		lrows := make([]listingRow, len(src.Listings))
		for i := range src.Listings {
			lrows[i] = listingFromDomain(&src.Listings[i])
		}
		if err := parquet.WriteFile(filepath.Join(dir, m.Listings), lrows); err != nil {
			return fmt.Errorf("write listings: %w", err)
		}
	}

	if err := writeManifest(dir, m); err != nil {
		return err
	}

	if _, err := Load(dir); err != nil {
		return fmt.Errorf("verify written bundle: %w", err)
	}
	return nil
}
