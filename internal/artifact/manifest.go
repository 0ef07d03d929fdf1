package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/homedex/internal/domain/similarity"
)

// FormatVersion is the only bundle format version this build reads.
const FormatVersion = 1

// ManifestFile is the manifest file name inside a bundle directory.
const ManifestFile = "manifest.yaml"

// Manifest describes the files of an artifact bundle.
type Manifest struct {
	Version    int          `yaml:"version"`
	Catalog    string       `yaml:"catalog"`
	Similarity []SignalSpec `yaml:"similarity"`
	Distances  string       `yaml:"distances"`
	Listings   string       `yaml:"listings,omitempty"`
}

// SignalSpec names one similarity matrix file.
type SignalSpec struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// DefaultManifest returns the file layout written by Write.
func DefaultManifest(withListings bool) Manifest {
	m := Manifest{
		Version: FormatVersion,
		Catalog: "catalog.parquet",
		Similarity: []SignalSpec{
			{Name: "text", File: "sim_text.parquet"},
			{Name: "location", File: "sim_location.parquet"},
			{Name: "amenity", File: "sim_amenity.parquet"},
		},
		Distances: "distances.parquet",
	}
	if withListings {
		m.Listings = "listings.parquet"
	}
	return m
}

// Validate checks version and required entries.
func (m *Manifest) Validate() error {
	if m.Version != FormatVersion {
		return fmt.Errorf("unsupported bundle version %d (want %d)", m.Version, FormatVersion)
	}
	if m.Catalog == "" {
		return fmt.Errorf("manifest: catalog is required")
	}
	if len(m.Similarity) != similarity.Signals {
		return fmt.Errorf("manifest: expected %d similarity files, got %d", similarity.Signals, len(m.Similarity))
	}
	for i, s := range m.Similarity {
		if s.File == "" {
			return fmt.Errorf("manifest: similarity[%d].file is required", i)
		}
	}
	if m.Distances == "" {
		return fmt.Errorf("manifest: distances is required")
	}
	return nil
}

func readManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func writeManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
