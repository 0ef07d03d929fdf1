package nearby

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/domain/catalog"
	"github.com/kailas-cloud/homedex/internal/domain/distance"
)

// Service filters properties by precomputed distance to a named location.
type Service struct {
	catalog   *catalog.Catalog
	distances *distance.Table
}

// New creates a proximity service.
func New(cat *catalog.Catalog, distances *distance.Table) *Service {
	return &Service{catalog: cat, distances: distances}
}

// Nearby returns properties strictly closer than radiusKm to location,
// nearest first. Properties with an unknown distance are skipped.
// An empty result is not an error.
func (s *Service) Nearby(_ context.Context, location string, radiusKm float64) ([]domain.NearbyProperty, error) {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return nil, domain.InvalidArgument("radius_km must be a positive number, got %g", radiusKm)
	}
	column, ok := s.distances.Column(location)
	if !ok {
		return nil, domain.NewNotFound("location", location)
	}

	threshold := radiusKm * 1000
	within := make([]distance.Known, 0, len(column))
	for _, k := range column {
		if k.Meters < threshold {
			within = append(within, k)
		}
	}

	// column is in catalog order, so a stable sort breaks ties by catalog index.
	slices.SortStableFunc(within, func(a, b distance.Known) int {
		return cmp.Compare(a.Meters, b.Meters)
	})

	out := make([]domain.NearbyProperty, len(within))
	for i, k := range within {
		out[i] = domain.NearbyProperty{Name: s.catalog.Name(k.Index), Meters: k.Meters}
	}
	return out, nil
}

// Locations returns every location name sorted ascending.
func (s *Service) Locations() []string { return s.distances.Locations() }
