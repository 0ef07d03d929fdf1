package catalog

import (
	"context"
	"slices"

	domcat "github.com/kailas-cloud/homedex/internal/domain/catalog"
	"github.com/kailas-cloud/homedex/internal/domain/distance"
	"github.com/kailas-cloud/homedex/internal/domain/estimate"
)

// Service lists the names a client may pass to the other endpoints.
type Service struct {
	properties []string
	locations  []string
	levels     LevelSource
}

// New creates a catalog service. Sorted lists are computed once.
// levels can be nil when no estimator is configured.
func New(cat *domcat.Catalog, distances *distance.Table, levels LevelSource) *Service {
	return &Service{
		properties: cat.Sorted(),
		locations:  distances.Locations(),
		levels:     levels,
	}
}

// Properties returns property names sorted ascending.
func (s *Service) Properties(_ context.Context) []string { return slices.Clone(s.properties) }

// Locations returns location names sorted ascending.
func (s *Service) Locations(_ context.Context) []string { return slices.Clone(s.locations) }

// Levels returns categorical levels per estimator column.
func (s *Service) Levels(_ context.Context) estimate.Levels {
	if s.levels == nil {
		return estimate.Levels{}
	}
	return s.levels.Levels()
}
