package recommend

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/domain/catalog"
	"github.com/kailas-cloud/homedex/internal/domain/similarity"
)

// DefaultTopN is the number of recommendations when the caller sets none.
const DefaultTopN = 5

// Service ranks catalog properties by composite similarity to a query property.
// It holds only immutable data and is safe for concurrent use.
type Service struct {
	catalog  *catalog.Catalog
	matrices [similarity.Signals]similarity.Matrix
	weights  similarity.Weights
}

// New creates a recommendation service. Every matrix must match the catalog size.
func New(
	cat *catalog.Catalog, matrices [similarity.Signals]similarity.Matrix, weights similarity.Weights,
) (*Service, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("composite weights: %w", err)
	}
	for i := range matrices {
		if matrices[i].Size() != cat.Len() {
			return nil, fmt.Errorf("matrix %q has size %d, catalog has %d",
				matrices[i].Name(), matrices[i].Size(), cat.Len())
		}
	}
	return &Service{catalog: cat, matrices: matrices, weights: weights}, nil
}

// Weights returns the composite weights in use.
func (s *Service) Weights() similarity.Weights { return s.weights }

// Recommend returns up to topN properties most similar to property, best first.
// The property itself is never part of the result.
func (s *Service) Recommend(_ context.Context, property string, topN int) ([]domain.Recommendation, error) {
	if topN <= 0 {
		return nil, domain.InvalidArgument("top_n must be positive, got %d", topN)
	}
	q, ok := s.catalog.IndexOf(property)
	if !ok {
		return nil, domain.NewNotFound("property", property)
	}

	row := similarity.CompositeRow(s.matrices, s.weights, q)
	ranked := rankExcluding(row, q, topN)

	out := make([]domain.Recommendation, len(ranked))
	for i, r := range ranked {
		out[i] = domain.Recommendation{Name: s.catalog.Name(r.index), Score: r.score}
	}
	return out, nil
}
