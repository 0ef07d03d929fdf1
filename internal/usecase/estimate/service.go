package estimate

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/homedex/internal/domain"
	domest "github.com/kailas-cloud/homedex/internal/domain/estimate"
)

// DefaultBand is the fixed half-width of the returned price range.
// It is a placeholder, not a model-derived confidence interval.
const DefaultBand = 0.22

// Service turns a pipeline's log-space prediction into a price range.
type Service struct {
	pipeline Pipeline
	levels   domest.Levels
	band     float64
}

// New creates an estimate service. levels are the categorical levels the
// pipeline was trained on, read once at startup.
func New(pipeline Pipeline, levels domest.Levels, band float64) (*Service, error) {
	if math.IsNaN(band) || math.IsInf(band, 0) || band < 0 {
		return nil, fmt.Errorf("band must be a non-negative number, got %g", band)
	}
	return &Service{pipeline: pipeline, levels: levels.Normalize(), band: band}, nil
}

// Load fetches levels from the pipeline and creates the service.
func Load(ctx context.Context, pipeline Pipeline, band float64) (*Service, error) {
	levels, err := pipeline.Levels(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pipeline levels: %w", err)
	}
	return New(pipeline, levels, band)
}

// Levels returns the accepted categorical levels per column.
func (s *Service) Levels() domest.Levels { return s.levels }

// Band returns the half-width of estimated ranges.
func (s *Service) Band() float64 { return s.band }

// Estimate predicts a price range for f.
// Unknown categorical levels and pipeline failures are InferenceErrors.
func (s *Service) Estimate(ctx context.Context, f *domest.Features) (domest.Range, error) {
	if err := f.Validate(); err != nil {
		return domest.Range{}, domain.InvalidArgument("%s", err.Error())
	}
	if err := s.levels.Check(f); err != nil {
		return domest.Range{}, domain.NewInference(err)
	}

	logPrice, err := s.pipeline.Predict(ctx, f)
	if err != nil {
		return domest.Range{}, domain.NewInference(err)
	}
	if math.IsNaN(logPrice) || math.IsInf(logPrice, 0) {
		return domest.Range{}, domain.NewInference(fmt.Errorf("pipeline returned non-finite value %g", logPrice))
	}

	price := math.Expm1(logPrice)
	return domest.Range{Low: price - s.band, Price: price, High: price + s.band}, nil
}
