// Package homedex embeds the homedex recommendation, proximity and price
// estimation engine in-process, reading a precomputed artifact bundle.
package homedex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/artifact"
	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/pipeline/linear"
	"github.com/kailas-cloud/homedex/internal/pipeline/remote"
	estimateuc "github.com/kailas-cloud/homedex/internal/usecase/estimate"
	nearbyuc "github.com/kailas-cloud/homedex/internal/usecase/nearby"
	recommenduc "github.com/kailas-cloud/homedex/internal/usecase/recommend"
)

// DefaultModelFile is the linear model looked up inside the bundle directory
// when no pipeline option is given.
const DefaultModelFile = "pipeline.yaml"

// Client answers recommendation, proximity and price queries over one bundle.
// It is immutable and safe for concurrent use.
type Client struct {
	bundle    *artifact.Bundle
	recommend *recommenduc.Service
	nearby    *nearbyuc.Service
	estimate  *estimateuc.Service // nil without a pipeline
}

// Open loads the bundle in dir.
func Open(ctx context.Context, dir string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		weights: DefaultWeights(),
		band:    estimateuc.DefaultBand,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	b, err := artifact.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("homedex: %w", err)
	}

	rec, err := recommenduc.New(&b.Catalog, b.Matrices, cfg.weights)
	if err != nil {
		return nil, fmt.Errorf("homedex: %w", err)
	}

	c := &Client{
		bundle:    b,
		recommend: rec,
		nearby:    nearbyuc.New(&b.Catalog, &b.Distances),
	}

	pipeline, err := resolvePipeline(cfg, dir)
	if err != nil {
		return nil, err
	}
	if pipeline != nil {
		c.estimate, err = estimateuc.Load(ctx, pipeline, cfg.band)
		if err != nil {
			return nil, fmt.Errorf("homedex: %w", err)
		}
	}
	return c, nil
}

func resolvePipeline(cfg *clientConfig, dir string) (Pipeline, error) {
	switch {
	case cfg.noPipeline:
		return nil, nil
	case cfg.pipeline != nil:
		return cfg.pipeline, nil
	case cfg.remoteURL != "":
		return remote.New(&remote.Config{
			BaseURL: cfg.remoteURL,
			Timeout: cfg.remoteTimeout,
			Logger:  cfg.logger,
		}), nil
	}

	path := cfg.modelPath
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, DefaultModelFile)
	}
	p, err := linear.Load(path)
	if err != nil {
		// The bundled model is optional; an explicit path is not.
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("homedex: load linear model: %w", err)
	}
	return p, nil
}

// Recommend returns up to topN properties most similar to property, best first.
func (c *Client) Recommend(ctx context.Context, property string, topN int) ([]Recommendation, error) {
	return c.recommend.Recommend(ctx, property, topN) //nolint:wrapcheck // domain errors are the public API
}

// Nearby returns properties closer than radiusKm to location, nearest first.
func (c *Client) Nearby(ctx context.Context, location string, radiusKm float64) ([]NearbyProperty, error) {
	return c.nearby.Nearby(ctx, location, radiusKm) //nolint:wrapcheck // domain errors are the public API
}

// Estimate predicts a price range for f. Returns ErrNotImplemented when the
// client was opened without a pipeline.
func (c *Client) Estimate(ctx context.Context, f *Features) (PriceRange, error) {
	if c.estimate == nil {
		return PriceRange{}, fmt.Errorf("%w: no price pipeline configured", ErrNotImplemented)
	}
	return c.estimate.Estimate(ctx, f) //nolint:wrapcheck // domain errors are the public API
}

// Properties returns every property name sorted ascending.
func (c *Client) Properties() []string { return c.bundle.Catalog.Sorted() }

// Locations returns every location name sorted ascending.
func (c *Client) Locations() []string { return c.nearby.Locations() }

// Levels returns the accepted categorical values per estimator column.
// Empty without a pipeline.
func (c *Client) Levels() Levels {
	if c.estimate == nil {
		return Levels{}
	}
	return c.estimate.Levels()
}

// Errors returned by Client methods. Match with errors.Is.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrInvalidArgument = domain.ErrInvalidArgument
	ErrInference       = domain.ErrInference
	ErrNotImplemented  = domain.ErrNotImplemented
	ErrInvalidArtifact = domain.ErrInvalidArtifact
)
