package homedex

import (
	"context"

	"github.com/kailas-cloud/homedex/internal/domain"
	domest "github.com/kailas-cloud/homedex/internal/domain/estimate"
	"github.com/kailas-cloud/homedex/internal/domain/similarity"
)

// Recommendation is a similar property with its full-precision score.
type Recommendation = domain.Recommendation

// NearbyProperty is a property within the search radius, in meters.
type NearbyProperty = domain.NearbyProperty

// Features is the fixed-schema input of the price estimator.
type Features = domest.Features

// PriceRange is an estimated price with its band.
type PriceRange = domest.Range

// Levels lists accepted categorical values per column.
type Levels = domest.Levels

// Weights blends the text, location and amenity similarity signals.
type Weights = similarity.Weights

// InferenceError wraps a failed price prediction.
type InferenceError = domain.InferenceError

// NotFoundError reports an unknown property or location.
type NotFoundError = domain.NotFoundError

// DefaultWeights returns the weights the bundled matrices were tuned with.
func DefaultWeights() Weights { return similarity.DefaultWeights() }

// Pipeline predicts log(1 + price) for a feature record.
type Pipeline interface {
	Predict(ctx context.Context, f *Features) (float64, error)
	Levels(ctx context.Context) (Levels, error)
}
