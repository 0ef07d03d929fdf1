package estimate

import (
	"context"

	domest "github.com/kailas-cloud/homedex/internal/domain/estimate"
)

// Pipeline is the externally trained regression model.
// Predict returns log(1 + price).
type Pipeline interface {
	Predict(ctx context.Context, f *domest.Features) (float64, error)
	Levels(ctx context.Context) (domest.Levels, error)
}
