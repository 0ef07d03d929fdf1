package catalog

import "github.com/kailas-cloud/homedex/internal/domain/estimate"

// LevelSource provides the categorical levels accepted by the estimator.
type LevelSource interface {
	Levels() estimate.Levels
}
