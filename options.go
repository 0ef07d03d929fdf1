package homedex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures Open.
type Option func(*clientConfig)

type clientConfig struct {
	weights       Weights
	band          float64
	pipeline      Pipeline
	noPipeline    bool
	modelPath     string
	remoteURL     string
	remoteTimeout time.Duration
	logger        *zap.Logger
}

// WithWeights overrides the composite similarity weights.
func WithWeights(w Weights) Option {
	return func(c *clientConfig) {
		c.weights = w
	}
}

// WithBand overrides the half-width of estimated price ranges.
func WithBand(band float64) Option {
	return func(c *clientConfig) {
		c.band = band
	}
}

// WithPipeline uses p for price estimates.
func WithPipeline(p Pipeline) Option {
	return func(c *clientConfig) {
		c.pipeline = p
	}
}

// WithLinearModel loads a linear model from path instead of the bundled one.
func WithLinearModel(path string) Option {
	return func(c *clientConfig) {
		c.modelPath = path
	}
}

// WithRemotePipeline sends price estimates to an inference server.
func WithRemotePipeline(baseURL string, timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.remoteURL = baseURL
		c.remoteTimeout = timeout
	}
}

// WithoutPipeline disables price estimates.
func WithoutPipeline() Option {
	return func(c *clientConfig) {
		c.noPipeline = true
	}
}

// WithLogger sets the logger used by the remote pipeline.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
