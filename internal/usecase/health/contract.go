package health

import "context"

// CachePinger checks recommendation cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// PipelineChecker checks price pipeline availability.
type PipelineChecker interface {
	HealthCheck(ctx context.Context) error
}
