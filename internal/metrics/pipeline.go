package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	PipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "pipeline_requests_total",
			Help:      "Total number of price pipeline requests",
		},
		[]string{"pipeline", "endpoint", "status"},
	)

	PipelineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homedex",
			Name:      "pipeline_request_duration_seconds",
			Help:      "Price pipeline request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"pipeline", "endpoint"},
	)

	PipelineErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "pipeline_errors_total",
			Help:      "Total price pipeline errors",
		},
		[]string{"pipeline", "error_type"},
	)

	PipelineBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "homedex",
			Name:      "pipeline_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"pipeline"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineRequestsTotal)
	prometheus.MustRegister(PipelineRequestDuration)
	prometheus.MustRegister(PipelineErrorsTotal)
	prometheus.MustRegister(PipelineBreakerState)
	pipelineMetricsRegistered = true
}
