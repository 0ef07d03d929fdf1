package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog and recommendation cache metrics.
var (
	CatalogSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "homedex",
			Name:      "catalog_size",
			Help:      "Number of entries loaded from the artifact bundle",
		},
		[]string{"kind"}, // "properties" / "locations" / "listings"
	)

	RecommendCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homedex",
			Name:      "recommend_cache_total",
			Help:      "Recommendation cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers catalog and cache metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(CatalogSize)
	prometheus.MustRegister(RecommendCacheTotal)
	catalogMetricsRegistered = true
}
