package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics. The "kind" label distinguishes keyword,
// similarity and duplicate-scan traffic.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qadex",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"kind", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qadex",
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	DuplicateScanDocs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qadex",
			Name:      "duplicate_scan_documents_total",
			Help:      "Documents processed by duplicate scans",
		},
	)

	DuplicateGroupsFound = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qadex",
			Name:      "duplicate_groups_last_scan",
			Help:      "Duplicate groups found by the most recent scan",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(DuplicateScanDocs)
	prometheus.MustRegister(DuplicateGroupsFound)
	searchMetricsRegistered = true
}
