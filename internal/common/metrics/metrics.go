// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// SearchQueriesTotal counts searches by classification ("location" or "keyword")
	// and reason.
	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_search_queries_total",
			Help: "Search queries by classification",
		},
		[]string{"classification", "reason"},
	)

	SearchResultsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listings_search_results",
			Help:    "Listings returned per search after filtering",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"classification"},
	)

	SearchResponsesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listings_search_stale_discarded_total",
			Help: "Search results dropped because a newer search superseded them",
		},
	)

	ListingsBackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_backend_errors_total",
			Help: "Failed listings backend requests by error code",
		},
		[]string{"error_code"},
	)

	ListingsBackendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "listings_backend_request_duration_seconds",
			Help: "Latency of listings backend requests",
		},
	)

	ListingsCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_cache_requests_total",
			Help: "Response cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// Classification maps the classifier's boolean to a label value.
func Classification(isLocation bool) string {
	if isLocation {
		return "location"
	}
	return "keyword"
}
