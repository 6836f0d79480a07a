// Package metrics exposes the Prometheus collectors for Notiva. All
// collectors are registered on the default registry and served by the
// /metrics endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP surface

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notiva_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notiva_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notiva_http_errors_total",
			Help: "Total number of HTTP error responses",
		},
		[]string{"code", "status"},
	)

	PanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notiva_http_panics_recovered_total",
			Help: "Total number of panics recovered by middleware",
		},
	)

	// Rate limiting

	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notiva_ratelimit_decisions_total",
			Help: "Rate limiter decisions by class and outcome",
		},
		[]string{"class", "decision"},
	)

	BotClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notiva_bot_classifications_total",
			Help: "User-agent classifications by class",
		},
		[]string{"class"},
	)

	// Search

	SearchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notiva_search_queries_total",
			Help: "Total number of search queries served",
		},
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notiva_search_cache_hits_total",
			Help: "Search responses served from cache",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notiva_search_cache_misses_total",
			Help: "Search responses computed from upstream",
		},
	)

	// Content

	ViewIncrements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notiva_view_increments_total",
			Help: "Persisted article view increments",
		},
	)

	CMSErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notiva_cms_errors_total",
			Help: "Upstream CMS failures by operation",
		},
		[]string{"operation"},
	)

	SubscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notiva_subscriptions_total",
			Help: "Subscription attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, path string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError records an error response by envelope code.
func RecordError(code string, status int) {
	ErrorsTotal.WithLabelValues(code, statusLabel(status)).Inc()
}

// RecordRateLimitDecision records an allow or deny for a limiter class.
func RecordRateLimitDecision(class string, allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	RateLimitDecisions.WithLabelValues(class, decision).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
