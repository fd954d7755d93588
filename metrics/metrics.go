// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feed metrics
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of generated feed pages",
		},
		[]string{"algorithm"},
	)

	FeedGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_generation_duration_seconds",
			Help:    "Time spent assembling a feed page",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	RelevanceScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relevance_score",
			Help:    "Distribution of assigned relevance scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// Content source metrics
	ContentFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_errors_total",
			Help: "Content source fetches that degraded to an empty result",
		},
		[]string{"source"},
	)

	ContentFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Duration of content source fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Digest metrics
	DigestBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_build_duration_seconds",
			Help:    "Time spent building a Today's Connection digest",
			Buckets: prometheus.DefBuckets,
		},
	)

	DigestSourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_source_errors_total",
			Help: "Digest source fetches that degraded to an empty collection",
		},
		[]string{"source"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Maintenance jobs
	SpotsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spots_expired_total",
			Help: "Spots moved from active to expired by the expiry sweep",
		},
	)
)

// RecordFeed records one generated feed page
func RecordFeed(algorithm string, duration time.Duration) {
	FeedRequestsTotal.WithLabelValues(algorithm).Inc()
	FeedGenerationDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// RecordContentFetch records a content source fetch; err marks a degraded fetch
func RecordContentFetch(source string, duration time.Duration, err error) {
	ContentFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		ContentFetchErrors.WithLabelValues(source).Inc()
	}
}

// GinMiddleware counts requests by matched route, so path parameters do not
// explode label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
