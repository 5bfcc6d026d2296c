package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	emojiLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emoji_lookups_total",
			Help: "Total number of emoji detail lookups",
		},
		[]string{"by", "found"},
	)

	emojiCopiesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emoji_copies_total",
			Help: "Total number of tracked emoji copy actions",
		},
	)

	sitemapBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemap_builds_total",
			Help: "Total number of sitemap generations",
		},
		[]string{"result"},
	)
)

// MetricsMiddleware collects Prometheus metrics for each HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		httpRequestsInFlight.Inc()

		// Route pattern, not the concrete URL, so cardinality stays bounded
		// (/api/emojis/:id instead of /api/emojis/42).
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RequestIDMiddleware tags each request with an id, honouring one supplied
// by the caller.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("requestID", requestID)
		c.Next()
	}
}

// RecordLookup records an emoji detail lookup by id or slug.
func RecordLookup(by string, found bool) {
	emojiLookupsTotal.WithLabelValues(by, strconv.FormatBool(found)).Inc()
}

// RecordCopy records a tracked copy action.
func RecordCopy() {
	emojiCopiesTotal.Inc()
}

// RecordSitemapBuild records how a sitemap request was served ("built" or
// "cached").
func RecordSitemapBuild(result string) {
	sitemapBuildsTotal.WithLabelValues(result).Inc()
}
