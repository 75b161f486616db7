package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Publishing metrics
	PostsCreatedTotal  prometheus.Counter
	PostsRejectedTotal prometheus.CounterVec

	// Moderation metrics
	ReportsTotal     prometheus.CounterVec
	PostsHiddenTotal prometheus.Counter

	// Feed metrics
	FeedPagesTotal   prometheus.Counter
	FeedPageDuration prometheus.Histogram

	// Cooldown metrics
	CooldownDeniedTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),

			PostsCreatedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "posts_created_total",
					Help: "Total number of posts published",
				},
			),
			PostsRejectedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "posts_rejected_total",
					Help: "Post submissions rejected before reaching the store",
				},
				[]string{"reason"},
			),

			ReportsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "reports_total",
					Help: "Report attempts by outcome",
				},
				[]string{"outcome"},
			),
			PostsHiddenTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "posts_hidden_total",
					Help: "Posts that crossed the hide threshold",
				},
			),

			FeedPagesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "feed_pages_total",
					Help: "Feed pages served",
				},
			),
			FeedPageDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "feed_page_duration_seconds",
					Help:    "Feed page query latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
				},
			),

			CooldownDeniedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cooldown_denied_total",
					Help: "Actions denied by an active cooldown",
				},
				[]string{"category"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	return Initialize()
}
