package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/murmurhq/murmur/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		// FullPath keeps the route template (/api/v1/posts/:id/report) so
		// label cardinality stays bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime).Seconds()
		statusStr := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
	}
}
