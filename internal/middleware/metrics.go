package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paymentops/settlement-backend/internal/platform/metrics"
)

// MetricsMiddleware records a Prometheus counter per handled request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
