package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/internal/metrics"
)

// MetricsMiddleware counts requests by matched route. Unmatched paths share
// one label.
func MetricsMiddleware(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reg.ObserveRequest(c.Request.Method, route, c.Writer.Status())
	}
}
