package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intelliplan-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records request latency under the route pattern, so /courses/CS101 and
// /courses/MA102 share one series. Requests that match no route share "unmatched".
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
