package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/insane/observability"
)

// RequestMetrics records in-flight requests, totals and latency per route
// template. It runs inside the router so the matched route is known.
func RequestMetrics(service string, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.RecordRequestStart(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.RecordRequestEnd(ctx, service, route, strconv.Itoa(status), time.Since(start))
		if status >= 500 {
			m.RecordError(ctx, "http_"+strconv.Itoa(status), service)
		}
	}
}
