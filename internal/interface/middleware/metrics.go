package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/narrative-weaver/internal/infrastructure/metrics"
)

// Metrics records request count and latency per matched route. Unmatched
// paths share one label to keep cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
