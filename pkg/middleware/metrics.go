package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"tripwise/pkg/metrics"
)

// MetricsMiddleware labels requests by route template so ids do not explode
// the label space.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		metrics.RequestStarted()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestFinished(strings.ToUpper(c.Request.Method), path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
