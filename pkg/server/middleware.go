package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mikeboe/summit-buddy/pkg/metrics"
)

// requestMetrics records every request against its route pattern, so path
// parameters do not explode label cardinality.
func requestMetrics(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequest(path, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
