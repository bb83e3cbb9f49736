package middleware

import (
	"time"

	"github.com/BerniceZTT/telecaller_crm/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 请求计数与耗时，按路由模板统计
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.RequestStarted()
		defer metrics.RequestFinished()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start).Seconds())
	}
}
