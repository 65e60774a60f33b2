package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finnews/finnews/metrics"
)

// Metrics records request counts and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(route, ctx.Request.Method, strconv.Itoa(ctx.Writer.Status()), time.Since(start).Seconds())
	}
}
