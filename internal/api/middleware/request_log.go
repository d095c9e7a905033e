package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger 记录每个请求的方法、路由模板、状态码、响应大小与耗时。
// 探活和指标拉取不记，避免刷屏。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// 用路由模板（/api/categories/:id）而不是原始路径，日志才可聚合
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		if route == "/healthz" || route == "/metrics" {
			return
		}

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", c.Writer.Status()),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		logger.Info("http request", attrs...)
	}
}
