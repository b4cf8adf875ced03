package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/pkg/logger"
)

const (
	ContextKeyRequestID = "request_id"
	headerRequestID     = "X-Request-ID"
)

// RequestContextMiddleware 透传或生成 request_id，响应头回写，请求结束记录访问日志
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Writer.Header().Set(headerRequestID, reqID)

		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if user := c.GetString("user_uuid"); user != "" {
			fields["admin"] = user
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
			logger.Warn("http request", fields)
			return
		}
		logger.Debug("http request", fields)
	}
}

// RequestID 当前请求的 request_id
func RequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
