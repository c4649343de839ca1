package util

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger 追踪中间件，优先复用上游传入的 X-Request-ID，否则生成新的 trace_id
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := c.GetHeader(HeaderXRequestID)
		if traceId == "" {
			traceId = NewUUID()
		}
		c.Set("trace_id", traceId)
		c.Header(HeaderXRequestID, traceId)
		c.Next()
	}
}

// NewUUID 生成新的 UUID，同时用作用户 identity
func NewUUID() string {
	return uuid.New().String()
}

// IsUUID 校验字符串是否为合法 UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
