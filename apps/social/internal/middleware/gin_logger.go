package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"PostServer/consts"
	"PostServer/pkg/logger"
	"PostServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// slowRequestThreshold 超过该耗时的请求记录告警
const slowRequestThreshold = 2 * time.Second

// NewContextWithGin 从 gin.Context 创建携带 trace_id、user_uuid、client_ip 的 context.Context
func NewContextWithGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if traceId, exists := c.Get("trace_id"); exists {
		ctx = context.WithValue(ctx, "trace_id", traceId)
	}
	if userUUID, exists := c.Get("user_uuid"); exists {
		ctx = context.WithValue(ctx, "user_uuid", userUUID)
	}
	if clientIP, exists := c.Get("client_ip"); exists {
		ctx = context.WithValue(ctx, "client_ip", clientIP)
	}
	return ctx
}

// GinLogger 请求日志
// 正常请求只记 Debug，5xx 与慢请求记 Warn
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		ctx := NewContextWithGin(c)
		cost := time.Since(start)
		status := c.Writer.Status()
		ip := ClientIPFromGinContext(c)
		if ip == "" {
			ip = c.ClientIP()
		}

		if status >= http.StatusInternalServerError || cost > slowRequestThreshold {
			logger.Warn(ctx, "慢请求或服务端错误",
				logger.Int("status", status),
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.String("query", query),
				logger.String("ip", ip),
				logger.String("user-agent", c.Request.UserAgent()),
				logger.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
				logger.Duration("cost", cost),
			)
			return
		}
		logger.Debug(ctx, "请求完成",
			logger.Int("status", status),
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Duration("cost", cost),
		)
	}
}

// GinRecovery 捕获 panic 并记录日志，返回统一的内部错误响应
// stack 为 true 时记录调用栈
func GinRecovery(stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := NewContextWithGin(c)
				httpRequest, _ := httputil.DumpRequest(c.Request, false)

				if brokenPipe(err) {
					// 连接已断开，无法再写响应
					logger.Warn(ctx, "客户端连接已断开",
						logger.String("path", c.Request.URL.Path),
						logger.Any("error", err),
					)
					_ = c.Error(asError(err))
					c.Abort()
					return
				}

				fields := []logger.Field{
					logger.Any("error", err),
					logger.String("request", string(httpRequest)),
				}
				if stack {
					fields = append(fields, logger.String("stack", string(debug.Stack())))
				}
				logger.Error(ctx, "请求处理 panic", fields...)
				result.Abort(c, http.StatusInternalServerError, consts.CodeInternalError)
			}
		}()
		c.Next()
	}
}

func brokenPipe(err any) bool {
	ne, ok := err.(*net.OpError)
	if !ok {
		return false
	}
	var se *os.SyscallError
	if errors.As(ne, &se) {
		msg := strings.ToLower(se.Error())
		return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
	}
	return false
}

func asError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return errors.New("panic")
}
