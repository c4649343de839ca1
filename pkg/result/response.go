package result

import (
	"net/http"

	"PostServer/consts"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// Code 为 0 表示成功，否则 Message 为面向用户的错误提示
type Response struct {
	Code    int32       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	TraceId string      `json:"trace_id"`
}

// Result 以指定 HTTP 状态码写出响应
func Result(c *gin.Context, httpStatus int, data interface{}, message string, code int32) {
	if message == "" {
		message = consts.GetMessage(code)
	}
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    data,
		TraceId: c.GetString("trace_id"),
	})
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	Result(c, http.StatusOK, data, "", consts.CodeSuccess)
}

// Fail 返回业务失败响应（HTTP 200，由 code 区分）
func Fail(c *gin.Context, data interface{}, code int32) {
	Result(c, http.StatusOK, data, "", code)
}

// FailWithMessage 返回失败响应并自定义消息
func FailWithMessage(c *gin.Context, data interface{}, message string, code int32) {
	Result(c, http.StatusOK, data, message, code)
}

// Abort 中间件拦截请求时使用：写出响应并终止后续处理
func Abort(c *gin.Context, httpStatus int, code int32) {
	Result(c, httpStatus, nil, "", code)
	c.Abort()
}
