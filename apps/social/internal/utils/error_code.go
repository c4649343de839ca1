package utils

import (
	"strconv"

	"PostServer/consts"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ExtractErrorCode 提取业务错误码
// 服务层约定 status message 为业务码字符串，无法解析时按内部错误处理
func ExtractErrorCode(err error) int32 {
	if err == nil {
		return consts.CodeSuccess
	}
	st, ok := status.FromError(err)
	if !ok {
		return consts.CodeInternalError
	}
	if bizCode, parseErr := strconv.Atoi(st.Message()); parseErr == nil {
		return int32(bizCode)
	}
	return fallbackCode(st.Code())
}

// fallbackCode message 不是业务码时按 grpc code 兜底
func fallbackCode(code codes.Code) int32 {
	switch code {
	case codes.InvalidArgument:
		return consts.CodeParamError
	case codes.NotFound:
		return consts.CodeResourceNotFound
	case codes.Unauthenticated:
		return consts.CodeUnauthorized
	case codes.PermissionDenied:
		return consts.CodePermissionDeny
	case codes.ResourceExhausted:
		return consts.CodeTooManyRequests
	case codes.Unavailable:
		return consts.CodeServiceUnavailable
	case codes.DeadlineExceeded, codes.Canceled:
		return consts.CodeTimeoutError
	default:
		return consts.CodeInternalError
	}
}

// HTTPStatus 业务码对应的 HTTP 状态码
// 业务错误统一 200 由 code 区分，只有认证与限流使用专门的状态码
func HTTPStatus(code int32) int {
	switch code {
	case consts.CodeUnauthorized, consts.CodeInvalidToken, consts.CodeTokenExpired:
		return 401
	case consts.CodeTooManyRequests:
		return 429
	default:
		return 200
	}
}
