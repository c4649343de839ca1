package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"PostServer/apps/social/internal/middleware"
	"PostServer/apps/social/internal/service"
	"PostServer/apps/social/internal/utils"
	"PostServer/consts"
	"PostServer/pkg/logger"
	"PostServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// respondError 业务错误直接返回业务码，服务端错误记录日志后返回
func respondError(c *gin.Context, ctx context.Context, err error, msg string) {
	code := utils.ExtractErrorCode(err)
	if consts.IsNonServerError(code) {
		result.Result(c, utils.HTTPStatus(code), nil, "", code)
		return
	}
	logger.Error(ctx, msg, logger.ErrorField("error", err))
	result.Fail(c, nil, code)
}

// requireUser 读取当前登录用户，未登录时写出 401
func requireUser(c *gin.Context) (string, bool) {
	identity, ok := middleware.GetUserUUID(c)
	if !ok {
		result.Result(c, http.StatusUnauthorized, nil, "", consts.CodeUnauthorized)
		return "", false
	}
	return identity, true
}

func parsePostID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		result.Fail(c, nil, consts.CodeParamError)
		return 0, false
	}
	return id, true
}

// formFile 读取 multipart 文件，optional 为 true 时缺失返回 nil
// 返回的 close 必须调用
func formFile(c *gin.Context, field string, optional bool) (*service.FileInput, func(), bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		if optional && errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, true
		}
		result.Fail(c, nil, consts.CodeParamError)
		return nil, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return nil, nil, false
	}
	return &service.FileInput{
		Reader:      f,
		Size:        fh.Size,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, func() { _ = f.Close() }, true
}
