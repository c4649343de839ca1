package service

import (
	"context"
	"strconv"

	"PostServer/consts"
	"PostServer/pkg/logger"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// bizError 业务错误：grpc code 表示错误类别，message 为业务码
func bizError(c codes.Code, bizCode int) error {
	return status.Error(c, strconv.Itoa(bizCode))
}

// storageError 存储层异常，原始错误只进日志
func storageError(ctx context.Context, msg string, err error) error {
	logger.Error(ctx, msg, logger.ErrorField("error", err))
	return status.Error(codes.Internal, strconv.Itoa(consts.CodeStorageError))
}

func internalError(ctx context.Context, msg string, err error) error {
	logger.Error(ctx, msg, logger.ErrorField("error", err))
	return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
}

var errUnauthenticated = bizError(codes.Unauthenticated, consts.CodeUnauthorized)
