package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"PostServer/consts"
	"PostServer/pkg/logger"
	"PostServer/pkg/minio"

	"google.golang.org/grpc/codes"
)

// maxImageBytes 帖子图片与头像的大小上限
const maxImageBytes int64 = 5 << 20

// sniffedImage 已检测类型的图片，Body 包含完整内容
type sniffedImage struct {
	ContentType string
	Ext         string
	Size        int64
	Body        io.Reader
}

// sniffImage 读取文件头检测真实类型，只接受 image/*
func sniffImage(file *FileInput) (*sniffedImage, error) {
	if file == nil || file.Reader == nil {
		return nil, bizError(codes.InvalidArgument, consts.CodeParamError)
	}
	if file.Size > maxImageBytes {
		return nil, bizError(codes.InvalidArgument, consts.CodeFileTooLarge)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, bizError(codes.InvalidArgument, consts.CodeFileUploadFail)
	}
	head = head[:n]
	if n == 0 {
		return nil, bizError(codes.InvalidArgument, consts.CodeFileFormatNotSupport)
	}

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, bizError(codes.InvalidArgument, consts.CodeFileFormatNotSupport)
	}

	size := file.Size
	if size <= 0 {
		size = -1 // 未知大小，由对象存储分片上传
	}
	return &sniffedImage{
		ContentType: contentType,
		Ext:         minio.ExtensionFor(contentType),
		Size:        size,
		Body:        io.MultiReader(bytes.NewReader(head), file.Reader),
	}, nil
}

// uploadImage 上传到 {prefix}/{unixMillis}.{ext}
func uploadImage(ctx context.Context, store minio.Store, img *sniffedImage, prefix string, now time.Time) (*minio.UploadResult, error) {
	res, err := store.Upload(ctx, img.Body, img.Size, minio.UploadOptions{
		PathPrefix:  prefix,
		FileName:    fmt.Sprintf("%d.%s", now.UnixMilli(), img.Ext),
		ContentType: img.ContentType,
	})
	if err != nil {
		return nil, uploadError(ctx, err)
	}
	return res, nil
}

// uploadError 对象存储错误转换为业务错误
func uploadError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, minio.ErrFileTooLarge):
		return bizError(codes.InvalidArgument, consts.CodeFileTooLarge)
	case errors.Is(err, minio.ErrTypeNotAllowed), errors.Is(err, minio.ErrExtensionMismatch):
		return bizError(codes.InvalidArgument, consts.CodeFileFormatNotSupport)
	case errors.Is(err, minio.ErrUnavailable):
		logger.Warn(ctx, "对象存储熔断中", logger.ErrorField("error", err))
		return bizError(codes.Unavailable, consts.CodeServiceUnavailable)
	default:
		logger.Error(ctx, "图片上传失败", logger.ErrorField("error", err))
		return bizError(codes.Internal, consts.CodeFileUploadFail)
	}
}

// removeObjectAsync 尽力删除对象，失败只记录日志
func removeObjectAsync(ctx context.Context, store minio.Store, objectName string) {
	if objectName == "" {
		return
	}
	runAsync(ctx, func(runCtx context.Context) {
		if err := store.Delete(runCtx, objectName); err != nil {
			logger.Warn(runCtx, "删除对象失败", logger.String("object", objectName), logger.ErrorField("error", err))
		}
	})
}
