package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"PostServer/config"
	"PostServer/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// ErrFileTooLarge 文件超过大小限制
	ErrFileTooLarge = errors.New("file too large")
	// ErrTypeNotAllowed 文件类型不在允许列表
	ErrTypeNotAllowed = errors.New("file type not allowed")
	// ErrExtensionMismatch 扩展名与内容不符
	ErrExtensionMismatch = errors.New("file extension mismatch")
)

// Store 对象存储能力，帖子图片与头像都通过它读写
//
//go:generate mockgen -source=minio.go -destination=mocks/mock_store.go -package=mocks Store
type Store interface {
	Upload(ctx context.Context, reader io.Reader, fileSize int64, opts UploadOptions) (*UploadResult, error)
	Delete(ctx context.Context, objectName string) error
}

// MinIOClient MinIO 客户端封装
type MinIOClient struct {
	client *minio.Client
	config config.MinIOConfig
}

// Build 基于配置创建 MinIO 客户端，并确保 Bucket 存在
func Build(cfg config.MinIOConfig) (*MinIOClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}
	if strings.TrimSpace(cfg.AccessKeyID) == "" || strings.TrimSpace(cfg.SecretAccessKey) == "" {
		return nil, errors.New("minio credentials are empty")
	}
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("minio bucketName is empty")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket exists: %w", err)
	}
	if !exists {
		if err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Location}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info(ctx, "MinIO Bucket 创建成功", logger.String("bucket", cfg.BucketName))

		// 帖子图片与头像直接通过 URL 访问，需要公开读
		if cfg.PublicRead {
			policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, cfg.BucketName)
			if err = minioClient.SetBucketPolicy(ctx, cfg.BucketName, policy); err != nil {
				logger.Warn(ctx, "设置 Bucket 公开策略失败",
					logger.String("bucket", cfg.BucketName),
					logger.ErrorField("error", err),
				)
			}
		}
	}

	return &MinIOClient{client: minioClient, config: cfg}, nil
}

// UploadOptions 上传选项
type UploadOptions struct {
	// PathPrefix 路径前缀，如 "{user}/{post}" 或 "avatars/{user}"
	PathPrefix string
	// FileName 文件名，为空时生成 uuid
	FileName string
	// ContentType 客户端声明的类型，为空时按内容检测
	ContentType string
	Metadata    map[string]string
}

// UploadResult 上传结果
type UploadResult struct {
	ObjectName  string // 完整对象名，删除时使用
	Size        int64
	ETag        string
	URL         string // 对外访问地址
	ContentType string
}

// Upload 上传文件
// 类型以文件头检测结果为准，客户端声明的类型只用于比对告警
func (c *MinIOClient) Upload(ctx context.Context, reader io.Reader, fileSize int64, opts UploadOptions) (*UploadResult, error) {
	if c.config.MaxFileSize > 0 && fileSize > c.config.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, fileSize, c.config.MaxFileSize)
	}

	objectName := generateObjectName(opts)

	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("读取文件内容失败: %w", err)
	}
	head = head[:n]

	contentType, err := c.CheckContent(ctx, head, objectName, opts.ContentType)
	if err != nil {
		return nil, err
	}

	uploadCtx := ctx
	if c.config.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, c.config.UploadTimeout)
		defer cancel()
	}

	info, err := c.client.PutObject(uploadCtx, c.config.BucketName, objectName,
		io.MultiReader(bytes.NewReader(head), reader), fileSize,
		minio.PutObjectOptions{ContentType: contentType, UserMetadata: opts.Metadata},
	)
	if err != nil {
		logger.Error(ctx, "MinIO 上传失败",
			logger.String("object", objectName),
			logger.Int64("size", fileSize),
			logger.ErrorField("error", err),
		)
		return nil, fmt.Errorf("上传失败: %w", err)
	}

	url := generateURL(c.config, objectName)
	logger.Info(ctx, "MinIO 上传成功",
		logger.String("object", objectName),
		logger.String("content_type", contentType),
		logger.Int64("size", info.Size),
	)

	return &UploadResult{
		ObjectName:  objectName,
		Size:        info.Size,
		ETag:        info.ETag,
		URL:         url,
		ContentType: contentType,
	}, nil
}

// CheckContent 基于文件头检测真实类型，并校验允许列表与扩展名
func (c *MinIOClient) CheckContent(ctx context.Context, head []byte, fileName, declared string) (string, error) {
	detected := http.DetectContentType(head)
	if declared != "" && !isContentTypeMatch(declared, detected) {
		logger.Warn(ctx, "声明的文件类型与检测结果不一致",
			logger.String("declared", declared),
			logger.String("detected", detected),
		)
	}
	if len(c.config.AllowedTypes) > 0 && !isAllowedType(c.config.AllowedTypes, detected) {
		return "", fmt.Errorf("%w: %s", ErrTypeNotAllowed, detected)
	}
	if !validateFileExtension(fileName, detected) {
		return "", fmt.Errorf("%w: %s", ErrExtensionMismatch, detected)
	}
	return detected, nil
}

// Delete 删除对象
func (c *MinIOClient) Delete(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.config.BucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		logger.Error(ctx, "MinIO 删除失败",
			logger.String("object", objectName),
			logger.ErrorField("error", err),
		)
		return fmt.Errorf("删除失败: %w", err)
	}
	logger.Info(ctx, "MinIO 删除成功", logger.String("object", objectName))
	return nil
}

// Exists 检查对象是否存在
func (c *MinIOClient) Exists(ctx context.Context, objectName string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.config.BucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("检查对象存在失败: %w", err)
	}
	return true, nil
}

// ==================== 辅助方法 ====================

func generateObjectName(opts UploadOptions) string {
	fileName := opts.FileName
	if fileName == "" {
		fileName = uuid.New().String()
	}
	if opts.PathPrefix != "" {
		return strings.TrimSuffix(opts.PathPrefix, "/") + "/" + fileName
	}
	return fileName
}

func generateURL(cfg config.MinIOConfig, objectName string) string {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	return fmt.Sprintf("%s/%s/%s", baseURL, cfg.BucketName, strings.TrimPrefix(objectName, "/"))
}

// isContentTypeMatch image/jpg 与 image/jpeg 视为相同，主类型一致也算匹配
func isContentTypeMatch(declared, detected string) bool {
	declared = strings.ToLower(strings.TrimSpace(declared))
	detected = strings.ToLower(strings.TrimSpace(detected))
	if declared == detected {
		return true
	}
	if (declared == "image/jpg" || declared == "image/jpeg") &&
		(detected == "image/jpg" || detected == "image/jpeg") {
		return true
	}
	return strings.Split(declared, "/")[0] == strings.Split(detected, "/")[0]
}

// validExtensions 图片 MIME 类型允许的扩展名
var validExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
	"image/bmp":  {".bmp"},
}

// validateFileExtension 防止伪装文件（如 .exe 改名为 .jpg）
func validateFileExtension(fileName, detected string) bool {
	allowed, ok := validExtensions[strings.ToLower(detected)]
	if !ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

func isAllowedType(allowedTypes []string, contentType string) bool {
	for _, allowed := range allowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// ExtensionFor 返回检测类型对应的默认扩展名（不含点），未知类型返回 "bin"
func ExtensionFor(contentType string) string {
	if exts, ok := validExtensions[strings.ToLower(contentType)]; ok && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
