package config

import "time"

// MinIOConfig 对象存储配置（帖子图片、头像）
type MinIOConfig struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"`               // 服务地址，如: localhost:9000
	AccessKeyID     string `json:"accessKeyId" yaml:"accessKeyId"`         // Access Key
	SecretAccessKey string `json:"secretAccessKey" yaml:"secretAccessKey"` // Secret Key
	UseSSL          bool   `json:"useSSL" yaml:"useSSL"`
	Location        string `json:"location" yaml:"location"`

	// BucketName 帖子图片与头像共用的存储桶
	BucketName string `json:"bucketName" yaml:"bucketName"`

	MaxFileSize   int64         `json:"maxFileSize" yaml:"maxFileSize"`   // 单个文件上限（字节）
	AllowedTypes  []string      `json:"allowedTypes" yaml:"allowedTypes"` // 允许的 MIME 类型
	UploadTimeout time.Duration `json:"uploadTimeout" yaml:"uploadTimeout"`

	PublicRead bool   `json:"publicRead" yaml:"publicRead"`
	BaseURL    string `json:"baseUrl" yaml:"baseUrl"` // 返回给客户端的访问前缀

	// 熔断配置：连续失败 BreakerFailures 次后打开，BreakerTimeout 后半开
	BreakerFailures uint32        `json:"breakerFailures" yaml:"breakerFailures"`
	BreakerTimeout  time.Duration `json:"breakerTimeout" yaml:"breakerTimeout"`
}

// DefaultMinIOConfig 返回本地开发的默认配置
func DefaultMinIOConfig() MinIOConfig {
	return MinIOConfig{
		Endpoint:        "minio:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,
		Location:        "us-east-1",
		BucketName:      "post-images",
		MaxFileSize:     5 * 1024 * 1024, // 5MB
		AllowedTypes:    []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"},
		UploadTimeout:   30 * time.Second,
		PublicRead:      true,
		BaseURL:         "http://localhost:9000",
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}
