package config

import "time"

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`
	Mode            string        `json:"mode" yaml:"mode"` // gin 模式: debug/release/test
	RequestTimeout  time.Duration `json:"requestTimeout" yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	MaxUploadBytes  int64         `json:"maxUploadBytes" yaml:"maxUploadBytes"` // multipart 内存上限
	NodeID          int64         `json:"nodeId" yaml:"nodeId"`                 // snowflake 节点号
	AllowedOrigins  []string      `json:"allowedOrigins" yaml:"allowedOrigins"` // 为空时回显任意 Origin
}

// DefaultServerConfig 返回默认配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		Mode:            "release",
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxUploadBytes:  8 << 20,
		NodeID:          1,
	}
}

// RateLimitConfig 限流配置（令牌桶）
type RateLimitConfig struct {
	IPRate     float64 `json:"ipRate" yaml:"ipRate"`
	IPBurst    int     `json:"ipBurst" yaml:"ipBurst"`
	UserRate   float64 `json:"userRate" yaml:"userRate"`
	UserBurst  int     `json:"userBurst" yaml:"userBurst"`
	LocalCache int     `json:"localCache" yaml:"localCache"` // Redis 不可用时本地限流器数量上限
}

// DefaultRateLimitConfig 返回默认配置
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		IPRate:     20,
		IPBurst:    40,
		UserRate:   10,
		UserBurst:  20,
		LocalCache: 10000,
	}
}
