package config

import "time"

// JWTConfig 访问令牌配置
type JWTConfig struct {
	Secret    string        `json:"secret" yaml:"secret"`
	Issuer    string        `json:"issuer" yaml:"issuer"`
	AccessTTL time.Duration `json:"accessTtl" yaml:"accessTtl"`
}

// DefaultJWTConfig 返回默认配置，生产环境必须通过 JWT_SECRET 覆盖
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:    "dev-secret-change-me",
		Issuer:    "postserver",
		AccessTTL: 7 * 24 * time.Hour,
	}
}

// MailConfig SMTP 发信配置（重置密码邮件）
type MailConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from" yaml:"from"`
	// ResetURL 重置密码页面地址，邮件中追加 ?token=xxx
	ResetURL string `json:"resetUrl" yaml:"resetUrl"`
}

// DefaultMailConfig 返回本地开发的默认配置（mailhog）
func DefaultMailConfig() MailConfig {
	return MailConfig{
		Host:     "mailhog",
		Port:     1025,
		From:     "no-reply@postserver.local",
		ResetURL: "http://localhost:3000/reset-password",
	}
}
