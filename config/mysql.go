package config

import (
	"fmt"
	"time"
)

// MySQLConfig MySQL 连接配置
type MySQLConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	Params   string `json:"params" yaml:"params"` // DSN 附加参数

	// Replicas 只读副本 DSN 列表，为空时读写都走主库
	Replicas []string `json:"replicas" yaml:"replicas"`

	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	SlowThreshold   time.Duration `json:"slowThreshold" yaml:"slowThreshold"` // 慢 SQL 阈值
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate"`     // 启动时自动建表
}

// DSN 拼接主库连接串
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.User, c.Password, c.Host, c.Port, c.Database, c.Params)
}

// DefaultMySQLConfig 返回本地开发的默认配置（与 .env.example 对齐）
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		Host:            "mysql",
		Port:            3306,
		User:            "root",
		Password:        "root",
		Database:        "postserver",
		Params:          "charset=utf8mb4&parseTime=True&loc=Local",
		MaxOpenConns:    100,
		MaxIdleConns:    20,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   200 * time.Millisecond,
		AutoMigrate:     true,
	}
}
