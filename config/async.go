package config

import "time"

// AsyncConfig 协程池配置，用于缓存回填、缓存失效等旁路任务
type AsyncConfig struct {
	PoolSize         int           `json:"poolSize" yaml:"poolSize"`
	MaxBlockingTasks int           `json:"maxBlockingTasks" yaml:"maxBlockingTasks"` // 0 表示不限制
	ExpiryDuration   time.Duration `json:"expiryDuration" yaml:"expiryDuration"`     // 空闲 worker 回收时间
	Nonblocking      bool          `json:"nonblocking" yaml:"nonblocking"`
	ReleaseTimeout   time.Duration `json:"releaseTimeout" yaml:"releaseTimeout"` // 退出时等待任务完成的时间
}

// DefaultAsyncConfig 返回默认配置
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		PoolSize:         128,
		MaxBlockingTasks: 0,
		ExpiryDuration:   10 * time.Second,
		Nonblocking:      false,
		ReleaseTimeout:   5 * time.Second,
	}
}
