package config

import "time"

// KafkaConfig Kafka 配置，目前只承载 Redis 重试队列
type KafkaConfig struct {
	Brokers         []string      `json:"brokers" yaml:"brokers"`
	RedisRetryTopic string        `json:"redisRetryTopic" yaml:"redisRetryTopic"`
	ConsumerGroup   string        `json:"consumerGroup" yaml:"consumerGroup"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	RetryBackoff    time.Duration `json:"retryBackoff" yaml:"retryBackoff"` // 重试消费前的等待时间
}

// DefaultKafkaConfig 返回默认配置
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:         []string{"kafka:9092"},
		RedisRetryTopic: "postserver.redis.retry",
		ConsumerGroup:   "postserver-redis-retry",
		WriteTimeout:    3 * time.Second,
		RetryBackoff:    time.Second,
	}
}
