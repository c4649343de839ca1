package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"PostServer/config"

	"github.com/segmentio/kafka-go"
)

// ErrProducerNotInitialized 重试队列生产者未初始化
var ErrProducerNotInitialized = errors.New("redis retry producer not initialized")

// messageWriter kafka.Writer 的最小抽象
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	producer   messageWriter
	producerMu sync.RWMutex
)

// InitProducer 初始化 Redis 重试队列生产者
func InitProducer(cfg config.KafkaConfig) {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.RedisRetryTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	setProducer(w)
}

func setProducer(w messageWriter) {
	producerMu.Lock()
	defer producerMu.Unlock()
	producer = w
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	producerMu.Lock()
	defer producerMu.Unlock()
	if producer == nil {
		return nil
	}
	err := producer.Close()
	producer = nil
	return err
}

// SendRedisTask 投递 Redis 重试任务
// 以第一个 key 作为消息 key，同一 key 的任务落在同一分区保证顺序
func SendRedisTask(ctx context.Context, task RedisTask) error {
	producerMu.RLock()
	w := producer
	producerMu.RUnlock()
	if w == nil {
		return ErrProducerNotInitialized
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal redis task: %w", err)
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.partitionKey()),
		Value: payload,
	})
}

func (t RedisTask) partitionKey() string {
	if len(t.Args) > 0 {
		if k, ok := t.Args[0].(string); ok {
			return k
		}
	}
	if len(t.PipelineCmds) > 0 && len(t.PipelineCmds[0].Args) > 0 {
		if k, ok := t.PipelineCmds[0].Args[0].(string); ok {
			return k
		}
	}
	return string(t.Type)
}
