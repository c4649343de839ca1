package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"PostServer/config"
	"PostServer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// messageReader kafka.Reader 的最小抽象
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RetryConsumer 消费 Redis 重试队列，重放失败的缓存操作
type RetryConsumer struct {
	reader  messageReader
	redis   redis.UniversalClient
	backoff time.Duration
	resend  func(ctx context.Context, task RedisTask) error
}

// NewRetryConsumer 创建重试消费者
func NewRetryConsumer(cfg config.KafkaConfig, redisClient redis.UniversalClient) *RetryConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.RedisRetryTopic,
		GroupID: cfg.ConsumerGroup,
	})
	return &RetryConsumer{
		reader:  reader,
		redis:   redisClient,
		backoff: cfg.RetryBackoff,
		resend:  SendRedisTask,
	}
}

// Run 阻塞消费，直到 ctx 取消
func (c *RetryConsumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			logger.Error(ctx, "拉取 Redis 重试任务失败", logger.ErrorField("error", err))
			time.Sleep(c.backoff)
			continue
		}

		c.Handle(ctx, msg.Value)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Warn(ctx, "提交 Redis 重试任务位点失败", logger.ErrorField("error", err))
		}
	}
}

// Handle 处理单条消息：执行成功则结束，失败则重新入队直到达到最大重试次数
func (c *RetryConsumer) Handle(ctx context.Context, value []byte) {
	var task RedisTask
	if err := json.Unmarshal(value, &task); err != nil {
		logger.Error(ctx, "Redis 重试任务格式错误，丢弃", logger.ErrorField("error", err))
		return
	}
	taskCtx := task.Context()

	if c.backoff > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff):
		}
	}

	err := Execute(ctx, c.redis, task)
	if err == nil {
		logger.Info(taskCtx, "Redis 重试任务执行成功",
			logger.String("command", task.Command),
			logger.Int("retry_count", task.RetryCount),
		)
		return
	}

	task.RetryCount++
	if task.Exhausted() {
		logger.Error(taskCtx, "Redis 重试任务达到最大重试次数，放弃",
			logger.String("command", task.Command),
			logger.String("original_err", task.OriginalErr),
			logger.ErrorField("error", err),
		)
		return
	}
	if sendErr := c.resend(ctx, task); sendErr != nil {
		logger.Error(taskCtx, "Redis 重试任务重新入队失败",
			logger.ErrorField("error", sendErr),
		)
	}
}

// Execute 执行 Redis 任务
func Execute(ctx context.Context, client redis.UniversalClient, task RedisTask) error {
	switch task.Type {
	case CmdSimple:
		if task.Command == "" {
			return errors.New("empty command")
		}
		return client.Do(ctx, append([]interface{}{task.Command}, task.Args...)...).Err()
	case CmdPipeline:
		pipe := client.Pipeline()
		for _, cmd := range task.PipelineCmds {
			pipe.Do(ctx, append([]interface{}{cmd.Command}, cmd.Args...)...)
		}
		_, err := pipe.Exec(ctx)
		return err
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}
