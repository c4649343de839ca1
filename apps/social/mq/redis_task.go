package mq

import (
	"context"
	"time"
)

// CommandType Redis 重试任务类型
type CommandType string

const (
	CmdSimple   CommandType = "simple"   // 单条命令：del / set
	CmdPipeline CommandType = "pipeline" // 一组命令
)

// defaultMaxRetries 任务默认最多重试次数
const defaultMaxRetries = 3

// RedisTask 写入 Kafka 重试队列的消息体
// 目前只用于缓存失效（个人主页缓存）失败后的补偿
type RedisTask struct {
	Type CommandType `json:"type"`

	Command string        `json:"command,omitempty"` // del / set
	Args    []interface{} `json:"args,omitempty"`

	PipelineCmds []RedisCmd `json:"pipeline_cmds,omitempty"`

	// 元数据
	TraceID     string    `json:"trace_id,omitempty"`
	UserUUID    string    `json:"user_uuid,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"`
	OriginalErr string    `json:"original_err"`
	Source      string    `json:"source,omitempty"`
}

// RedisCmd Pipeline 中的单条命令
type RedisCmd struct {
	Command string        `json:"command"`
	Args    []interface{} `json:"args"`
}

// BuildDelTask 构造 DEL 任务，支持一次删除多个 key
func BuildDelTask(keys ...string) RedisTask {
	args := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		args = append(args, k)
	}
	return RedisTask{
		Type:       CmdSimple,
		Command:    "del",
		Args:       args,
		Timestamp:  time.Now(),
		MaxRetries: defaultMaxRetries,
	}
}

// BuildSetTask 构造 SET 任务
func BuildSetTask(key string, val interface{}, ttl time.Duration) RedisTask {
	args := []interface{}{key, val}
	if ttl > 0 {
		args = append(args, "EX", int(ttl.Seconds()))
	}
	return RedisTask{
		Type:       CmdSimple,
		Command:    "set",
		Args:       args,
		Timestamp:  time.Now(),
		MaxRetries: defaultMaxRetries,
	}
}

// BuildPipelineTask 构造 Pipeline 任务
func BuildPipelineTask(cmds []RedisCmd) RedisTask {
	return RedisTask{
		Type:         CmdPipeline,
		PipelineCmds: cmds,
		Timestamp:    time.Now(),
		MaxRetries:   defaultMaxRetries,
	}
}

// WithContext 记录追踪信息
func (t RedisTask) WithContext(ctx context.Context) RedisTask {
	if traceID, ok := ctx.Value("trace_id").(string); ok {
		t.TraceID = traceID
	}
	if userUUID, ok := ctx.Value("user_uuid").(string); ok {
		t.UserUUID = userUUID
	}
	return t
}

// WithError 记录首次失败原因
func (t RedisTask) WithError(err error) RedisTask {
	if err != nil {
		t.OriginalErr = err.Error()
	}
	return t
}

// WithSource 记录操作来源
func (t RedisTask) WithSource(source string) RedisTask {
	t.Source = source
	return t
}

// Exhausted 是否已达到最大重试次数
func (t RedisTask) Exhausted() bool {
	return t.RetryCount >= t.MaxRetries
}

// Context 还原追踪字段，供消费端日志使用
func (t RedisTask) Context() context.Context {
	ctx := context.Background()
	if t.TraceID != "" {
		ctx = context.WithValue(ctx, "trace_id", t.TraceID)
	}
	if t.UserUUID != "" {
		ctx = context.WithValue(ctx, "user_uuid", t.UserUUID)
	}
	return ctx
}
