package async

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"PostServer/config"
	"PostServer/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

var (
	global   *ants.Pool
	globalMu sync.Mutex
	cfgCopy  config.AsyncConfig
)

// ErrNotInitialized 协程池尚未初始化
var ErrNotInitialized = errors.New("async pool not initialized")

// propagateKeys 异步任务需要从请求 ctx 透传的字段
var propagateKeys = []string{"trace_id", "user_uuid", "client_ip"}

// detach 复制请求 ctx 中的追踪字段到新的根 ctx，避免请求结束后任务被取消
func detach(parent context.Context) context.Context {
	ctx := context.Background()
	if parent == nil {
		return ctx
	}
	for _, key := range propagateKeys {
		if v := parent.Value(key); v != nil {
			ctx = context.WithValue(ctx, key, v)
		}
	}
	return ctx
}

// Pool 返回全局协程池（未初始化时为 nil）
func Pool() *ants.Pool { return global }

// Build 根据配置创建协程池实例
func Build(cfg config.AsyncConfig) (*ants.Pool, error) {
	opts := []ants.Option{
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithPanicHandler(func(p any) {
			logger.Error(context.Background(), "异步任务 panic",
				logger.Any("panic", p),
				logger.String("stack", string(debug.Stack())),
			)
		}),
	}
	if cfg.Nonblocking {
		opts = append(opts, ants.WithNonblocking(true))
	}
	return ants.NewPool(cfg.PoolSize, opts...)
}

// Init 初始化全局协程池，重复调用无副作用
func Init(cfg config.AsyncConfig) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return nil
	}
	p, err := Build(cfg)
	if err != nil {
		return err
	}
	global = p
	cfgCopy = cfg
	return nil
}

// Submit 投递任务到全局协程池
func Submit(task func()) error {
	if global == nil {
		return ErrNotInitialized
	}
	return global.Submit(task)
}

// Release 释放协程池，等待已提交任务执行完
func Release() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		return nil
	}
	var err error
	if cfgCopy.ReleaseTimeout > 0 {
		err = global.ReleaseTimeout(cfgCopy.ReleaseTimeout)
	} else {
		global.Release()
	}
	global = nil
	return err
}

// RunSafe 异步执行旁路任务（缓存回填、缓存失效等）
// - 任务 ctx 与请求 ctx 解耦，只继承追踪字段，超时默认 1 分钟
// - panic 被捕获并记录
// - 协程池未初始化时（测试、命令行工具）同步执行
func RunSafe(ctx context.Context, task func(ctx context.Context), timeout time.Duration) {
	if task == nil {
		return
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	baseCtx := detach(ctx)
	runCtx, cancel := context.WithTimeout(baseCtx, timeout)

	wrap := func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Error(runCtx, "异步任务 panic",
					logger.Any("panic", r),
					logger.String("stack", string(debug.Stack())),
				)
			}
		}()

		task(runCtx)

		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			logger.Warn(runCtx, "异步任务超时", logger.Duration("timeout", timeout))
		}
	}

	err := Submit(wrap)
	if err == nil {
		return
	}
	if errors.Is(err, ErrNotInitialized) {
		wrap()
		return
	}
	cancel()
	logger.Error(baseCtx, "异步任务提交失败",
		logger.ErrorField("error", err),
		logger.Duration("timeout", timeout),
	)
}
