package service

import (
	"context"
	"time"

	"PostServer/pkg/async"
)

// asyncTimeout 旁路任务（对象清理、缓存回填）超时
const asyncTimeout = 30 * time.Second

func runAsync(ctx context.Context, task func(ctx context.Context)) {
	async.RunSafe(ctx, task, asyncTimeout)
}
