package service

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"PostServer/apps/social/internal/repository"
	"PostServer/pkg/logger"
)

const (
	handleAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	handleLength      = 8
	handleMaxAttempts = 10
	// fallbackPrefix 回退 handle 前缀，后接 base36 毫秒时间戳
	fallbackPrefix = "user"
)

// identityAllocatorImpl handle 分配器
type identityAllocatorImpl struct {
	profileRepo repository.IProfileRepository
	intn        func(n int) int
	now         func() time.Time
}

// AllocatorOption 分配器选项，测试中替换随机源和时钟
type AllocatorOption func(*identityAllocatorImpl)

// WithRandSource 替换随机源，intn 返回 [0, n)
func WithRandSource(intn func(n int) int) AllocatorOption {
	return func(a *identityAllocatorImpl) { a.intn = intn }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) AllocatorOption {
	return func(a *identityAllocatorImpl) { a.now = now }
}

// NewIdentityAllocator 创建 handle 分配器
func NewIdentityAllocator(profileRepo repository.IProfileRepository, opts ...AllocatorOption) IIdentityAllocator {
	a := &identityAllocatorImpl{
		profileRepo: profileRepo,
		intn:        rand.Intn,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate 分配 handle
// 只做读查询，由调用方落库；回退 handle 不再检查唯一性，插入时由唯一索引兜底
func (a *identityAllocatorImpl) Allocate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= handleMaxAttempts; attempt++ {
		candidate := a.randomHandle()
		exists, err := a.profileRepo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", storageError(ctx, "检查 handle 是否存在失败", err)
		}
		if !exists {
			return candidate, nil
		}
		logger.Debug(ctx, "handle 冲突，重新生成",
			logger.String("candidate", candidate),
			logger.Int("attempt", attempt),
		)
	}

	fallback := fallbackPrefix + strconv.FormatInt(a.now().UnixMilli(), 36)
	logger.Warn(ctx, "handle 重试次数用尽，使用时间戳 handle",
		logger.String("handle", fallback),
	)
	return fallback, nil
}

func (a *identityAllocatorImpl) randomHandle() string {
	var b strings.Builder
	b.Grow(handleLength)
	for i := 0; i < handleLength; i++ {
		b.WriteByte(handleAlphabet[a.intn(len(handleAlphabet))])
	}
	return b.String()
}
