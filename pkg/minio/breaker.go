package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"PostServer/pkg/logger"

	"github.com/sony/gobreaker"
)

// ErrUnavailable 熔断器打开，对象存储暂不可用
var ErrUnavailable = errors.New("object storage unavailable")

// BreakerStore 为对象存储加熔断保护
// 校验类错误（大小、类型、扩展名）不计入失败统计
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStore 包装 Store
// failures: 连续失败多少次后熔断
// timeout: 熔断打开后多久进入半开状态
func NewBreakerStore(next Store, failures uint32, timeout time.Duration) *BreakerStore {
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        "object-storage",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isValidationError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "熔断器状态变化",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Upload 经熔断器上传
func (b *BreakerStore) Upload(ctx context.Context, reader io.Reader, fileSize int64, opts UploadOptions) (*UploadResult, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Upload(ctx, reader, fileSize, opts)
	})
	if err != nil {
		return nil, b.translate(err)
	}
	return res.(*UploadResult), nil
}

// Delete 经熔断器删除
func (b *BreakerStore) Delete(ctx context.Context, objectName string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, objectName)
	})
	return b.translate(err)
}

// State 当前熔断状态
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker [%s] is %s", ErrUnavailable, b.cb.Name(), b.cb.State())
	}
	return err
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrTypeNotAllowed) || errors.Is(err, ErrExtensionMismatch)
}

// unavailableStore MinIO 初始化失败时的占位实现，所有调用直接返回 ErrUnavailable
type unavailableStore struct{}

// Unavailable 返回降级用的 Store，不带图片的请求不受影响
func Unavailable() Store { return unavailableStore{} }

func (unavailableStore) Upload(context.Context, io.Reader, int64, UploadOptions) (*UploadResult, error) {
	return nil, ErrUnavailable
}

func (unavailableStore) Delete(context.Context, string) error { return ErrUnavailable }
