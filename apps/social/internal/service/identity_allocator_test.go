package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"PostServer/consts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestIdentityAllocatorAllocate(t *testing.T) {
	initServiceTestLogger()
	ctx := context.Background()

	t.Run("first_candidate_free", func(t *testing.T) {
		calls := 0
		repo := &fakeProfileRepository{
			existsByUsernameFn: func(_ context.Context, _ string) (bool, error) {
				calls++
				return false, nil
			},
		}
		handle, err := NewIdentityAllocator(repo).Allocate(ctx)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{8}$`), handle)
		assert.True(t, ValidHandle(handle))
		assert.Equal(t, 1, calls)
	})

	t.Run("retries_on_collision", func(t *testing.T) {
		var checked []string
		repo := &fakeProfileRepository{
			existsByUsernameFn: func(_ context.Context, username string) (bool, error) {
				checked = append(checked, username)
				return len(checked) < 3, nil
			},
		}
		handle, err := NewIdentityAllocator(repo).Allocate(ctx)
		require.NoError(t, err)
		require.Len(t, checked, 3)
		assert.Equal(t, checked[2], handle)
	})

	t.Run("deterministic_rand_source", func(t *testing.T) {
		repo := &fakeProfileRepository{}
		a := NewIdentityAllocator(repo, WithRandSource(func(int) int { return 0 }))
		handle, err := a.Allocate(ctx)
		require.NoError(t, err)
		assert.Equal(t, "aaaaaaaa", handle)

		a = NewIdentityAllocator(repo, WithRandSource(func(n int) int { return n - 1 }))
		handle, err = a.Allocate(ctx)
		require.NoError(t, err)
		assert.Equal(t, "99999999", handle)
	})

	t.Run("falls_back_after_ten_collisions", func(t *testing.T) {
		calls := 0
		repo := &fakeProfileRepository{
			existsByUsernameFn: func(_ context.Context, _ string) (bool, error) {
				calls++
				return true, nil
			},
		}
		now := time.UnixMilli(1700000000000)
		handle, err := NewIdentityAllocator(repo, WithClock(func() time.Time { return now })).Allocate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, calls)
		assert.Equal(t, "user"+strconv.FormatInt(now.UnixMilli(), 36), handle)
		assert.Regexp(t, regexp.MustCompile(`^user[0-9a-z]+$`), handle)
		assert.True(t, ValidHandle(handle))
	})

	t.Run("storage_error", func(t *testing.T) {
		repo := &fakeProfileRepository{
			existsByUsernameFn: func(_ context.Context, _ string) (bool, error) {
				return false, errors.New("db down")
			},
		}
		_, err := NewIdentityAllocator(repo).Allocate(ctx)
		requireStatusBizCode(t, err, codes.Internal, consts.CodeStorageError)
	})
}
