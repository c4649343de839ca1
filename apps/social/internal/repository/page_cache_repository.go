package repository

import (
	"context"
	"errors"

	"PostServer/apps/social/mq"
	rediskey "PostServer/consts/redisKey"

	"github.com/redis/go-redis/v9"
)

// pageCacheRepositoryImpl 个人主页缓存实现
// redisClient 为 nil 时所有操作为空操作，读取永远未命中
type pageCacheRepositoryImpl struct {
	redisClient *redis.Client
}

// NewPageCacheRepository 创建主页缓存仓储实例
func NewPageCacheRepository(redisClient *redis.Client) IPageCacheRepository {
	return &pageCacheRepositoryImpl{redisClient: redisClient}
}

// GetPage 读取主页缓存
func (r *pageCacheRepositoryImpl) GetPage(ctx context.Context, handle string) ([]byte, bool, error) {
	if r.redisClient == nil {
		return nil, false, nil
	}
	data, err := r.redisClient.Get(ctx, rediskey.ProfilePageKey(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, WrapRedisError(err)
	}
	if string(data) == emptyPlaceholder {
		return nil, true, nil
	}
	return data, true, nil
}

// SetPage 写入主页缓存
func (r *pageCacheRepositoryImpl) SetPage(ctx context.Context, handle string, data []byte) error {
	if r.redisClient == nil {
		return nil
	}
	value, ttl := string(data), rediskey.ProfilePageTTL
	if data == nil {
		value, ttl = emptyPlaceholder, rediskey.ProfilePageEmptyTTL
	}
	err := r.redisClient.Set(ctx, rediskey.ProfilePageKey(handle), value, getRandomExpireTime(ttl)).Err()
	return WrapRedisError(err)
}

// Invalidate 删除主页缓存
// 删除失败会让旧页面在 TTL 内继续可见，因此投递 Kafka 重试
func (r *pageCacheRepositoryImpl) Invalidate(ctx context.Context, handles ...string) error {
	if r.redisClient == nil {
		return nil
	}
	handles = uniqueStrings(handles)
	if len(handles) == 0 {
		return nil
	}
	keys := make([]string, 0, len(handles))
	for _, h := range handles {
		keys = append(keys, rediskey.ProfilePageKey(h))
	}

	if err := r.redisClient.Del(ctx, keys...).Err(); err != nil {
		LogAndRetryRedisError(ctx, mq.BuildDelTask(keys...).WithSource("page_cache.invalidate"), err)
		return WrapRedisError(err)
	}
	return nil
}
