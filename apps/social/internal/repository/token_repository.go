package repository

import (
	"context"
	"errors"
	"time"

	rediskey "PostServer/consts/redisKey"

	"github.com/redis/go-redis/v9"
)

// tokenRepositoryImpl 重置令牌与注销令牌存储
type tokenRepositoryImpl struct {
	redisClient *redis.Client
}

// NewTokenRepository 创建令牌仓储实例
func NewTokenRepository(redisClient *redis.Client) ITokenRepository {
	return &tokenRepositoryImpl{redisClient: redisClient}
}

var errRedisUnavailable = errors.New("redis client not configured")

// StoreResetToken 保存重置密码令牌
func (r *tokenRepositoryImpl) StoreResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	if r.redisClient == nil {
		return WrapRedisError(errRedisUnavailable)
	}
	return WrapRedisError(r.redisClient.Set(ctx, rediskey.PasswordResetKey(token), userID, ttl).Err())
}

// ConsumeResetToken 读取并删除令牌，保证一次性使用
func (r *tokenRepositoryImpl) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	if r.redisClient == nil {
		return "", WrapRedisError(errRedisUnavailable)
	}
	userID, err := r.redisClient.GetDel(ctx, rediskey.PasswordResetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", WrapRedisError(err)
	}
	return userID, nil
}

// RevokeToken 将 jti 写入黑名单，ttl 取令牌剩余有效期
func (r *tokenRepositoryImpl) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if r.redisClient == nil {
		return WrapRedisError(errRedisUnavailable)
	}
	if ttl <= 0 {
		return nil
	}
	return WrapRedisError(r.redisClient.Set(ctx, rediskey.RevokedTokenKey(jti), "1", ttl).Err())
}

// IsRevoked 检查 jti 是否在黑名单中
// Redis 不可用时视为未注销，由调用方决定是否降级
func (r *tokenRepositoryImpl) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.redisClient == nil {
		return false, nil
	}
	n, err := r.redisClient.Exists(ctx, rediskey.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, WrapRedisError(err)
	}
	return n > 0, nil
}
