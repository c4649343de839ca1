package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	rediskey "PostServer/consts/redisKey"
	"PostServer/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// profileRepositoryImpl 用户资料数据访问层实现
type profileRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewProfileRepository 创建资料仓储实例
// redisClient 为 nil 时不使用缓存（Redis 降级启动）
func NewProfileRepository(db *gorm.DB, redisClient *redis.Client) IProfileRepository {
	return &profileRepositoryImpl{db: db, redisClient: redisClient}
}

// GetByID 根据 identity 查询资料
func (r *profileRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	cacheKey := rediskey.ProfileKey(id)

	// ==================== 1. 先查 Redis ====================
	if r.redisClient != nil {
		cached, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var profile model.Profile
			if err := json.Unmarshal([]byte(cached), &profile); err == nil {
				return &profile, nil
			}
		} else if err != redis.Nil {
			LogRedisError(ctx, err) // 降级查库
		}
	}

	// ==================== 2. 查 MySQL ====================
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		// 资料懒创建，不缓存空值
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}

	// ==================== 3. 回填缓存 ====================
	if data, err := json.Marshal(&profile); err == nil {
		r.setCache(ctx, cacheKey, string(data), rediskey.ProfileTTL)
	}
	return &profile, nil
}

// GetByUsername 根据 handle 查询资料
func (r *profileRepositoryImpl) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &profile, nil
}

// ExistsByUsername 检查 handle 是否已被占用
func (r *profileRepositoryImpl) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("username = ?", username).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// BatchGetByIDs 批量查询资料
func (r *profileRepositoryImpl) BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Profile, error) {
	ids = uniqueStrings(ids)
	result := make(map[string]*model.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var profiles []*model.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, WrapDBError(err)
	}
	for _, p := range profiles {
		result[p.Id] = p
	}
	return result, nil
}

// Create 创建资料
func (r *profileRepositoryImpl) Create(ctx context.Context, profile *model.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return WrapDBError(err)
	}
	r.evict(ctx, profile.Id)
	return nil
}

// UpdateBasic 更新 handle、显示名称、简介，调用方需先确认资料存在
func (r *profileRepositoryImpl) UpdateBasic(ctx context.Context, id, username, displayName, biography string) error {
	err := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"username":     username,
			"display_name": displayName,
			"biography":    biography,
		}).Error
	if err != nil {
		return WrapDBError(err)
	}
	r.evict(ctx, id)
	return nil
}

// UpdateAvatar 更新头像
func (r *profileRepositoryImpl) UpdateAvatar(ctx context.Context, id, avatarURL, avatarKey string) error {
	err := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"avatar_url": avatarURL,
			"avatar_key": avatarKey,
		}).Error
	if err != nil {
		return WrapDBError(err)
	}
	r.evict(ctx, id)
	return nil
}

// evict 同步删除资料缓存，失败时记录日志（空值缓存较短，最终会过期）
func (r *profileRepositoryImpl) evict(ctx context.Context, id string) {
	if r.redisClient == nil {
		return
	}
	if err := r.redisClient.Del(ctx, rediskey.ProfileKey(id)).Err(); err != nil {
		LogRedisError(ctx, err)
	}
}

// setCache 同步回填，缩短与 evict 之间的竞争窗口
func (r *profileRepositoryImpl) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if r.redisClient == nil {
		return
	}
	if err := r.redisClient.Set(ctx, key, value, getRandomExpireTime(ttl)).Err(); err != nil {
		LogRedisError(ctx, err)
	}
}
