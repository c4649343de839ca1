package repository

import (
	"context"

	"PostServer/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// followRepositoryImpl 关注边数据访问层实现
type followRepositoryImpl struct {
	db *gorm.DB
}

// NewFollowRepository 创建关注仓储实例
func NewFollowRepository(db *gorm.DB) IFollowRepository {
	return &followRepositoryImpl{db: db}
}

// Create 插入关注边
// 依赖 uidx_follow_pair 唯一索引，重复关注走 ON CONFLICT DO NOTHING，视为幂等成功
func (r *followRepositoryImpl) Create(ctx context.Context, followerID, followingID string) error {
	edge := &model.Follow{FollowerId: followerID, FollowingId: followingID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Create(edge).Error
	return WrapDBError(err)
}

// Delete 删除关注边，边不存在视为成功
func (r *followRepositoryImpl) Delete(ctx context.Context, followerID, followingID string) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{}).Error
	return WrapDBError(err)
}

// Exists 检查关注边是否存在
func (r *followRepositoryImpl) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// CountFollowing 关注数
func (r *followRepositoryImpl) CountFollowing(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", id).Count(&count).Error
	return count, WrapDBError(err)
}

// CountFollowers 粉丝数
func (r *followRepositoryImpl) CountFollowers(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("following_id = ?", id).Count(&count).Error
	return count, WrapDBError(err)
}

// ListFollowing 关注列表，同一时间创建的边按 id 倒序保证稳定
func (r *followRepositoryImpl) ListFollowing(ctx context.Context, id string) ([]*model.Follow, error) {
	var edges []*model.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ?", id).
		Order("created_at DESC, id DESC").
		Find(&edges).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return edges, nil
}

// ListFollowers 粉丝列表
func (r *followRepositoryImpl) ListFollowers(ctx context.Context, id string) ([]*model.Follow, error) {
	var edges []*model.Follow
	err := r.db.WithContext(ctx).
		Where("following_id = ?", id).
		Order("created_at DESC, id DESC").
		Find(&edges).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return edges, nil
}
