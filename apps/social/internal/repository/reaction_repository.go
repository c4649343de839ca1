package repository

import (
	"context"
	"errors"

	"PostServer/model"

	"gorm.io/gorm"
)

// reactionRepositoryImpl 表情回应数据访问层实现
type reactionRepositoryImpl struct {
	db *gorm.DB
}

// NewReactionRepository 创建表情回应仓储实例
func NewReactionRepository(db *gorm.DB) IReactionRepository {
	return &reactionRepositoryImpl{db: db}
}

// Get 查询 (post, user) 的回应
func (r *reactionRepositoryImpl) Get(ctx context.Context, postID int64, userID string) (*model.Reaction, error) {
	var reaction model.Reaction
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &reaction, nil
}

// Create 插入回应
func (r *reactionRepositoryImpl) Create(ctx context.Context, reaction *model.Reaction) error {
	return WrapDBError(r.db.WithContext(ctx).Create(reaction).Error)
}

// UpdateEmoji 更新表情
// 不以 RowsAffected 判断存在性：MySQL 在值未变化时返回 0
func (r *reactionRepositoryImpl) UpdateEmoji(ctx context.Context, id int64, emoji string) error {
	err := r.db.WithContext(ctx).Model(&model.Reaction{}).
		Where("id = ?", id).
		Update("emoji", emoji).Error
	return WrapDBError(err)
}

// Delete 删除回应
func (r *reactionRepositoryImpl) Delete(ctx context.Context, postID int64, userID string) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.Reaction{}).Error
	return WrapDBError(err)
}

// ListByPost 帖子全部回应
func (r *reactionRepositoryImpl) ListByPost(ctx context.Context, postID int64) ([]*model.Reaction, error) {
	var reactions []*model.Reaction
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return reactions, nil
}

// ListByPosts 批量查询回应
func (r *reactionRepositoryImpl) ListByPosts(ctx context.Context, postIDs []int64) ([]*model.Reaction, error) {
	if len(postIDs) == 0 {
		return []*model.Reaction{}, nil
	}
	var reactions []*model.Reaction
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("id ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return reactions, nil
}
