package repository

import (
	"context"
	"errors"

	"PostServer/model"

	"gorm.io/gorm"
)

// postRepositoryImpl 帖子数据访问层实现
type postRepositoryImpl struct {
	db *gorm.DB
}

// NewPostRepository 创建帖子仓储实例
func NewPostRepository(db *gorm.DB) IPostRepository {
	return &postRepositoryImpl{db: db}
}

func (r *postRepositoryImpl) Create(ctx context.Context, post *model.Post) error {
	return WrapDBError(r.db.WithContext(ctx).Create(post).Error)
}

func (r *postRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &post, nil
}

// DeleteWithReactions 先删回应再删帖子，避免残留孤儿回应
func (r *postRepositoryImpl) DeleteWithReactions(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return WrapDBError(err)
}

// ListAll 全站时间线，limit <= 0 表示不限制
func (r *postRepositoryImpl) ListAll(ctx context.Context, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return posts, nil
}

func (r *postRepositoryImpl) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return posts, nil
}

func (r *postRepositoryImpl) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, WrapDBError(err)
}
