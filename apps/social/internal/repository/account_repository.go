package repository

import (
	"context"

	"PostServer/model"

	"gorm.io/gorm"
)

// accountRepositoryImpl 账号数据访问层实现
type accountRepositoryImpl struct {
	db *gorm.DB
}

// NewAccountRepository 创建账号仓储实例
func NewAccountRepository(db *gorm.DB) IAccountRepository {
	return &accountRepositoryImpl{db: db}
}

// Create 创建账号
func (r *accountRepositoryImpl) Create(ctx context.Context, account *model.Account) error {
	return WrapDBError(r.db.WithContext(ctx).Create(account).Error)
}

// GetByEmail 根据邮箱查询账号
func (r *accountRepositoryImpl) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &account, nil
}

// GetByID 根据 identity 查询账号
func (r *accountRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &account, nil
}

// UpdatePassword 更新密码哈希
func (r *accountRepositoryImpl) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", id).
		Update("password", hashedPassword)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
