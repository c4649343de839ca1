package repository

import (
	"context"
	"time"

	"PostServer/model"
)

// ==================== 账号 Repository ====================

// IAccountRepository 登录凭证数据访问接口
type IAccountRepository interface {
	// Create 创建账号，邮箱重复返回 ErrDuplicateKey
	Create(ctx context.Context, account *model.Account) error

	// GetByEmail 根据邮箱查询账号，不存在返回 ErrRecordNotFound
	GetByEmail(ctx context.Context, email string) (*model.Account, error)

	// GetByID 根据 identity 查询账号，不存在返回 ErrRecordNotFound
	GetByID(ctx context.Context, id string) (*model.Account, error)

	// UpdatePassword 更新密码哈希
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
}

// ==================== 资料 Repository ====================

// IProfileRepository 用户资料（usernames 表）数据访问接口
type IProfileRepository interface {
	// GetByID 根据 identity 查询资料（带缓存），不存在返回 nil, nil
	GetByID(ctx context.Context, id string) (*model.Profile, error)

	// GetByUsername 根据 handle 查询资料，不存在返回 nil, nil
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)

	// ExistsByUsername 检查 handle 是否已被占用
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// BatchGetByIDs 批量查询资料，不存在的 identity 不出现在结果中
	BatchGetByIDs(ctx context.Context, ids []string) (map[string]*model.Profile, error)

	// Create 创建资料，handle 或 identity 冲突返回 ErrDuplicateKey
	Create(ctx context.Context, profile *model.Profile) error

	// UpdateBasic 更新 handle、显示名称、简介；handle 冲突返回 ErrDuplicateKey
	UpdateBasic(ctx context.Context, id, username, displayName, biography string) error

	// UpdateAvatar 更新头像地址与对象名
	UpdateAvatar(ctx context.Context, id, avatarURL, avatarKey string) error
}

// ==================== 关注 Repository ====================

// IFollowRepository 关注边数据访问接口
type IFollowRepository interface {
	// Create 插入关注边，重复插入静默忽略
	Create(ctx context.Context, followerID, followingID string) error

	// Delete 删除关注边，不存在时不报错
	Delete(ctx context.Context, followerID, followingID string) error

	// Exists 检查 follower -> following 是否存在
	Exists(ctx context.Context, followerID, followingID string) (bool, error)

	// CountFollowing 关注数（follower = id 的边数）
	CountFollowing(ctx context.Context, id string) (int64, error)

	// CountFollowers 粉丝数（following = id 的边数）
	CountFollowers(ctx context.Context, id string) (int64, error)

	// ListFollowing 关注列表，按创建时间倒序
	ListFollowing(ctx context.Context, id string) ([]*model.Follow, error)

	// ListFollowers 粉丝列表，按创建时间倒序
	ListFollowers(ctx context.Context, id string) ([]*model.Follow, error)
}

// ==================== 表情回应 Repository ====================

// IReactionRepository 表情回应数据访问接口
type IReactionRepository interface {
	// Get 查询某用户对某帖子的回应，不存在返回 nil, nil
	Get(ctx context.Context, postID int64, userID string) (*model.Reaction, error)

	// Create 插入回应，(post, user) 冲突返回 ErrDuplicateKey
	Create(ctx context.Context, reaction *model.Reaction) error

	// UpdateEmoji 更新回应的表情
	UpdateEmoji(ctx context.Context, id int64, emoji string) error

	// Delete 删除某用户对某帖子的回应，不存在时不报错
	Delete(ctx context.Context, postID int64, userID string) error

	// ListByPost 帖子的全部回应，按 id 升序（即首次出现顺序）
	ListByPost(ctx context.Context, postID int64) ([]*model.Reaction, error)

	// ListByPosts 批量查询多个帖子的回应，按 id 升序
	ListByPosts(ctx context.Context, postIDs []int64) ([]*model.Reaction, error)
}

// ==================== 帖子 Repository ====================

// IPostRepository 帖子数据访问接口
type IPostRepository interface {
	// Create 创建帖子
	Create(ctx context.Context, post *model.Post) error

	// GetByID 查询帖子，不存在返回 nil, nil
	GetByID(ctx context.Context, id int64) (*model.Post, error)

	// DeleteWithReactions 在同一事务内删除帖子及其回应
	DeleteWithReactions(ctx context.Context, id int64) error

	// ListAll 全部帖子，按创建时间倒序
	ListAll(ctx context.Context, limit int) ([]*model.Post, error)

	// ListByUser 某用户的帖子，按创建时间倒序
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Post, error)

	// CountByUser 某用户的帖子数
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// ==================== 缓存 Repository ====================

// IPageCacheRepository 个人主页渲染缓存
type IPageCacheRepository interface {
	// GetPage 读取缓存；hit=false 表示未命中，data 为空占位时表示主页不存在
	GetPage(ctx context.Context, handle string) (data []byte, hit bool, err error)

	// SetPage 写入缓存，data 为 nil 时写入空占位
	SetPage(ctx context.Context, handle string, data []byte) error

	// Invalidate 删除主页缓存，失败时投递重试队列
	Invalidate(ctx context.Context, handles ...string) error
}

// ITokenRepository 认证相关的 Redis 数据
type ITokenRepository interface {
	// StoreResetToken 保存重置密码令牌
	StoreResetToken(ctx context.Context, token, userID string, ttl time.Duration) error

	// ConsumeResetToken 读取并删除重置密码令牌，不存在返回 "", nil
	ConsumeResetToken(ctx context.Context, token string) (string, error)

	// RevokeToken 注销访问令牌直到其过期
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked 检查访问令牌是否已注销
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
