package service

import (
	"context"
	"io"
	"time"

	"PostServer/apps/social/internal/dto"
)

// ==================== 用户 ID 分配 ====================

// IIdentityAllocator 生成当前未被占用的 handle
type IIdentityAllocator interface {
	// Allocate 随机生成 8 位 handle，冲突重试 10 次后回退为时间戳 handle
	Allocate(ctx context.Context) (string, error)
}

// ==================== 关注服务接口 ====================

// IFollowService 关注关系服务
// 所有方法显式接收调用者 identity，空串表示未登录
type IFollowService interface {
	// Follow 关注 target，返回关注后是否互相关注
	Follow(ctx context.Context, actor, target string) (*dto.FollowResult, error)

	// Unfollow 取消关注，边不存在时视为成功
	Unfollow(ctx context.Context, actor, target string) error

	// FollowStats 关注数与粉丝数，查询失败时对应计数为 0
	FollowStats(ctx context.Context, identity string) *dto.FollowStats

	// IsFollowing actor -> target 是否存在
	IsFollowing(ctx context.Context, actor, target string) bool

	// IsFollowedBy target -> actor 是否存在
	IsFollowedBy(ctx context.Context, actor, target string) bool

	// IsMutual 是否互相关注
	IsMutual(ctx context.Context, actor, target string) bool

	// FollowState 一次返回三个状态
	FollowState(ctx context.Context, actor, target string) *dto.FollowState

	// FollowingList 关注列表，缺失资料的边被丢弃
	FollowingList(ctx context.Context, actor string) ([]*dto.FollowListItem, error)

	// FollowerList 粉丝列表
	FollowerList(ctx context.Context, identity string) ([]*dto.FollowListItem, error)
}

// Revalidator 接收资料页失效信号
type Revalidator interface {
	// RevalidateProfiles 失效给定 handle 的主页缓存
	RevalidateProfiles(ctx context.Context, handles ...string)
}

// ==================== 表情回应服务接口 ====================

// IReactionService 表情回应服务
type IReactionService interface {
	// AddOrReplace 添加或替换回应
	AddOrReplace(ctx context.Context, postID int64, reactor, emoji string) error

	// Remove 删除回应
	Remove(ctx context.Context, postID int64, reactor string) error

	// CountsByEmoji 按表情统计，按首次出现顺序输出
	CountsByEmoji(ctx context.Context, postID int64) []*dto.EmojiCount

	// ReactionOf 当前用户的回应，ok=false 表示没有
	ReactionOf(ctx context.Context, reactor string, postID int64) (emoji string, ok bool)
}

// ==================== 资料服务接口 ====================

// IProfileService 个人资料服务
type IProfileService interface {
	// GetByHandle 个人主页（资料 + 关注统计 + 帖子数），带缓存
	GetByHandle(ctx context.Context, handle string) (*dto.ProfilePage, error)

	// GetMine 当前用户资料
	GetMine(ctx context.Context, identity string) (*dto.ProfileInfo, error)

	// Setup 设置 handle、显示名称和简介
	Setup(ctx context.Context, identity string, req *dto.SetupProfileRequest) (*dto.ProfileInfo, error)

	// UpdateAvatar 上传并替换头像
	UpdateAvatar(ctx context.Context, identity string, file *FileInput) (*dto.UploadAvatarResponse, error)
}

// ==================== 帖子服务接口 ====================

// IPostService 帖子服务
type IPostService interface {
	// Create 发布帖子，文字和图片至少一个
	Create(ctx context.Context, author, caption string, image *FileInput) (*dto.PostItem, error)

	// Delete 删除自己的帖子
	Delete(ctx context.Context, actor string, postID int64) error

	// ListAll 全站时间线
	ListAll(ctx context.Context, viewer string) ([]*dto.PostItem, error)

	// ListByAuthor 某个 handle 的帖子
	ListByAuthor(ctx context.Context, handle, viewer string) ([]*dto.PostItem, error)
}

// ==================== 认证服务接口 ====================

// IAuthService 认证服务
type IAuthService interface {
	// Register 邮箱注册，成功后直接登录
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)

	// Login 邮箱密码登录
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)

	// Logout 注销访问令牌
	Logout(ctx context.Context, identity, tokenID string, expiresAt time.Time) error

	// RequestPasswordReset 发送重置密码邮件，未注册邮箱静默成功
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword 使用重置令牌设置新密码
	ResetPassword(ctx context.Context, token, newPassword string) error

	// EnsureProfile 账号首次使用时补建资料
	EnsureProfile(ctx context.Context, identity, email string) (*dto.ProfileInfo, error)
}

// FileInput 上传文件
type FileInput struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}
