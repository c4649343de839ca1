package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"PostServer/apps/social/internal/converter"
	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/repository"
	"PostServer/consts"
	"PostServer/model"
	"PostServer/pkg/logger"
	"PostServer/pkg/minio"

	"google.golang.org/grpc/codes"
)

const (
	maxDisplayNameRunes = 50
	maxBiographyRunes   = 500
)

// handlePattern handle 格式：小写字母、数字、下划线，3-20 位
var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// ValidHandle 校验 handle 格式
func ValidHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}

// profileServiceImpl 个人资料服务实现
type profileServiceImpl struct {
	profileRepo   repository.IProfileRepository
	postRepo      repository.IPostRepository
	pageCache     repository.IPageCacheRepository
	followService IFollowService
	revalidator   Revalidator
	store         minio.Store
	now           func() time.Time
}

// NewProfileService 创建资料服务实例
func NewProfileService(
	profileRepo repository.IProfileRepository,
	postRepo repository.IPostRepository,
	pageCache repository.IPageCacheRepository,
	followService IFollowService,
	revalidator Revalidator,
	store minio.Store,
) IProfileService {
	return &profileServiceImpl{
		profileRepo:   profileRepo,
		postRepo:      postRepo,
		pageCache:     pageCache,
		followService: followService,
		revalidator:   revalidator,
		store:         store,
		now:           time.Now,
	}
}

// GetByHandle 个人主页
// 缓存命中直接返回；主页不存在时缓存空占位，防止穿透
func (s *profileServiceImpl) GetByHandle(ctx context.Context, handle string) (*dto.ProfilePage, error) {
	if !ValidHandle(handle) {
		return nil, bizError(codes.NotFound, consts.CodeProfileNotFound)
	}

	// ==================== 1. 查缓存 ====================
	data, hit, err := s.pageCache.GetPage(ctx, handle)
	if err != nil {
		repository.LogRedisError(ctx, err) // 降级查库
	} else if hit {
		if data == nil {
			return nil, bizError(codes.NotFound, consts.CodeProfileNotFound)
		}
		var page dto.ProfilePage
		if err := json.Unmarshal(data, &page); err == nil {
			return &page, nil
		}
		logger.Warn(ctx, "主页缓存反序列化失败", logger.String("handle", handle))
	}

	// ==================== 2. 查库组装 ====================
	profile, err := s.profileRepo.GetByUsername(ctx, handle)
	if err != nil {
		return nil, storageError(ctx, "查询资料失败", err)
	}
	if profile == nil {
		s.fillPage(ctx, handle, nil)
		return nil, bizError(codes.NotFound, consts.CodeProfileNotFound)
	}

	postCount, err := s.postRepo.CountByUser(ctx, profile.Id)
	if err != nil {
		return nil, storageError(ctx, "查询帖子数失败", err)
	}
	page := &dto.ProfilePage{
		Profile:   converter.ModelToProfileInfo(profile),
		Stats:     s.followService.FollowStats(ctx, profile.Id),
		PostCount: postCount,
	}

	// ==================== 3. 回填缓存 ====================
	// 计数降级为 0 的页面不回填，避免错误数据缓存整个 TTL
	if page.Stats.Degraded {
		return page, nil
	}
	if encoded, err := json.Marshal(page); err == nil {
		s.fillPage(ctx, handle, encoded)
	}
	return page, nil
}

// fillPage 同步回填，回填不能晚于失效执行
func (s *profileServiceImpl) fillPage(ctx context.Context, handle string, data []byte) {
	if err := s.pageCache.SetPage(ctx, handle, data); err != nil {
		repository.LogRedisError(ctx, err)
	}
}

// GetMine 当前用户资料
func (s *profileServiceImpl) GetMine(ctx context.Context, identity string) (*dto.ProfileInfo, error) {
	if identity == "" {
		return nil, errUnauthenticated
	}
	profile, err := s.profileRepo.GetByID(ctx, identity)
	if err != nil {
		return nil, storageError(ctx, "查询资料失败", err)
	}
	if profile == nil {
		return nil, bizError(codes.NotFound, consts.CodeProfileNotFound)
	}
	return converter.ModelToProfileInfo(profile), nil
}

// Setup 设置资料
// 业务流程：
//  1. 校验 handle、显示名称、简介
//  2. handle 已属于其他 identity 时返回冲突
//  3. 资料不存在则创建，否则更新
//  4. 失效旧 handle 与新 handle 的主页缓存
//
// 错误码映射：
//   - codes.Unauthenticated: 未登录
//   - codes.InvalidArgument: 格式错误
//   - codes.AlreadyExists: handle 已被占用
//   - codes.Internal: 存储异常
func (s *profileServiceImpl) Setup(ctx context.Context, identity string, req *dto.SetupProfileRequest) (*dto.ProfileInfo, error) {
	if identity == "" {
		return nil, errUnauthenticated
	}
	if req == nil {
		return nil, bizError(codes.InvalidArgument, consts.CodeParamError)
	}

	handle := strings.TrimSpace(req.Handle)
	displayName := strings.TrimSpace(req.DisplayName)
	biography := strings.TrimSpace(req.Biography)
	if !ValidHandle(handle) {
		return nil, bizError(codes.InvalidArgument, consts.CodeHandleInvalid)
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameRunes {
		return nil, bizError(codes.InvalidArgument, consts.CodeDisplayNameTooLong)
	}
	if utf8.RuneCountInString(biography) > maxBiographyRunes {
		return nil, bizError(codes.InvalidArgument, consts.CodeBiographyTooLong)
	}

	owner, err := s.profileRepo.GetByUsername(ctx, handle)
	if err != nil {
		return nil, storageError(ctx, "查询 handle 归属失败", err)
	}
	if owner != nil && owner.Id != identity {
		return nil, bizError(codes.AlreadyExists, consts.CodeHandleTaken)
	}

	current, err := s.profileRepo.GetByID(ctx, identity)
	if err != nil {
		return nil, storageError(ctx, "查询资料失败", err)
	}

	var oldHandle string
	if current == nil {
		current = &model.Profile{Id: identity, Username: handle, DisplayName: displayName, Biography: biography}
		err = s.profileRepo.Create(ctx, current)
	} else {
		oldHandle = current.Username
		err = s.profileRepo.UpdateBasic(ctx, identity, handle, displayName, biography)
		current.Username, current.DisplayName, current.Biography = handle, displayName, biography
	}
	if err != nil {
		// 检查与写入之间 handle 被抢占
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, bizError(codes.AlreadyExists, consts.CodeHandleTaken)
		}
		return nil, storageError(ctx, "保存资料失败", err)
	}

	logger.Info(ctx, "资料已更新",
		logger.String("old_handle", oldHandle),
		logger.String("handle", handle),
	)
	s.revalidator.RevalidateProfiles(ctx, oldHandle, handle)
	return converter.ModelToProfileInfo(current), nil
}

// UpdateAvatar 上传头像到 avatars/{identity}/{ms}.{ext}，成功后删除旧头像
func (s *profileServiceImpl) UpdateAvatar(ctx context.Context, identity string, file *FileInput) (*dto.UploadAvatarResponse, error) {
	if identity == "" {
		return nil, errUnauthenticated
	}
	img, err := sniffImage(file)
	if err != nil {
		return nil, err
	}

	current, err := s.profileRepo.GetByID(ctx, identity)
	if err != nil {
		return nil, storageError(ctx, "查询资料失败", err)
	}
	if current == nil {
		return nil, bizError(codes.NotFound, consts.CodeProfileNotFound)
	}

	res, err := uploadImage(ctx, s.store, img, "avatars/"+identity, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpdateAvatar(ctx, identity, res.URL, res.ObjectName); err != nil {
		removeObjectAsync(ctx, s.store, res.ObjectName)
		return nil, storageError(ctx, "保存头像失败", err)
	}
	if current.AvatarKey != "" && current.AvatarKey != res.ObjectName {
		removeObjectAsync(ctx, s.store, current.AvatarKey)
	}

	s.revalidator.RevalidateProfiles(ctx, current.Username)
	return &dto.UploadAvatarResponse{AvatarURL: res.URL}, nil
}
