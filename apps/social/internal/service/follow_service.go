package service

import (
	"context"

	"PostServer/apps/social/internal/converter"
	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/repository"
	"PostServer/consts"
	"PostServer/model"
	"PostServer/pkg/logger"

	"google.golang.org/grpc/codes"
)

// followServiceImpl 关注关系服务实现
type followServiceImpl struct {
	followRepo  repository.IFollowRepository
	profileRepo repository.IProfileRepository
	revalidator Revalidator
}

// NewFollowService 创建关注服务实例
func NewFollowService(
	followRepo repository.IFollowRepository,
	profileRepo repository.IProfileRepository,
	revalidator Revalidator,
) IFollowService {
	return &followServiceImpl{
		followRepo:  followRepo,
		profileRepo: profileRepo,
		revalidator: revalidator,
	}
}

// Follow 关注
// 业务流程：
//  1. 校验调用者与目标
//  2. 插入关注边（重复关注幂等成功）
//  3. 失效双方主页缓存
//  4. 检查对方是否已关注自己，用于直接切换为互相关注
//
// 错误码映射：
//   - codes.Unauthenticated: 未登录
//   - codes.InvalidArgument: 关注自己 / 参数为空
//   - codes.NotFound: 目标资料不存在
//   - codes.Internal: 存储异常
func (s *followServiceImpl) Follow(ctx context.Context, actor, target string) (*dto.FollowResult, error) {
	if actor == "" {
		return nil, errUnauthenticated
	}
	if target == "" {
		return nil, bizError(codes.InvalidArgument, consts.CodeParamError)
	}
	if actor == target {
		return nil, bizError(codes.InvalidArgument, consts.CodeSelfFollow)
	}

	targetProfile, err := s.profileRepo.GetByID(ctx, target)
	if err != nil {
		return nil, storageError(ctx, "查询关注对象失败", err)
	}
	if targetProfile == nil {
		return nil, bizError(codes.NotFound, consts.CodeTargetNotFound)
	}

	if err := s.followRepo.Create(ctx, actor, target); err != nil {
		return nil, storageError(ctx, "插入关注边失败", err)
	}
	logger.Info(ctx, "关注成功", logger.String("target", target))

	s.revalidate(ctx, actor, targetProfile)

	return &dto.FollowResult{
		Following: true,
		Mutual:    s.IsFollowedBy(ctx, actor, target),
	}, nil
}

// Unfollow 取消关注，边不存在也返回成功
func (s *followServiceImpl) Unfollow(ctx context.Context, actor, target string) error {
	if actor == "" {
		return errUnauthenticated
	}
	if target == "" {
		return bizError(codes.InvalidArgument, consts.CodeParamError)
	}

	if err := s.followRepo.Delete(ctx, actor, target); err != nil {
		return storageError(ctx, "删除关注边失败", err)
	}
	logger.Info(ctx, "取消关注成功", logger.String("target", target))

	targetProfile, err := s.profileRepo.GetByID(ctx, target)
	if err != nil {
		logger.Warn(ctx, "查询被取消关注者资料失败，跳过缓存失效", logger.ErrorField("error", err))
	}
	s.revalidate(ctx, actor, targetProfile)
	return nil
}

// FollowStats 关注统计
// 任一计数查询失败时该项返回 0 并标记 Degraded，不向上抛错
func (s *followServiceImpl) FollowStats(ctx context.Context, identity string) *dto.FollowStats {
	stats := &dto.FollowStats{}
	if identity == "" {
		return stats
	}

	following, err := s.followRepo.CountFollowing(ctx, identity)
	if err != nil {
		logger.Warn(ctx, "查询关注数失败", logger.String("identity", identity), logger.ErrorField("error", err))
		following = 0
		stats.Degraded = true
	}
	followers, err := s.followRepo.CountFollowers(ctx, identity)
	if err != nil {
		logger.Warn(ctx, "查询粉丝数失败", logger.String("identity", identity), logger.ErrorField("error", err))
		followers = 0
		stats.Degraded = true
	}

	stats.FollowingCount = following
	stats.FollowerCount = followers
	return stats
}

// IsFollowing actor 是否关注了 target，未登录返回 false
func (s *followServiceImpl) IsFollowing(ctx context.Context, actor, target string) bool {
	if actor == "" || target == "" {
		return false
	}
	return s.edgeExists(ctx, actor, target)
}

// IsFollowedBy target 是否关注了 actor
func (s *followServiceImpl) IsFollowedBy(ctx context.Context, actor, target string) bool {
	if actor == "" || target == "" {
		return false
	}
	return s.edgeExists(ctx, target, actor)
}

// IsMutual 是否互相关注
func (s *followServiceImpl) IsMutual(ctx context.Context, actor, target string) bool {
	if actor == "" || actor == target {
		return false
	}
	return s.IsFollowing(ctx, actor, target) && s.IsFollowedBy(ctx, actor, target)
}

// FollowState 查看者视角的关注状态
func (s *followServiceImpl) FollowState(ctx context.Context, actor, target string) *dto.FollowState {
	state := &dto.FollowState{}
	if actor == "" || actor == target {
		return state
	}
	state.Following = s.IsFollowing(ctx, actor, target)
	state.FollowedBy = s.IsFollowedBy(ctx, actor, target)
	state.Mutual = state.Following && state.FollowedBy
	return state
}

// FollowingList 关注列表
func (s *followServiceImpl) FollowingList(ctx context.Context, actor string) ([]*dto.FollowListItem, error) {
	if actor == "" {
		return nil, errUnauthenticated
	}
	edges, err := s.followRepo.ListFollowing(ctx, actor)
	if err != nil {
		return nil, storageError(ctx, "查询关注列表失败", err)
	}
	return s.joinProfiles(ctx, edges, func(e *model.Follow) string { return e.FollowingId })
}

// FollowerList 粉丝列表
func (s *followServiceImpl) FollowerList(ctx context.Context, identity string) ([]*dto.FollowListItem, error) {
	if identity == "" {
		return nil, errUnauthenticated
	}
	edges, err := s.followRepo.ListFollowers(ctx, identity)
	if err != nil {
		return nil, storageError(ctx, "查询粉丝列表失败", err)
	}
	return s.joinProfiles(ctx, edges, func(e *model.Follow) string { return e.FollowerId })
}

func (s *followServiceImpl) joinProfiles(ctx context.Context, edges []*model.Follow, peerOf func(*model.Follow) string) ([]*dto.FollowListItem, error) {
	if len(edges) == 0 {
		return []*dto.FollowListItem{}, nil
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, peerOf(e))
	}
	profiles, err := s.profileRepo.BatchGetByIDs(ctx, ids)
	if err != nil {
		return nil, storageError(ctx, "批量查询资料失败", err)
	}

	items := converter.FollowEdgesToListItems(edges, profiles, peerOf)
	if dropped := len(edges) - len(items); dropped > 0 {
		logger.Warn(ctx, "关注边对应的资料不存在，已忽略", logger.Int("dropped", dropped))
	}
	return items, nil
}

func (s *followServiceImpl) edgeExists(ctx context.Context, follower, following string) bool {
	ok, err := s.followRepo.Exists(ctx, follower, following)
	if err != nil {
		logger.Warn(ctx, "查询关注关系失败",
			logger.String("follower", follower),
			logger.String("following", following),
			logger.ErrorField("error", err),
		)
		return false
	}
	return ok
}

// revalidate 失效调用者与目标的主页缓存（主页上展示关注数）
func (s *followServiceImpl) revalidate(ctx context.Context, actor string, target *model.Profile) {
	if s.revalidator == nil {
		return
	}
	handles := make([]string, 0, 2)
	if target != nil {
		handles = append(handles, target.Username)
	}
	actorProfile, err := s.profileRepo.GetByID(ctx, actor)
	if err != nil {
		logger.Warn(ctx, "查询调用者资料失败，跳过其主页缓存失效", logger.ErrorField("error", err))
	} else if actorProfile != nil {
		handles = append(handles, actorProfile.Username)
	}
	if len(handles) > 0 {
		s.revalidator.RevalidateProfiles(ctx, handles...)
	}
}

// ==================== 主页缓存失效 ====================

// cacheRevalidator 通过删除 Redis 主页缓存实现失效
type cacheRevalidator struct {
	pageCache repository.IPageCacheRepository
}

// NewCacheRevalidator 创建基于页面缓存的 Revalidator
func NewCacheRevalidator(pageCache repository.IPageCacheRepository) Revalidator {
	return &cacheRevalidator{pageCache: pageCache}
}

// RevalidateProfiles 删除失败已由仓储层投递重试，这里只记录
func (r *cacheRevalidator) RevalidateProfiles(ctx context.Context, handles ...string) {
	if err := r.pageCache.Invalidate(ctx, handles...); err != nil {
		logger.Warn(ctx, "主页缓存失效失败", logger.Strings("handles", handles), logger.ErrorField("error", err))
	}
}
