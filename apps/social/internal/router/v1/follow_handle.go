package v1

import (
	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/middleware"
	"PostServer/apps/social/internal/service"
	"PostServer/consts"
	"PostServer/pkg/result"
	"PostServer/pkg/util"

	"github.com/gin-gonic/gin"
)

// FollowHandler 关注关系处理器
type FollowHandler struct {
	followService service.IFollowService
}

// NewFollowHandler 创建关注关系处理器
func NewFollowHandler(followService service.IFollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// targetParam 读取路径中的目标 identity
func targetParam(c *gin.Context) (string, bool) {
	target := c.Param("uuid")
	if !util.IsUUID(target) {
		result.Fail(c, nil, consts.CodeParamError)
		return "", false
	}
	return target, true
}

// Follow 关注
// @Router /api/v1/auth/follows/{uuid} [post]
func (h *FollowHandler) Follow(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	target, ok := targetParam(c)
	if !ok {
		return
	}

	resp, err := h.followService.Follow(ctx, actor, target)
	if err != nil {
		respondError(c, ctx, err, "关注服务内部错误")
		return
	}
	result.Success(c, resp)
}

// Unfollow 取消关注
// @Router /api/v1/auth/follows/{uuid} [delete]
func (h *FollowHandler) Unfollow(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	target, ok := targetParam(c)
	if !ok {
		return
	}

	if err := h.followService.Unfollow(ctx, actor, target); err != nil {
		respondError(c, ctx, err, "取消关注服务内部错误")
		return
	}
	result.Success(c, &dto.EmptyResponse{})
}

// State 当前用户与目标的关注状态
// @Router /api/v1/auth/follows/{uuid}/state [get]
func (h *FollowHandler) State(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	target, ok := targetParam(c)
	if !ok {
		return
	}
	result.Success(c, h.followService.FollowState(ctx, actor, target))
}

// Stats 关注数与粉丝数
// @Router /api/v1/auth/follows/{uuid}/stats [get]
func (h *FollowHandler) Stats(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	target, ok := targetParam(c)
	if !ok {
		return
	}
	result.Success(c, h.followService.FollowStats(ctx, target))
}

// Following 我的关注列表
// @Router /api/v1/auth/follows/following [get]
func (h *FollowHandler) Following(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := h.followService.FollowingList(ctx, actor)
	if err != nil {
		respondError(c, ctx, err, "获取关注列表服务内部错误")
		return
	}
	result.Success(c, &dto.FollowListResponse{Items: items, Total: len(items)})
}

// Followers 我的粉丝列表
// @Router /api/v1/auth/follows/followers [get]
func (h *FollowHandler) Followers(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := h.followService.FollowerList(ctx, actor)
	if err != nil {
		respondError(c, ctx, err, "获取粉丝列表服务内部错误")
		return
	}
	result.Success(c, &dto.FollowListResponse{Items: items, Total: len(items)})
}
