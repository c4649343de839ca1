package v1

import (
	"context"

	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/middleware"
	"PostServer/apps/social/internal/service"
	"PostServer/consts"
	"PostServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// PostHandler 帖子与表情回应处理器
type PostHandler struct {
	postService     service.IPostService
	reactionService service.IReactionService
}

// NewPostHandler 创建帖子处理器
func NewPostHandler(postService service.IPostService, reactionService service.IReactionService) *PostHandler {
	return &PostHandler{
		postService:     postService,
		reactionService: reactionService,
	}
}

// ListAll 全站时间线
// @Router /api/v1/public/posts [get]
func (h *PostHandler) ListAll(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	viewer, _ := middleware.GetUserUUID(c)

	items, err := h.postService.ListAll(ctx, viewer)
	if err != nil {
		respondError(c, ctx, err, "获取时间线服务内部错误")
		return
	}
	result.Success(c, &dto.PostListResponse{Items: items})
}

// Create 发布帖子，multipart 表单：caption 文字，image 图片（可选）
// @Router /api/v1/auth/posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	author, ok := requireUser(c)
	if !ok {
		return
	}

	var form dto.CreatePostForm
	if err := c.ShouldBind(&form); err != nil {
		result.Fail(c, nil, consts.CodeCaptionTooLong)
		return
	}
	image, closeFile, ok := formFile(c, "image", true)
	if !ok {
		return
	}
	defer closeFile()

	item, err := h.postService.Create(ctx, author, form.Caption, image)
	if err != nil {
		respondError(c, ctx, err, "发布帖子服务内部错误")
		return
	}
	result.Success(c, item)
}

// Delete 删除自己的帖子
// @Router /api/v1/auth/posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	if err := h.postService.Delete(ctx, actor, postID); err != nil {
		respondError(c, ctx, err, "删除帖子服务内部错误")
		return
	}
	result.Success(c, &dto.EmptyResponse{})
}

// Reactions 帖子的表情统计
// @Router /api/v1/public/posts/{id}/reactions [get]
func (h *PostHandler) Reactions(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	result.Success(c, h.reactionState(c, ctx, postID))
}

// React 添加或替换自己的回应
// @Router /api/v1/auth/posts/{id}/reaction [put]
func (h *PostHandler) React(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	reactor, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	var req dto.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeEmojiInvalid)
		return
	}

	if err := h.reactionService.AddOrReplace(ctx, postID, reactor, req.Emoji); err != nil {
		respondError(c, ctx, err, "表情回应服务内部错误")
		return
	}
	result.Success(c, h.reactionState(c, ctx, postID))
}

// Unreact 撤回自己的回应
// @Router /api/v1/auth/posts/{id}/reaction [delete]
func (h *PostHandler) Unreact(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	reactor, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	if err := h.reactionService.Remove(ctx, postID, reactor); err != nil {
		respondError(c, ctx, err, "撤回回应服务内部错误")
		return
	}
	result.Success(c, h.reactionState(c, ctx, postID))
}

// MyReaction 自己的回应与帖子的表情统计
// @Router /api/v1/auth/posts/{id}/reaction [get]
func (h *PostHandler) MyReaction(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	if _, ok := requireUser(c); !ok {
		return
	}
	postID, ok := parsePostID(c)
	if !ok {
		return
	}
	result.Success(c, h.reactionState(c, ctx, postID))
}

// reactionState 统计与当前用户的回应，未登录时 Emoji 为空
func (h *PostHandler) reactionState(c *gin.Context, ctx context.Context, postID int64) *dto.ReactionStateResponse {
	resp := &dto.ReactionStateResponse{Counts: h.reactionService.CountsByEmoji(ctx, postID)}
	if viewer, ok := middleware.GetUserUUID(c); ok {
		if emoji, found := h.reactionService.ReactionOf(ctx, viewer, postID); found {
			resp.Emoji = emoji
		}
	}
	return resp
}
