package v1

import (
	"errors"

	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/middleware"
	"PostServer/apps/social/internal/service"
	"PostServer/consts"
	"PostServer/pkg/result"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ProfileHandler 个人资料处理器
type ProfileHandler struct {
	profileService service.IProfileService
	postService    service.IPostService
}

// NewProfileHandler 创建个人资料处理器
func NewProfileHandler(profileService service.IProfileService, postService service.IPostService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		postService:    postService,
	}
}

// GetByHandle 个人主页
// @Param handle path string true "用户 ID"
// @Router /api/v1/public/profiles/{handle} [get]
func (h *ProfileHandler) GetByHandle(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	handle := c.Param("handle")
	if handle == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	page, err := h.profileService.GetByHandle(ctx, handle)
	if err != nil {
		respondError(c, ctx, err, "获取个人主页服务内部错误")
		return
	}
	result.Success(c, page)
}

// ListPosts 某个用户的帖子，登录时附带自己的回应
// @Router /api/v1/public/profiles/{handle}/posts [get]
func (h *ProfileHandler) ListPosts(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	viewer, _ := middleware.GetUserUUID(c)

	items, err := h.postService.ListByAuthor(ctx, c.Param("handle"), viewer)
	if err != nil {
		respondError(c, ctx, err, "获取用户帖子服务内部错误")
		return
	}
	result.Success(c, &dto.PostListResponse{Items: items})
}

// GetMine 当前用户资料
// @Router /api/v1/auth/profile [get]
func (h *ProfileHandler) GetMine(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	identity, ok := requireUser(c)
	if !ok {
		return
	}

	info, err := h.profileService.GetMine(ctx, identity)
	if err != nil {
		respondError(c, ctx, err, "获取个人资料服务内部错误")
		return
	}
	result.Success(c, info)
}

// Setup 设置 handle、显示名称与简介
// @Router /api/v1/auth/profile [put]
func (h *ProfileHandler) Setup(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	identity, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.SetupProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, setupBindErrorCode(err))
		return
	}

	info, err := h.profileService.Setup(ctx, identity, &req)
	if err != nil {
		respondError(c, ctx, err, "更新个人资料服务内部错误")
		return
	}
	result.Success(c, info)
}

// UploadAvatar 上传头像，表单字段 avatar
// @Router /api/v1/auth/profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	identity, ok := requireUser(c)
	if !ok {
		return
	}

	file, closeFile, ok := formFile(c, "avatar", false)
	if !ok {
		return
	}
	defer closeFile()

	resp, err := h.profileService.UpdateAvatar(ctx, identity, file)
	if err != nil {
		respondError(c, ctx, err, "上传头像服务内部错误")
		return
	}
	result.Success(c, resp)
}

// setupBindErrorCode 把字段校验失败映射为对应的业务码
func setupBindErrorCode(err error) int32 {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return consts.CodeParamError
	}
	switch ve[0].Field() {
	case "Handle":
		return consts.CodeHandleInvalid
	case "DisplayName":
		return consts.CodeDisplayNameTooLong
	case "Biography":
		return consts.CodeBiographyTooLong
	default:
		return consts.CodeParamError
	}
}
