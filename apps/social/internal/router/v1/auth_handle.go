package v1

import (
	"PostServer/apps/social/internal/dto"
	"PostServer/apps/social/internal/middleware"
	"PostServer/apps/social/internal/service"
	"PostServer/consts"
	"PostServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService service.IAuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register 邮箱注册
// @Router /api/v1/public/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误属于正常业务流程，不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.authService.Register(ctx, &req)
	if err != nil {
		respondError(c, ctx, err, "注册服务内部错误")
		return
	}
	result.Success(c, resp)
}

// Login 邮箱密码登录
// @Router /api/v1/public/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		respondError(c, ctx, err, "登录服务内部错误")
		return
	}
	result.Success(c, resp)
}

// Logout 注销当前访问令牌
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	identity, ok := requireUser(c)
	if !ok {
		return
	}
	jti, expiresAt := middleware.GetTokenID(c)

	if err := h.authService.Logout(ctx, identity, jti, expiresAt); err != nil {
		respondError(c, ctx, err, "登出服务内部错误")
		return
	}
	result.Success(c, &dto.EmptyResponse{})
}

// ForgotPassword 发送重置密码邮件
// @Router /api/v1/public/auth/password/forgot [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.authService.RequestPasswordReset(ctx, req.Email); err != nil {
		respondError(c, ctx, err, "发送重置邮件服务内部错误")
		return
	}
	result.Success(c, &dto.EmptyResponse{})
}

// ResetPassword 使用重置令牌设置新密码
// @Router /api/v1/public/auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.authService.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		respondError(c, ctx, err, "重置密码服务内部错误")
		return
	}
	result.Success(c, &dto.EmptyResponse{})
}
