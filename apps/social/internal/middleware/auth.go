package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"PostServer/consts"
	"PostServer/pkg/logger"
	"PostServer/pkg/result"
	"PostServer/pkg/util"

	"github.com/gin-gonic/gin"
)

// RevocationChecker 查询访问令牌是否已注销
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTAuthMiddleware JWT 认证中间件
// 校验通过后写入 user_uuid、jti、token_exp 供后续 Handler 使用
// revoked 为 nil 时不检查注销名单
func JWTAuthMiddleware(tokens *util.TokenManager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if code := authenticate(c, tokens, revoked); code != consts.CodeSuccess {
			result.Abort(c, http.StatusUnauthorized, code)
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware 公开接口使用：带了有效令牌就识别身份，否则按游客处理
func OptionalAuthMiddleware(tokens *util.TokenManager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			_ = authenticate(c, tokens, revoked)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens *util.TokenManager, revoked RevocationChecker) int32 {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return consts.CodeUnauthorized
	}

	// 格式: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return consts.CodeInvalidToken
	}

	claims, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, util.ErrTokenExpired) {
			return consts.CodeTokenExpired
		}
		return consts.CodeInvalidToken
	}

	if revoked != nil && claims.ID != "" {
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// 令牌本身仍在有效期内
			logger.Warn(NewContextWithGin(c), "检查令牌注销状态失败，降级放行",
				logger.ErrorField("error", err),
			)
		} else if isRevoked {
			return consts.CodeInvalidToken
		}
	}

	c.Set("user_uuid", claims.UserUUID)
	c.Set("jti", claims.ID)
	if claims.ExpiresAt != nil {
		c.Set("token_exp", claims.ExpiresAt.Time)
	}
	return consts.CodeSuccess
}

// GetUserUUID 从 Context 中获取当前登录用户的 identity
func GetUserUUID(c *gin.Context) (string, bool) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		return "", false
	}
	uuid, ok := userUUID.(string)
	return uuid, ok && uuid != ""
}

// GetTokenID 当前访问令牌的 jti 与过期时间
func GetTokenID(c *gin.Context) (string, time.Time) {
	jti := c.GetString("jti")
	exp, _ := c.Get("token_exp")
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}
