package router

import (
	"net/http"

	"PostServer/apps/social/internal/middleware"
	v1 "PostServer/apps/social/internal/router/v1"
	"PostServer/apps/social/internal/utils"
	"PostServer/config"
	"PostServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Auth    *v1.AuthHandler
	Profile *v1.ProfileHandler
	Follow  *v1.FollowHandler
	Post    *v1.PostHandler
}

// Options 路由依赖的中间件组件
type Options struct {
	Tokens         *util.TokenManager
	Revocation     middleware.RevocationChecker
	IPLimiter      *middleware.RateLimiter // 为 nil 时不做 IP 限流
	UserLimiter    *middleware.RateLimiter // 为 nil 时不做用户限流
	Server         config.ServerConfig
	AllowedOrigins []string
}

// InitRouter 初始化路由
func InitRouter(h Handlers, opts Options) *gin.Engine {
	utils.RegisterValidators()

	r := gin.New()
	if opts.Server.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.Server.MaxUploadBytes
	}

	r.Use(middleware.GinRecovery(true))
	r.Use(util.TraceLogger())
	r.Use(middleware.ClientIPMiddleware())
	r.Use(middleware.GinLogger())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.CorsMiddleware(opts.AllowedOrigins...))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.TimeoutMiddleware(opts.Server.RequestTimeout))
	if opts.IPLimiter != nil {
		api.Use(middleware.IPRateLimitMiddleware(opts.IPLimiter))
	}

	// 公开接口，带令牌时识别身份
	public := api.Group("/public")
	public.Use(middleware.OptionalAuthMiddleware(opts.Tokens, opts.Revocation))
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/password/forgot", h.Auth.ForgotPassword)
			auth.POST("/password/reset", h.Auth.ResetPassword)
		}

		public.GET("/profiles/:handle", h.Profile.GetByHandle)
		public.GET("/profiles/:handle/posts", h.Profile.ListPosts)
		public.GET("/posts", h.Post.ListAll)
		public.GET("/posts/:id/reactions", h.Post.Reactions)
	}

	// 需要认证的接口
	authed := api.Group("/auth")
	authed.Use(middleware.JWTAuthMiddleware(opts.Tokens, opts.Revocation))
	if opts.UserLimiter != nil {
		authed.Use(middleware.UserRateLimitMiddleware(opts.UserLimiter))
	}
	{
		authed.POST("/logout", h.Auth.Logout)

		authed.GET("/profile", h.Profile.GetMine)
		authed.PUT("/profile", h.Profile.Setup)
		authed.POST("/profile/avatar", h.Profile.UploadAvatar)

		follows := authed.Group("/follows")
		{
			follows.GET("/following", h.Follow.Following)
			follows.GET("/followers", h.Follow.Followers)
			follows.POST("/:uuid", h.Follow.Follow)
			follows.DELETE("/:uuid", h.Follow.Unfollow)
			follows.GET("/:uuid/state", h.Follow.State)
			follows.GET("/:uuid/stats", h.Follow.Stats)
		}

		posts := authed.Group("/posts")
		{
			posts.POST("", h.Post.Create)
			posts.DELETE("/:id", h.Post.Delete)
			posts.GET("/:id/reaction", h.Post.MyReaction)
			posts.PUT("/:id/reaction", h.Post.React)
			posts.DELETE("/:id/reaction", h.Post.Unreact)
		}
	}

	return r
}
