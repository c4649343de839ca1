package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"PostServer/apps/social/internal/middleware"
	"PostServer/apps/social/internal/repository"
	"PostServer/apps/social/internal/router"
	v1 "PostServer/apps/social/internal/router/v1"
	"PostServer/apps/social/internal/service"
	"PostServer/apps/social/mq"
	"PostServer/config"
	"PostServer/model"
	"PostServer/pkg/async"
	"PostServer/pkg/logger"
	"PostServer/pkg/mail"
	"PostServer/pkg/minio"
	"PostServer/pkg/mysql"
	pkgredis "PostServer/pkg/redis"
	"PostServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	envFile := flag.String("env", ".env", "配置文件路径（dotenv 格式）")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 加载配置
	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.Build(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logger.ReplaceGlobal(zl)
	defer zl.Sync()

	// 3. 初始化 MySQL
	db, err := mysql.Build(cfg.MySQL)
	if err != nil {
		log.Fatalf("初始化MySQL失败: %v", err)
	}
	defer mysql.Close(db)
	if cfg.MySQL.AutoMigrate {
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			log.Fatalf("自动建表失败: %v", err)
		}
	}

	// 4. 初始化 Redis
	// 调整读写超时为 50ms（快速失败）
	cfg.Redis.ReadTimeout = 50 * time.Millisecond
	cfg.Redis.WriteTimeout = 50 * time.Millisecond

	var redisClient *redis.Client
	if rc, err := pkgredis.Build(cfg.Redis); err != nil {
		// Redis 初始化失败不阻塞启动（缓存、限流、注销降级）
		logger.Warn(ctx, "Redis 初始化失败，将降级到 MySQL-Only 模式",
			logger.ErrorField("error", err),
		)
	} else {
		redisClient = rc
		pkgredis.ReplaceGlobal(redisClient)
		defer redisClient.Close()
		logger.Info(ctx, "Redis 初始化成功", logger.String("addr", cfg.Redis.Addr))
	}

	// 5. 初始化 Kafka（仅在 Redis 可用时启动）
	if redisClient != nil && len(cfg.Kafka.Brokers) > 0 {
		mq.InitProducer(cfg.Kafka)
		defer func() {
			if err := mq.CloseProducer(); err != nil {
				logger.Error(ctx, "关闭 Kafka Producer 失败", logger.ErrorField("error", err))
			}
		}()

		consumer := mq.NewRetryConsumer(cfg.Kafka, redisClient)
		go func() {
			logger.Info(ctx, "Redis 重试消费者启动中",
				logger.String("topic", cfg.Kafka.RedisRetryTopic),
				logger.String("group_id", cfg.Kafka.ConsumerGroup),
			)
			if err := consumer.Run(ctx); err != nil {
				logger.Error(ctx, "Redis 重试消费者运行错误", logger.ErrorField("error", err))
			}
		}()
	}

	// 6. 初始化小组件
	if err := util.InitSnowflake(cfg.Server.NodeID); err != nil {
		log.Fatalf("初始化雪花算法失败: %v", err)
	}
	if err := async.Init(cfg.Async); err != nil {
		log.Fatalf("初始化协程池失败: %v", err)
	}
	defer func() {
		if err := async.Release(); err != nil {
			logger.Warn(context.Background(), "释放协程池超时", logger.ErrorField("error", err))
		}
	}()

	var store minio.Store
	if client, err := minio.Build(cfg.MinIO); err != nil {
		// 对象存储不可用时只影响带图片的请求
		logger.Warn(ctx, "MinIO 初始化失败，图片上传不可用", logger.ErrorField("error", err))
		store = minio.Unavailable()
	} else {
		store = minio.NewBreakerStore(client, cfg.MinIO.BreakerFailures, cfg.MinIO.BreakerTimeout)
	}

	tokens := util.NewTokenManager(cfg.JWT)
	mailer := mail.NewSender(cfg.Mail)

	// 7. 组装依赖 - Repository 层
	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db, redisClient)
	followRepo := repository.NewFollowRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	postRepo := repository.NewPostRepository(db)
	pageCache := repository.NewPageCacheRepository(redisClient)
	tokenRepo := repository.NewTokenRepository(redisClient)

	// 8. 组装依赖 - Service 层
	revalidator := service.NewCacheRevalidator(pageCache)
	allocator := service.NewIdentityAllocator(profileRepo)
	authService := service.NewAuthService(accountRepo, profileRepo, tokenRepo, allocator, tokens, mailer, cfg.Mail.ResetURL)
	followService := service.NewFollowService(followRepo, profileRepo, revalidator)
	postService := service.NewPostService(postRepo, reactionRepo, profileRepo, revalidator, store)
	profileService := service.NewProfileService(profileRepo, postRepo, pageCache, followService, revalidator, store)
	reactionService := service.NewReactionService(reactionRepo, postRepo)

	// 9. 组装依赖 - Handler 层
	handlers := router.Handlers{
		Auth:    v1.NewAuthHandler(authService),
		Profile: v1.NewProfileHandler(profileService, postService),
		Follow:  v1.NewFollowHandler(followService),
		Post:    v1.NewPostHandler(postService, reactionService),
	}

	// 10. 启动 HTTP Server
	gin.SetMode(cfg.Server.Mode)
	engine := router.InitRouter(handlers, router.Options{
		Tokens:         tokens,
		Revocation:     tokenRepo,
		IPLimiter:      middleware.NewRateLimiter(redisClient, cfg.RateLimit.IPRate, cfg.RateLimit.IPBurst, cfg.RateLimit.LocalCache),
		UserLimiter:    middleware.NewRateLimiter(redisClient, cfg.RateLimit.UserRate, cfg.RateLimit.UserBurst, cfg.RateLimit.LocalCache),
		Server:         cfg.Server,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "PostServer 启动中", logger.String("address", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "HTTP Server 启动失败", logger.ErrorField("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "收到退出信号，开始优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP Server 关闭失败", logger.ErrorField("error", err))
	}
	logger.Info(shutdownCtx, "PostServer 已退出")
}
