package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"PostServer/consts"
	rediskey "PostServer/consts/redisKey"
	"PostServer/pkg/logger"
	"PostServer/pkg/result"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// luaTokenBucket Redis 令牌桶
//
//	KEYS[1]: 限流 key
//	ARGV[1]: 当前时间戳（毫秒）
//	ARGV[2]: 桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 本次消耗的令牌数
//
// 返回 1 允许通过，0 令牌不足
const luaTokenBucket = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local tokens = tonumber(info[1])
local last_time = tonumber(info[2])
if tokens == nil then
    tokens = capacity
end
if last_time == nil then
    last_time = now
end

local refill = math.floor((math.max(0, now - last_time) * rate) / 1000)
if refill > 0 then
    tokens = math.min(capacity, tokens + refill)
    last_time = now
end

local allowed = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_time', last_time)
redis.call('EXPIRE', key, math.max(60, math.ceil(capacity / rate) * 2))
return allowed
`

// redisCheckTimeout 单次限流检查的 Redis 超时，防止 Redis 变慢拖住请求
const redisCheckTimeout = 50 * time.Millisecond

// RateLimiter 令牌桶限流器
// 优先使用 Redis 做全局限流；Redis 不可用时退化为进程内限流，按 key 缓存 rate.Limiter
type RateLimiter struct {
	client *redis.Client
	rate   float64
	burst  int

	mu    sync.Mutex
	local *lru.Cache[string, *rate.Limiter]
	now   func() time.Time
}

// NewRateLimiter 创建限流器
// client 可以为 nil，此时只做进程内限流
// localSize 为进程内限流器数量上限，超出后淘汰最久未使用的 key
func NewRateLimiter(client *redis.Client, ratePerSecond float64, burst, localSize int) *RateLimiter {
	if localSize <= 0 {
		localSize = 10000
	}
	cache, _ := lru.New[string, *rate.Limiter](localSize)
	return &RateLimiter{
		client: client,
		rate:   ratePerSecond,
		burst:  burst,
		local:  cache,
		now:    time.Now,
	}
}

// Allow 检查 key 是否还有令牌
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	if l.rate <= 0 || l.burst <= 0 {
		return true
	}
	if l.client != nil {
		redisCtx, cancel := context.WithTimeout(ctx, redisCheckTimeout)
		res, err := l.client.Eval(redisCtx, luaTokenBucket, []string{key}, l.now().UnixMilli(), l.burst, l.rate, 1).Result()
		cancel()
		if err == nil {
			if allowed, ok := res.(int64); ok {
				return allowed == 1
			}
			logger.Warn(ctx, "Redis 限流返回值类型错误，使用本地限流",
				logger.String("key", key),
				logger.Any("result", res),
			)
		} else {
			logger.Warn(ctx, "Redis 限流检查失败，使用本地限流",
				logger.String("key", key),
				logger.ErrorField("error", err),
			)
		}
	}
	return l.localLimiter(key).AllowN(l.now(), 1)
}

func (l *RateLimiter) localLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.local.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(l.rate), l.burst)
	l.local.Add(key, lim)
	return lim
}

// IsBlacklisted 检查 IP 是否在黑名单中，Redis 异常时视为不在
func (l *RateLimiter) IsBlacklisted(ctx context.Context, ip string) bool {
	if l.client == nil {
		return false
	}
	exists, err := l.client.SIsMember(ctx, rediskey.IPBlacklistKey(), ip).Result()
	if err != nil {
		logger.Warn(ctx, "Redis 黑名单检查失败，降级放行",
			logger.String("ip", ip),
			logger.ErrorField("error", err),
		)
		return false
	}
	return exists
}

// IPRateLimitMiddleware IP 级别限流，先查黑名单再消耗令牌
func IPRateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := NewContextWithGin(c)
		ip := ClientIPFromGinContext(c)
		if ip == "" {
			ip = GetClientIP(c)
		}
		if ip == "" {
			c.Next()
			return
		}

		if limiter.IsBlacklisted(ctx, ip) {
			logger.Warn(ctx, "IP 在黑名单中，拒绝访问",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
			)
			rateLimitedTotal.WithLabelValues("blacklist").Inc()
			result.Abort(c, http.StatusForbidden, consts.CodePermissionDeny)
			return
		}

		if !limiter.Allow(ctx, rediskey.IPRateLimitKey(ip)) {
			logger.Warn(ctx, "IP 请求被限流",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			rateLimitedTotal.WithLabelValues("ip").Inc()
			result.Abort(c, http.StatusTooManyRequests, consts.CodeTooManyRequests)
			return
		}
		c.Next()
	}
}

// UserRateLimitMiddleware 用户级别限流，需放在 JWTAuthMiddleware 之后
func UserRateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userUUID, ok := GetUserUUID(c)
		if !ok {
			c.Next()
			return
		}
		ctx := NewContextWithGin(c)
		if !limiter.Allow(ctx, rediskey.UserRateLimitKey(userUUID)) {
			logger.Warn(ctx, "用户请求被限流",
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			rateLimitedTotal.WithLabelValues("user").Inc()
			result.Abort(c, http.StatusTooManyRequests, consts.CodeTooManyRequests)
			return
		}
		c.Next()
	}
}
