package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"PostServer/config"
	rediskey "PostServer/consts/redisKey"
	"PostServer/pkg/logger"
	"PostServer/pkg/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var middlewareLoggerOnce sync.Once

func setupMiddlewareTest() {
	middlewareLoggerOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type fakeRevocation struct {
	isRevokedFn func(ctx context.Context, jti string) (bool, error)
}

func (f *fakeRevocation) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if f.isRevokedFn == nil {
		return false, nil
	}
	return f.isRevokedFn(ctx, jti)
}

func newAuthEngine(tokens *util.TokenManager, revoked RevocationChecker) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(tokens, revoked), func(c *gin.Context) {
		uid, _ := GetUserUUID(c)
		jti, exp := GetTokenID(c)
		c.JSON(http.StatusOK, gin.H{"uid": uid, "jti": jti, "has_exp": !exp.IsZero()})
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	setupMiddlewareTest()
	tokens := util.NewTokenManager(config.JWTConfig{Secret: "s", Issuer: "test", AccessTTL: time.Hour})
	token, claims, err := tokens.GenerateToken("u-1")
	require.NoError(t, err)

	expiredManager := util.NewTokenManager(config.JWTConfig{Secret: "s", Issuer: "test", AccessTTL: -time.Minute})
	expired, _, err := expiredManager.GenerateToken("u-1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		revoked    bool
		wantStatus int
		wantBody   string
	}{
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized, wantBody: `"code":20001`},
		{name: "bad_scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: `"code":20002`},
		{name: "garbage_token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantBody: `"code":20002`},
		{name: "expired_token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantBody: `"code":20003`},
		{name: "revoked_token", header: "Bearer " + token, revoked: true, wantStatus: http.StatusUnauthorized, wantBody: `"code":20002`},
		{name: "valid_token", header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: `"jti":"` + claims.ID + `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revoked := &fakeRevocation{isRevokedFn: func(_ context.Context, jti string) (bool, error) {
				return tt.revoked && jti == claims.ID, nil
			}}
			r := newAuthEngine(tokens, revoked)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}

	t.Run("revocation_store_down_allows", func(t *testing.T) {
		r := newAuthEngine(tokens, &fakeRevocation{isRevokedFn: func(context.Context, string) (bool, error) {
			return false, errors.New("redis down")
		}})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"uid":"u-1"`)
	})
}

func newLimitedEngine(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ClientIPMiddleware())
	r.GET("/ping", mw, func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func doPing(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestIPRateLimitMiddleware(t *testing.T) {
	setupMiddlewareTest()
	fixed := time.UnixMilli(1700000000000)

	t.Run("redis_token_bucket", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		limiter := NewRateLimiter(client, 1, 2, 16)
		limiter.now = func() time.Time { return fixed }
		r := newLimitedEngine(IPRateLimitMiddleware(limiter))

		assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
		assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1"))
		assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.2"))
		assert.True(t, mr.Exists(rediskey.IPRateLimitKey("10.0.0.1")))

		limiter.now = func() time.Time { return fixed.Add(time.Second) }
		assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
	})

	t.Run("blacklisted_ip", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		_, err := mr.SAdd(rediskey.IPBlacklistKey(), "10.0.0.9")
		require.NoError(t, err)
		r := newLimitedEngine(IPRateLimitMiddleware(NewRateLimiter(client, 100, 100, 16)))

		assert.Equal(t, http.StatusForbidden, doPing(r, "10.0.0.9"))
		assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.8"))
	})

	t.Run("redis_down_falls_back_to_local", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		mr.Close()
		limiter := NewRateLimiter(client, 1, 1, 16)
		limiter.now = func() time.Time { return fixed }
		r := newLimitedEngine(IPRateLimitMiddleware(limiter))

		assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1"))
	})

	t.Run("disabled_limiter", func(t *testing.T) {
		r := newLimitedEngine(IPRateLimitMiddleware(NewRateLimiter(nil, 0, 0, 0)))
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
		}
	})
}

func TestUserRateLimitMiddleware(t *testing.T) {
	setupMiddlewareTest()
	fixed := time.UnixMilli(1700000000000)
	limiter := NewRateLimiter(nil, 1, 1, 16)
	limiter.now = func() time.Time { return fixed }

	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set("user_uuid", uid)
		}
	}, UserRateLimitMiddleware(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Test-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do("u-1"))
	assert.Equal(t, http.StatusTooManyRequests, do("u-1"))
	assert.Equal(t, http.StatusOK, do("u-2"))
	// 未登录请求不参与用户限流
	assert.Equal(t, http.StatusOK, do(""))
	assert.Equal(t, http.StatusOK, do(""))
}

func TestGinRecovery(t *testing.T) {
	setupMiddlewareTest()
	r := gin.New()
	r.Use(GinRecovery(true))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":30001`)
}

func TestTimeoutMiddleware(t *testing.T) {
	setupMiddlewareTest()
	r := gin.New()
	r.Use(TimeoutMiddleware(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":30003`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCorsMiddleware(t *testing.T) {
	setupMiddlewareTest()
	r := gin.New()
	r.Use(CorsMiddleware("http://app.local"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestClientIPMiddleware(t *testing.T) {
	setupMiddlewareTest()
	r := gin.New()
	r.Use(ClientIPMiddleware())
	r.GET("/ip", func(c *gin.Context) {
		c.String(http.StatusOK, ClientIPFromGinContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.7", w.Body.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	setupMiddlewareTest()
	tokens := util.NewTokenManager(config.JWTConfig{Secret: "s", Issuer: "test", AccessTTL: time.Hour})
	token, _, err := tokens.GenerateToken("u-1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/feed", OptionalAuthMiddleware(tokens, nil), func(c *gin.Context) {
		uid, _ := GetUserUUID(c)
		c.String(http.StatusOK, uid)
	})

	for name, header := range map[string]string{
		"anonymous":     "",
		"invalid_token": "Bearer broken",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/feed", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Body.String())
		})
	}

	t.Run("valid_token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "u-1", w.Body.String())
	})
}
