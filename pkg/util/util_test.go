package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PostServer/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	cfg := config.DefaultJWTConfig()
	cfg.AccessTTL = time.Hour
	m := NewTokenManager(cfg)

	t.Run("round_trip", func(t *testing.T) {
		token, claims, err := m.GenerateToken("user-1")
		require.NoError(t, err)

		parsed, err := m.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", parsed.UserUUID)
		assert.Equal(t, claims.ID, parsed.ID)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := m.GenerateToken("user-1")
		require.NoError(t, err)

		later := NewTokenManager(cfg)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.ParseToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token, _, err := m.GenerateToken("user-1")
		require.NoError(t, err)

		other := cfg
		other.Secret = "another"
		_, err = NewTokenManager(other).ParseToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ParseToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestPassword(t *testing.T) {
	hashed, err := HashPassword("password123")
	require.NoError(t, err)

	ok, err := CheckPassword(hashed, "password123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hashed, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "x")
	assert.Error(t, err)
}

func TestGenID(t *testing.T) {
	require.NoError(t, InitSnowflake(3))
	a, b := GenID(), GenID()
	assert.NotEqual(t, a, b)
	assert.Greater(t, b, a)
}

func TestTraceLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceLogger())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("trace_id")) })

	t.Run("reuses_upstream_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, "upstream-id")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "upstream-id", w.Body.String())
		assert.Equal(t, "upstream-id", w.Header().Get(HeaderXRequestID))
	})

	t.Run("generates_id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, IsUUID(w.Body.String()))
	})
}
