package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vuka/config"
	"vuka/internal/auth"
	"vuka/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 168 * time.Hour,
		Issuer:        "vuka-test",
	}
}

func protectedRouter(cfg *config.JWTConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	cfg := testJWTConfig()
	r := protectedRouter(cfg)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer not-a-token").Code)

	token, err := auth.GenerateAccessToken(cfg, 42, "u@x.cm", domain.RoleUser)
	require.NoError(t, err)
	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiry = -time.Minute
	token, err := auth.GenerateAccessToken(cfg, 1, "u@x.cm", domain.RoleUser)
	require.NoError(t, err)

	r := protectedRouter(testJWTConfig())
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+token).Code)
}

func TestAdminRequired(t *testing.T) {
	cfg := testJWTConfig()
	r := protectedRouter(cfg, AdminRequired())

	userToken, err := auth.GenerateAccessToken(cfg, 1, "u@x.cm", domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer "+userToken).Code)

	adminToken, err := auth.GenerateAccessToken(cfg, 2, "admin@x.cm", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+adminToken).Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)

	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"))
	// Other keys have their own budget.
	assert.True(t, limiter.Allow("5.6.7.8"))
}

func TestRateLimiterWindowRollover(t *testing.T) {
	limiter := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, limiter.Allow("k"))
	assert.False(t, limiter.Allow("k"))
	time.Sleep(15 * time.Millisecond)
	assert.True(t, limiter.Allow("k"))
}

func TestRateLimitByIPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimitByIP(NewRateLimiter(1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	get := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusTooManyRequests, get())
}

func TestRateLimitByUserMiddleware(t *testing.T) {
	cfg := testJWTConfig()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", AuthRequired(cfg), RateLimitByUser(NewRateLimiter(1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	get := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		return w.Code
	}

	t1, err := auth.GenerateAccessToken(cfg, 1, "a@x.cm", domain.RoleUser)
	require.NoError(t, err)
	t2, err := auth.GenerateAccessToken(cfg, 2, "b@x.cm", domain.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(t1))
	assert.Equal(t, http.StatusTooManyRequests, get(t1))
	// A different account behind the same address keeps its own budget.
	assert.Equal(t, http.StatusOK, get(t2))
}
