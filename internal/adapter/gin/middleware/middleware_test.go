package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"user-admin-service/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupLimiter(t *testing.T, cfg RateLimiterConfig) (*RateLimiter, *miniredis.Miniredis, *time.Time) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, cfg, metrics.NewProm(), zaptest.NewLogger(t))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, mr, &now
}

func limitedEngine(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/api/users", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/users", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func do(r http.Handler, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_ExceedBurst(t *testing.T) {
	rl, _, _ := setupLimiter(t, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 2, Enabled: true})
	r := limitedEngine(rl)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)

	w := do(r, http.MethodGet, "/api/users", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiter_Refill(t *testing.T) {
	rl, _, now := setupLimiter(t, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: true})
	r := limitedEngine(rl)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)

	*now = now.Add(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)
}

func TestRateLimiter_SeparateBuckets(t *testing.T) {
	rl, _, _ := setupLimiter(t, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: true})
	r := limitedEngine(rl)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.2").Code, "other client")
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/users", "10.0.0.1").Code, "other method")
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl, mr, _ := setupLimiter(t, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1})
	r := limitedEngine(rl)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)
	}
	assert.Empty(t, mr.Keys())
}

func TestRateLimiter_NilLimiter(t *testing.T) {
	var rl *RateLimiter
	r := limitedEngine(rl)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	rl, mr, _ := setupLimiter(t, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1, Enabled: true})
	r := limitedEngine(rl)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users", "10.0.0.1").Code)
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "10.0.0.1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	do(r, http.MethodGet, "/api/users/3", "10.0.0.1")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/users/:id", fields["route"])
	assert.Equal(t, "/api/users/3", fields["path"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"far too long"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
