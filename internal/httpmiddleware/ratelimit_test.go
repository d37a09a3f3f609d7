package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimitsAndRefills(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	l := NewSimpleTokenBucket(2, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(ctx, "a"))
	assert.True(t, l.Allow(ctx, "a"))
	assert.False(t, l.Allow(ctx, "a"))
	assert.True(t, l.Allow(ctx, "b"), "keys are independent")

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow(ctx, "a"))
	assert.False(t, l.Allow(ctx, "a"))
}

func newRedisLimiter(t *testing.T, perMinute int) (*RedisWindow, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisWindow(client, perMinute), mr
}

func TestRedisWindow(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t, 2)
	now := time.Unix(1_700_000_040, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(ctx, "1.2.3.4"))
	assert.True(t, l.Allow(ctx, "1.2.3.4"))
	assert.False(t, l.Allow(ctx, "1.2.3.4"))
	assert.True(t, l.Allow(ctx, "5.6.7.8"))

	key := "examportal:ratelimit:1.2.3.4:" + "28333334"
	assert.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	now = now.Add(time.Minute)
	assert.True(t, l.Allow(ctx, "1.2.3.4"))
}

func TestRedisWindowFailsOpen(t *testing.T) {
	l, mr := newRedisLimiter(t, 1)
	mr.Close()
	assert.True(t, l.Allow(context.Background(), "x"))
	assert.True(t, l.Allow(context.Background(), "x"))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewSimpleTokenBucket(1, 1)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(RequestIDHeader)
	require.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
