package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func post(r http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	return rr
}

func TestLocalRateLimit(t *testing.T) {
	rl := NewRecipeWriteRateLimiter(nil, 2)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := limitedRouter(rl)

	rr := post(r)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusCreated, post(r).Code)

	rr = post(r)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), `"errors"`)

	// half the window refills one request
	now = now.Add(30 * time.Minute)
	assert.Equal(t, http.StatusCreated, post(r).Code)
}

func TestLocalRateLimitEvictsIdleCallers(t *testing.T) {
	rl := NewRecipeWriteRateLimiter(nil, 2)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"ip:10.0.0.1", "ip:10.0.0.2", "user:a"} {
		allowed, _, _ := rl.IsAllowed(ctx, key)
		require.True(t, allowed)
	}
	assert.Equal(t, 3, rl.localBuckets())

	// user:a stays busy, the two IPs go quiet
	now = now.Add(40 * time.Minute)
	rl.IsAllowed(ctx, "user:a")
	now = now.Add(30 * time.Minute)
	rl.IsAllowed(ctx, "user:a")
	assert.Equal(t, 1, rl.localBuckets())

	// a returning caller starts with a full bucket
	allowed, remaining, _ := rl.IsAllowed(ctx, "ip:10.0.0.1")
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, 2, rl.localBuckets())
}

func TestRateLimitDisabled(t *testing.T) {
	r := limitedRouter(NewRecipeWriteRateLimiter(nil, 0))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusCreated, post(r).Code)
	}
}

func TestRateLimitFallsBackWhenRedisDown(t *testing.T) {
	// nothing listens on this port
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()

	rl := NewRateLimiter(rdb, RateLimitConfig{Window: time.Minute, Limit: 1, KeyPrefix: "test"})
	allowed, _, _ := rl.IsAllowed(context.Background(), "user:1")
	assert.True(t, allowed)
	allowed, remaining, _ := rl.IsAllowed(context.Background(), "user:1")
	assert.False(t, allowed)
	assert.Zero(t, remaining)
}

func TestRedisRateLimit(t *testing.T) {
	rdb := testhelpers.SetupRedis(t)

	rl := NewRateLimiter(rdb, RateLimitConfig{Window: time.Hour, Limit: 2, KeyPrefix: "test_limit"})
	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		allowed, _, reset := rl.IsAllowed(ctx, "user:42")
		assert.Equal(t, want, allowed, "request %d", i+1)
		assert.True(t, reset.After(time.Now()))
	}

	keys, err := rdb.Keys(ctx, "test_limit:user:42:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	ttl, err := rdb.TTL(ctx, keys[0]).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
