package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/pageza/foodgram/backend/internal/logging"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per caller in fixed redis windows. Without
// redis, or while redis is failing, it falls back to an in-process token
// bucket per caller.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
		local:  make(map[string]*localBucket),
	}
}

// NewRecipeWriteRateLimiter limits recipe creates, updates and deletes per user per hour
func NewRecipeWriteRateLimiter(redisClient *redis.Client, limit int) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_write",
	})
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting.
// Authenticated callers are keyed by user id, others by client IP.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Limit <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if userID, exists := c.Get(ContextUserID); exists {
			key = fmt.Sprintf("user:%v", userID)
		}

		allowed, remaining, resetTime := rl.IsAllowed(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"errors": fmt.Sprintf("Request limit of %d per %v exceeded.", rl.config.Limit, rl.config.Window),
			})
			return
		}

		c.Next()
	}
}

// IsAllowed records one request for key and reports whether it fits the
// limit, how many requests remain and when the window resets
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time) {
	if rl.config.Limit <= 0 {
		return true, 0, rl.now()
	}
	if rl.redis != nil {
		allowed, remaining, reset, err := rl.redisAllowed(ctx, key)
		if err == nil {
			return allowed, remaining, reset
		}
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("rate limit store unavailable, using local limiter")
	}
	return rl.localAllowed(key)
}

func (rl *RateLimiter) redisAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

func (rl *RateLimiter) localAllowed(key string) (bool, int, time.Time) {
	now := rl.now()

	rl.mu.Lock()
	rl.evictIdle(now)
	bucket, ok := rl.local[key]
	if !ok {
		every := rl.config.Window / time.Duration(rl.config.Limit)
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.local[key] = bucket
	}
	bucket.lastSeen = now
	rl.mu.Unlock()

	limiter := bucket.limiter
	allowed := limiter.AllowN(now, 1)
	remaining := int(limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	// time until the bucket is full again
	missing := float64(rl.config.Limit) - limiter.TokensAt(now)
	reset := now.Add(time.Duration(missing * float64(rl.config.Window) / float64(rl.config.Limit)))
	return allowed, remaining, reset
}

// evictIdle drops buckets untouched for a whole window. Such a bucket has
// refilled completely, so a fresh one behaves the same. Sweeps run at most
// once per window. rl.mu must be held.
func (rl *RateLimiter) evictIdle(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.config.Window {
		return
	}
	rl.lastSweep = now
	for key, bucket := range rl.local {
		if now.Sub(bucket.lastSeen) >= rl.config.Window {
			delete(rl.local, key)
		}
	}
}

// localBuckets reports how many callers the in-process limiter tracks
func (rl *RateLimiter) localBuckets() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.local)
}
