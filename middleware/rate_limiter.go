package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LimiterStore answers whether one more request is allowed for a key. The
// clock is passed in so behavior is deterministic under test and the store
// can be shared across service instances.
type LimiterStore interface {
	Allow(ctx context.Context, key string, perMin int, now time.Time) (bool, error)
}

// MemoryLimiterStore keeps per-key token buckets in process. Suitable for a
// single instance; use the redis store when running more than one.
type MemoryLimiterStore struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewMemoryLimiterStore constructs an empty in-process store.
func NewMemoryLimiterStore() *MemoryLimiterStore {
	return &MemoryLimiterStore{buckets: make(map[string]*rate.Limiter)}
}

func (s *MemoryLimiterStore) Allow(_ context.Context, key string, perMin int, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.buckets[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)
		s.buckets[key] = limiter
	}
	return limiter.AllowN(now, 1), nil
}

// RedisLimiterStore counts requests in fixed one-minute windows keyed by
// actor, correct across multiple service instances.
type RedisLimiterStore struct {
	Client *redis.Client
}

func (s *RedisLimiterStore) Allow(ctx context.Context, key string, perMin int, now time.Time) (bool, error) {
	window := now.Unix() / 60
	redisKey := "ratelimit:" + key + ":" + time.Unix(window*60, 0).UTC().Format("1504")

	pipe := s.Client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() <= int64(perMin), nil
}

// RateLimiter applies a per-actor request budget to mutating endpoints.
type RateLimiter struct {
	Store  LimiterStore
	PerMin int
	Now    func() time.Time
	Logger *zap.Logger
}

// Middleware limits requests per authenticated actor, falling back to the
// client IP for unauthenticated paths.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		if rl.Now != nil {
			now = rl.Now()
		}
		key := c.GetString(ctxActorID)
		if key == "" {
			key = getClientIP(c)
		}

		allowed, err := rl.Store.Allow(c.Request.Context(), key, rl.PerMin, now)
		if err != nil {
			// A broken limiter store must not take the API down.
			rl.Logger.Error("rate limiter store error", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			rl.Logger.Warn("Rate limit exceeded", zap.String("key", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
