package middlewares

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window limiter shared across replicas. Counters
// live in redis under one key per client and window.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
}

func (rl *RedisRateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = c.ClientIP()
		}

		ctx := c.Request.Context()
		bucket := fmt.Sprintf("ratelimit:%s", key)

		count, err := rl.rdb.Incr(ctx, bucket).Result()
		if err != nil {
			// redis being down should not take the API down with it
			slog.WarnContext(ctx, "rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if count == 1 {
			// first hit opens the window
			_ = rl.rdb.Expire(ctx, bucket, rl.window).Err()
		}

		if count > int64(rl.limit) {
			wait := rl.window

			if ttl, err := rl.rdb.TTL(ctx, bucket).Result(); err == nil && ttl > 0 {
				wait = ttl
			}

			tooManyRequests(c, wait)

			return
		}

		c.Next()
	}
}
