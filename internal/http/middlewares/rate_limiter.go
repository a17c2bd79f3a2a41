package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window in-memory limiter. Good enough for a single
// instance; use the Redis-backed limiter when running more than one replica.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

const staleSweepThreshold = 4096

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
	}
}

// allow counts one hit for key. When the hit lands over the limit it
// reports how long the caller has to wait for the window to turn over.
func (rl *RateLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]

	if !ok || now.After(b.windowEnd) {
		// opening a window is also when dead buckets get swept,
		// the map would otherwise grow with every distinct address
		if len(rl.clients) >= staleSweepThreshold {
			rl.sweepLocked(now)
		}

		rl.clients[key] = &clientBucket{count: 1, windowEnd: now.Add(rl.window)}

		return true, 0
	}

	if b.count >= rl.limit {
		return false, b.windowEnd.Sub(now)
	}

	b.count++

	return true, 0
}

// sweepLocked drops buckets whose window has passed. Callers hold the lock.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for key, b := range rl.clients {
		if now.After(b.windowEnd) {
			delete(rl.clients, key)
		}
	}
}

// RateLimiterMiddleware enforces the limit for a derived key.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = c.ClientIP()
		}

		ok, wait := rl.allow(key, time.Now())

		if !ok {
			tooManyRequests(c, wait)

			return
		}

		c.Next()
	}
}

// KeyByIP rate limits unauthenticated endpoints by client address.
// gin resolves proxy headers when trusted proxies are configured.
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// tooManyRequests writes the shared 429 shape for both limiters.
func tooManyRequests(c *gin.Context, wait time.Duration) {
	seconds := int(wait.Seconds())

	if seconds < 0 {
		seconds = 0
	}

	c.Header("Retry-After", strconv.Itoa(seconds))

	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "Too many requests. Please try again shortly.",
	})
}
