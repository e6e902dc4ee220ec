package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window per-client limiter kept in memory. It is
// intentionally simple: one process, one window counter per key.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*windowCounter
	now     func() time.Time
}

type windowCounter struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*windowCounter),
		now:     time.Now,
	}
	go rl.sweep()
	return rl
}

// Allow records a hit for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	wc, ok := rl.clients[key]
	if !ok || now.After(wc.resetAt) {
		rl.clients[key] = &windowCounter{count: 1, resetAt: now.Add(rl.window)}
		return true
	}
	wc.count++
	return wc.count <= rl.limit
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for range ticker.C {
		now := rl.now()
		rl.mu.Lock()
		for key, wc := range rl.clients {
			if now.After(wc.resetAt) {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// LimitByIP rejects clients that exceed the limiter's budget with 429.
func (rl *RateLimiter) LimitByIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "rate_limited", "message": "Too many requests from this IP, please try again later."},
			})
			return
		}
		c.Next()
	}
}
