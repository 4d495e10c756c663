package server

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter is a fixed-window counter keyed by caller. Stale windows are
// pruned opportunistically so the map does not grow with one-off callers.
type rateLimiter struct {
	limit  int
	window time.Duration
	mu     sync.Mutex
	items  map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		items:  make(map[string]*rateLimitEntry),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) > 10000 {
		r.pruneLocked(now)
	}

	entry := r.items[key]
	if entry == nil || now.Sub(entry.windowStart) > r.window {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}

	if entry.count >= r.limit {
		return false
	}

	entry.count++
	return true
}

func (r *rateLimiter) pruneLocked(now time.Time) {
	for key, entry := range r.items {
		if now.Sub(entry.windowStart) > r.window {
			delete(r.items, key)
		}
	}
}

// rateLimited throttles mutating endpoints per user, falling back to the
// client address when the request carries no user identity.
func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("user_id")
		if key == "" {
			key = c.GetHeader("X-User-Id")
		}
		if key == "" {
			key = c.ClientIP()
		}
		if !s.limiter.Allow(key) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
