package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"spark-feed/config"
	"spark-feed/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// UserIDHeader carries the caller's identity, set by the upstream gateway
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

// Identity stores the caller's user ID in the gin context. Requests without
// the header are served as the anonymous user.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if id == "" {
			id = models.AnonymousUserID
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// RequireUser rejects anonymous callers with 401
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID(c) == models.AnonymousUserID {
			respondUnauthorized(c, UserIDHeader+" header is required")
			return
		}
		c.Next()
	}
}

// userID returns the identity set by Identity
func userID(c *gin.Context) string {
	if id := c.GetString(userIDKey); id != "" {
		return id
	}
	return models.AnonymousUserID
}

// RateLimiter limits requests per client IP with a token bucket each
type RateLimiter struct {
	limiters  map[string]*rateLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
	stopOnce  sync.Once
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a rate limiter and starts its idle-entry cleanup
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Limit(cfg.RequestsPerSecond),
		burst:     cfg.Burst,
		stopClean: make(chan struct{}),
	}
	go rl.startCleanup(10 * time.Minute)
	return rl
}

// Allow reports whether a request from ip may proceed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// Middleware rejects clients over their limit with 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			respondWithError(c, http.StatusTooManyRequests, "Too many requests", "Rate limit exceeded, slow down")
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-time.Hour))
		case <-rl.stopClean:
			return
		}
	}
}

// cleanup drops limiters idle since before threshold
func (rl *RateLimiter) cleanup(threshold time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, ip)
		}
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopClean) })
}
