package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/yourorg/market-gateway/internal/config"
	"github.com/yourorg/market-gateway/internal/utils"

	"github.com/gin-gonic/gin"
)

// idleBucketTTL is how long an untouched client bucket is kept
const idleBucketTTL = 10 * time.Minute

// RateLimiter implements a per-client token bucket
type RateLimiter struct {
	tokensPerSec float64
	maxTokens    float64
	clients      map[string]*TokenBucket
	lastSweep    time.Time
	now          func() time.Time
	mu           sync.Mutex
}

// TokenBucket holds the remaining tokens of one client
type TokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerMinute, burstSize int) *RateLimiter {
	return &RateLimiter{
		tokensPerSec: float64(requestsPerMinute) / 60.0,
		maxTokens:    float64(burstSize),
		clients:      make(map[string]*TokenBucket),
		now:          time.Now,
	}
}

// Allow checks if a request is allowed based on rate limits
func (r *RateLimiter) Allow(clientKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	// Get or create bucket for the client
	bucket, exists := r.clients[clientKey]
	if !exists {
		bucket = &TokenBucket{tokens: r.maxTokens, lastRefill: now}
		r.clients[clientKey] = bucket
	}

	// Refill tokens based on time elapsed
	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.lastRefill = now
	bucket.tokens = min(bucket.tokens+elapsed*r.tokensPerSec, r.maxTokens)

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true
	}

	return false
}

// sweep drops buckets that have been idle long enough to be full again
func (r *RateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < idleBucketTTL {
		return
	}
	for key, bucket := range r.clients {
		if now.Sub(bucket.lastRefill) >= idleBucketTTL {
			delete(r.clients, key)
		}
	}
	r.lastSweep = now
}

// RateLimit creates middleware for rate limiting inbound requests in memory
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return rateLimitWith(NewRateLimiter(cfg.RequestsPerMinute, cfg.BurstSize), cfg.ClientIPHeaderName)
}

func rateLimitWith(limiter *RateLimiter, headerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(clientKey(c, headerName)) {
			utils.SendErrorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// clientKey identifies the caller, preferring a proxy-supplied header
func clientKey(c *gin.Context, headerName string) string {
	if headerName != "" {
		if headerIP := c.GetHeader(headerName); headerIP != "" {
			return headerIP
		}
	}
	return c.ClientIP()
}
