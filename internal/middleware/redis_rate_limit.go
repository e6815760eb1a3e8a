package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yourorg/market-gateway/internal/config"
	"github.com/yourorg/market-gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisLimitTimeout = 200 * time.Millisecond

// fixedWindowScript counts a request in the current one-minute window.
// The limit is requests per minute plus the burst allowance.
// Returns {allowed, remaining, reset_unix}.
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local reset_time = tonumber(ARGV[2])

local current = redis.call('INCR', key)
if current == 1 then
	redis.call('EXPIREAT', key, reset_time + 1)
end

if current > limit then
	return {0, 0, reset_time}
end
return {1, limit - current, reset_time}
`)

// RedisRateLimit creates middleware for rate limiting inbound requests across
// instances. Redis failures let the request through.
func RedisRateLimit(redisClient *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) gin.HandlerFunc {
	limit := cfg.RequestsPerMinute + cfg.BurstSize

	return func(c *gin.Context) {
		key := clientKey(c, cfg.ClientIPHeaderName)

		allowed, remaining, resetTime, err := checkRateLimit(c.Request.Context(), redisClient, key, limit, time.Now())
		if err != nil {
			logger.Error("Rate limit check failed", zap.Error(err), zap.String("client_ip", key))
			c.Next() // Continue on error
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if !allowed {
			c.Header("Retry-After", strconv.FormatInt(max(resetTime-time.Now().Unix(), 1), 10))
			utils.SendErrorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkRateLimit counts one request for key in the window containing now
func checkRateLimit(ctx context.Context, redisClient *redis.Client, key string, limit int, now time.Time) (bool, int, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, redisLimitTimeout)
	defer cancel()

	window := now.Unix() / 60
	resetTime := (window + 1) * 60
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	result, err := fixedWindowScript.Run(ctx, redisClient, []string{windowKey}, limit, resetTime).Result()
	if err != nil {
		return false, 0, 0, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected rate limit script result: %v", result)
	}
	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	reset, _ := values[2].(int64)

	return allowed == 1, int(remaining), reset, nil
}
