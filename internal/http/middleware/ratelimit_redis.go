package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// UseRedis sets the shared client for the rate limiters. A nil client makes
// every limiter built afterwards count in process memory instead.
func UseRedis(client *redis.Client) {
	redisClient = client
}

// RedisRateLimit implements a fixed-window rate limiter per client IP using
// Redis INCR/EXPIRE. key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return fixedWindow("rl", maxRequests, window, clientIP)
}

// UserRateLimit limits requests per authenticated user. JWT must run first.
// key format: <prefix>:<window_seconds>:<user_id>
func UserRateLimit(prefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	limit := fixedWindow(prefix, maxRequests, window, userKey)
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		limit(c)
	}
}

func userKey(c *gin.Context) string {
	id, _ := UserID(c)
	return strconv.FormatInt(id, 10)
}

func fixedWindow(prefix string, maxRequests int, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	client := redisClient
	if client == nil {
		return SimpleRateLimit(maxRequests, window, func(c *gin.Context) string {
			return prefix + ":" + keyFn(c)
		})
	}

	return func(c *gin.Context) {
		key := prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + keyFn(c)
		ctx := c.Request.Context()

		val, err := client.Incr(ctx, key).Result()
		if err != nil {
			// fail-open on Redis errors
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			client.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
