// middleware/rate_limiter.go

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
)

// LimitFunc counts one request for key and reports whether it is allowed.
type LimitFunc func(ctx context.Context, key string, limit int, per time.Duration) (bool, error)

// RateLimiter throttles callers by user id, or by client IP before
// authentication. When the backing store fails the request is let through.
func RateLimiter(limitFn LimitFunc, limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(UserIDKey)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := limitFn(c.Request.Context(), key, limit, per)
		if err != nil {
			logger.Error("Rate limiting failed, allowing request", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
