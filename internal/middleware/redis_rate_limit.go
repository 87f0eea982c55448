package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/connectos/backend/internal/cache"
	"github.com/connectos/backend/internal/logger"
	"github.com/connectos/backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RedisRateLimitMiddleware enforces a fixed-window per-IP limit backed by
// Redis, so the limit holds across instances. When Redis is down requests
// are rejected rather than waved through; an unenforced limit is an open
// door during exactly the incidents it exists for.
func RedisRateLimitMiddleware(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			// No Redis configured at all (dev mode): skip limiting.
			c.Next()
			return
		}

		clientIP := clientIPFromAddr(c.Request.RemoteAddr)
		key := fmt.Sprintf("rate_limit:%s", clientIP)
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := redisClient.Incr(ctx, key)
		if err != nil {
			logger.Log.Error("rate limit check failed, rejecting request",
				logger.WithIP(clientIP),
				zap.Error(err),
			)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
			c.Abort()
			return
		}
		if count == 1 {
			if err := redisClient.Expire(ctx, key, window); err != nil {
				logger.Log.Warn("failed to set rate limit window",
					logger.WithIP(clientIP),
					zap.Error(err),
				)
			}
		}

		metrics.Get().RateLimitBucketUsage.WithLabelValues(c.FullPath(), clientIP).Set(float64(count))

		if count > int64(maxRequests) {
			metrics.Get().RateLimitExceededTotal.WithLabelValues(c.FullPath(), c.Request.Method).Inc()
			logger.Log.Warn("rate limit exceeded",
				logger.WithIP(clientIP),
				zap.Int("max_requests", maxRequests),
				zap.Int64("current_requests", count),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func clientIPFromAddr(remoteAddr string) string {
	if ip, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return ip
	}
	return remoteAddr
}
