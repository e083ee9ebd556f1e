package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter decides whether a client may proceed.
type Limiter interface {
	Allow(ctx context.Context, id string) (bool, time.Duration, error)
}

// RateLimit throttles requests per client IP. Limiter errors let the
// request through.
func RateLimit(limiter Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		ok, wait, err := limiter.Allow(ctx, c.ClientIP())
		cancel()
		if err != nil {
			if logger != nil {
				logger.Warn("rate limiter unavailable", slog.String("error", err.Error()))
			}
			c.Next()
			return
		}
		if !ok {
			retry := int(math.Ceil(wait.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests, please try again later",
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
