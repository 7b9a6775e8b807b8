package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/infrastructure/ratelimit"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

// KeyFunc picks the rate limit bucket for a request.
type KeyFunc func(c *gin.Context) string

// ByClientIP buckets requests by route and client address.
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.FullPath() + ":" + c.ClientIP()
}

// RateLimit rejects requests over config with 429 and a Retry-After header.
// Requests are let through when the limiter itself fails.
func RateLimit(limiter ratelimit.RateLimiter, config ratelimit.RateLimitConfig, key KeyFunc, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), key(c), config)
		if err != nil {
			log.Warnw("rate limiter unavailable, allowing request",
				"path", c.Request.URL.Path,
				"error", err,
			)
			c.Next()
			return
		}

		if decision.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
