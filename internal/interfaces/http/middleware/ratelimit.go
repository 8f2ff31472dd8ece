package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/utils"
)

// CheckoutRateLimiter caps checkout starts per user within a fixed window.
// Counters live in Redis and are shared by all instances.
type CheckoutRateLimiter struct {
	redisClient *redis.Client
	limit       int
	window      time.Duration
	logger      logger.Interface
}

func NewCheckoutRateLimiter(redisClient *redis.Client, limit int, window time.Duration, log logger.Interface) *CheckoutRateLimiter {
	return &CheckoutRateLimiter{
		redisClient: redisClient,
		limit:       limit,
		window:      window,
		logger:      log,
	}
}

// Limit must run after RequireAuth; anonymous requests are keyed by IP.
func (rl *CheckoutRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := "ip:" + c.ClientIP()
		if userID, ok := CurrentUserID(c); ok {
			subject = fmt.Sprintf("user:%d", userID)
		}
		windowBucket := time.Now().Unix() / int64(rl.window.Seconds())
		key := fmt.Sprintf("examforge:checkout:%s:%d", subject, windowBucket)

		ctx := c.Request.Context()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			// Redis outages must not block payments.
			rl.logger.Warnw("checkout rate limit unavailable", "error", err)
			c.Next()
			return
		}

		if count == 1 {
			rl.redisClient.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			rl.logger.Warnw("checkout rate limit exceeded", "subject", subject, "count", count)
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "too many checkout attempts, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
