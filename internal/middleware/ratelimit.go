package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis, so the limit
// holds across server replicas.
type RateLimiter struct {
	rdb    *redis.Client
	group  string
	limit  int
	window time.Duration
	log    zerolog.Logger
}

// NewRateLimiter allows limit requests per window for each client IP on a route group.
func NewRateLimiter(rdb *redis.Client, group string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		group:  group,
		limit:  limit,
		window: window,
		log:    log.With().Str("component", "rate_limiter").Str("group", group).Logger(),
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// Redis errors let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		now := time.Now()
		slot := now.UnixNano() / int64(rl.window)
		key := config.CacheKey.RateLimitKey(rl.group, c.ClientIP(), slot)

		ctx := c.Request.Context()
		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rl.window)
		if _, err := pipe.Exec(ctx); err != nil {
			rl.log.Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		count := incr.Val()
		remaining := int64(rl.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(rl.limit) {
			reset := time.Duration(slot+1)*rl.window - time.Duration(now.UnixNano())
			c.Header("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		c.Next()
	}
}
