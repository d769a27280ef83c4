package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-admin-service/pkg/metrics"
)

// tokenBucket refills at rate tokens per second up to capacity and takes one
// token per call. Bucket state is {last_refill, tokens}.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', now, 'tokens', tokens)
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// RateLimiter limits requests per method, route and client IP with a token
// bucket kept in Redis. Redis errors let the request through.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	prom   *metrics.Prom
	log    *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter. prom may be nil.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, prom *metrics.Prom, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		prom:   prom,
		log:    log,
		now:    time.Now,
	}
}

// bucketTTL keeps an idle bucket around until it would be full again.
func (rl *RateLimiter) bucketTTL() int {
	secs := int(float64(rl.config.BurstCapacity)/rl.config.RequestsPerSecond) + 1
	return max(secs, 60)
}

// Handler returns the gin middleware.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || !rl.config.Enabled || rl.client == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, route, clientIP)
		now := float64(rl.now().UnixMicro()) / 1e6

		allowed, err := tokenBucket.Run(c.Request.Context(), rl.client, []string{key},
			rl.config.RequestsPerSecond,
			rl.config.BurstCapacity,
			now,
			rl.bucketTTL(),
		).Int64()
		if err != nil {
			rl.log.Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("route", route),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if allowed == 0 {
			rl.prom.ObserveRateLimited(route)
			rl.log.Debug("rate limit exceeded", zap.String("client_ip", clientIP), zap.String("route", route))
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)",
					rl.config.RequestsPerSecond, rl.config.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}
