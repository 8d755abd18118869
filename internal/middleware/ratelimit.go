package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"lingoflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterConfig defines configuration for the rate limiter
type RateLimiterConfig struct {
	Limit     int    // Requests per second
	Burst     int    // Burst size, defaults to Limit
	KeyPrefix string // Redis key prefix
}

const defaultKeyPrefix = "lingoflow:ratelimit:"

func (c RateLimiterConfig) withDefaults() RateLimiterConfig {
	if c.Limit <= 0 {
		c.Limit = 5
	}
	if c.Burst <= 0 {
		c.Burst = c.Limit
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultKeyPrefix
	}
	return c
}

// tokenBucketScript implements the Token Bucket algorithm.
// Input: ARGV[1]=rate, ARGV[2]=capacity, ARGV[3]=now, ARGV[4]=requested
// Output: { allowed, remaining, reset_after }
var tokenBucketScript = redis.NewScript(`
local tokens_key = KEYS[1]
local ts_key = KEYS[2]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local fill_time = capacity / rate
local ttl = math.ceil(fill_time * 2)

-- Load state
local last_tokens = tonumber(redis.call("get", tokens_key))
if last_tokens == nil then last_tokens = capacity end

local last_ts = tonumber(redis.call("get", ts_key))
if last_ts == nil then last_ts = now end

-- Refill
local delta = math.max(0, now - last_ts)
local filled_tokens = math.min(capacity, last_tokens + (delta * rate))
local allowed = 0
local remaining = filled_tokens
local reset_after = 0

if filled_tokens >= requested then
    allowed = 1
    filled_tokens = filled_tokens - requested
    remaining = filled_tokens
else
    allowed = 0
    remaining = filled_tokens
    reset_after = (requested - filled_tokens) / rate
end

if allowed == 1 then
    redis.call("set", tokens_key, filled_tokens, "EX", ttl)
    redis.call("set", ts_key, now, "EX", ttl)
end

return { allowed, remaining, reset_after }
`)

// Fallback in-memory limiter
type localLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// localPool holds one limiter per client IP and evicts idle entries.
type localPool struct {
	limiters sync.Map
	idle     time.Duration
	once     sync.Once
}

func (p *localPool) startCleanup() {
	p.once.Do(func() {
		ticker := time.NewTicker(p.idle)
		go func() {
			for range ticker.C {
				cutoff := time.Now().Add(-p.idle).UnixNano()
				p.limiters.Range(func(key, value any) bool {
					if value.(*localLimiter).lastSeen.Load() < cutoff {
						p.limiters.Delete(key)
					}
					return true
				})
			}
		}()
	})
}

func (p *localPool) get(ip string, r rate.Limit, b int) *rate.Limiter {
	p.startCleanup()

	val, _ := p.limiters.LoadOrStore(ip, &localLimiter{limiter: rate.NewLimiter(r, b)})
	l := val.(*localLimiter)
	l.lastSeen.Store(time.Now().UnixNano())
	return l.limiter
}

// RateLimitMiddleware enforces a per-IP token bucket in Redis. When Redis is
// nil or failing it falls back to an in-process limiter instead of rejecting.
func RateLimitMiddleware(rdb *redis.Client, cfg RateLimiterConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()
	pool := &localPool{idle: 10 * time.Minute}
	limit := strconv.Itoa(cfg.Limit)

	local := func(c *gin.Context, clientIP string) {
		limiter := pool.get(clientIP, rate.Limit(cfg.Limit), cfg.Burst)

		c.Header("X-RateLimit-Limit", limit)

		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", "1") // Static retry value for fallback
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if rdb == nil {
			local(c, clientIP)
			return
		}

		keyPrefix := cfg.KeyPrefix + clientIP
		keys := []string{keyPrefix + ":tokens", keyPrefix + ":ts"}
		args := []any{
			float64(cfg.Limit),                    // rate
			float64(cfg.Burst),                    // capacity
			float64(time.Now().UnixMicro()) / 1e6, // current timestamp
			1,                                     // requested tokens
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 100*time.Millisecond)
		defer cancel()

		result, err := tokenBucketScript.Run(ctx, rdb, keys, args...).Result()
		if err != nil {
			logger.Warn("Redis rate limit failed, switching to local fallback",
				zap.Error(err),
				zap.String("ip", clientIP))
			local(c, clientIP)
			return
		}

		resSlice, ok := result.([]any)
		if !ok || len(resSlice) != 3 {
			logger.Error("Invalid Redis rate limit response", zap.Any("response", result))
			c.Next() // Fail open on protocol error
			return
		}

		allowed := helperInt(resSlice[0]) == 1
		remaining := helperFloat(resSlice[1])
		resetAfter := helperFloat(resSlice[2])

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int(remaining)))

		resetTime := time.Now().Add(time.Duration(resetAfter * float64(time.Second)))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}

		c.Next()
	}
}

func helperInt(v any) int64 {
	if val, ok := v.(int64); ok {
		return val
	}
	if val, ok := v.(float64); ok {
		return int64(val)
	}
	return 0
}

func helperFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	default:
		return 0
	}
}
