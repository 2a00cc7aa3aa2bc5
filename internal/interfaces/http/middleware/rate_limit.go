package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"couponmap.backend/internal/config"
	"couponmap.backend/internal/interfaces/http/response"
	"couponmap.backend/pkg/logger"
	"couponmap.backend/pkg/redis"
)

// tokenBucket refills KEYS[1] at ARGV[2] tokens per second up to ARGV[1]
// and takes one token when available. Returns {allowed, tokens left}.
var tokenBucket = goredis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  ts = now
end

local elapsed = math.max(0, now - ts) / 1000
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", tostring(now))
redis.call("PEXPIRE", KEYS[1], math.ceil(capacity / rate * 1000) + 1000)
return {allowed, math.floor(tokens)}
`)

var (
	runScript = redis.RunScript
	nowMillis = func() int64 { return time.Now().UnixMilli() }
)

// RateLimitMiddleware applies a per-caller token bucket to a route. The
// caller is the authenticated user when known, else the client IP. A redis
// outage fails open.
func RateLimitMiddleware(name string, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Capacity <= 0 || cfg.RefillPerSec <= 0 || redis.GetClient() == nil {
			c.Next()
			return
		}

		caller := c.ClientIP()
		if principal, ok := GetPrincipal(c); ok {
			caller = principal.UserID.String()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", name, caller)

		res, err := runScript(c.Request.Context(), tokenBucket, []string{key}, cfg.Capacity, cfg.RefillPerSec, nowMillis())
		if err != nil {
			logger.Warn(c.Request.Context(), "Rate limiter unavailable", zap.String("bucket", name), zap.Error(err))
			c.Next()
			return
		}

		values, ok := res.([]interface{})
		if !ok || len(values) != 2 {
			c.Next()
			return
		}
		allowed, _ := values[0].(int64)
		remaining, _ := values[1].(int64)
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if allowed != 1 {
			c.Header("Retry-After", strconv.Itoa(int(1/cfg.RefillPerSec)+1))
			response.ErrorWithStatus(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
