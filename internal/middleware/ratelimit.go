package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/camper-area-registration/internal/config"
)

// limiterScript refills the bucket for the whole intervals elapsed since
// its last refill, then takes one token.  ARGV: now_ms, capacity,
// refill_tokens, interval_ms, ttl_s.  Reply: {allowed, remaining,
// retry_after_ms}.
var limiterScript = redis.NewScript(`
local now, cap, step, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local cur = redis.call('HMGET', KEYS[1], 'tokens', 'refilled_at')
local tokens, at = tonumber(cur[1]), tonumber(cur[2])
if not tokens or not at then
  tokens, at = cap, now
end
local n = math.floor(math.max(0, now - at) / every)
if n > 0 then
  tokens = math.min(cap, tokens + n * step)
  at = at + n * every
end
local ok, wait = 0, 0
if tokens >= 1 then
  ok, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - at))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled_at', at)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// bucketResult is one decision of the limiter script.
type bucketResult struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// take removes one token from the bucket at key.
func take(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string, now time.Time) (bucketResult, error) {
	vals, err := limiterScript.Run(ctx, rdb, []string{key},
		now.UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Result()
	if err != nil {
		return bucketResult{}, err
	}
	allowed, remaining, retryMs, ok := parseLimiterResult(vals)
	if !ok {
		return bucketResult{}, fmt.Errorf("unexpected limiter reply %#v", vals)
	}
	return bucketResult{allowed: allowed, remaining: remaining, retry: time.Duration(retryMs) * time.Millisecond}, nil
}

// NewTokenBucket limits requests with the Redis token bucket described by
// cfg.  It is a no-op without Redis, and Redis errors let the request
// through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			res, err := take(c.Request().Context(), rdb, cfg, key, time.Now())
			if err != nil {
				c.Logger().Warnf("ratelimit %s: %v", cfg.Name, err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.allowed {
				return next(c)
			}

			secs := max(int(math.Ceil(res.retry.Seconds())), 0)
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				c.Logger().Infof("ratelimit %s: block key=%s retry=%s", cfg.Name, key, res.retry)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too many requests, slow down",
				"retry_after": secs,
			})
		}
	}
}

// parseLimiterResult decodes the script's reply.
func parseLimiterResult(vals any) (allowed bool, remaining, retryMs int64, ok bool) {
	arr, isArr := vals.([]any)
	if !isArr || len(arr) != 3 {
		return false, 0, 0, false
	}
	return asInt64(arr[0]) == 1, asInt64(arr[1]), asInt64(arr[2]), true
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// buildRateKey composes the bucket key <prefix>:<bucket>:... from the
// client IP, the visitor session and the route according to
// cfg.KeyStrategy.  The default uses all three.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	parts := map[string]string{
		"ip":      ip,
		"session": SessionID(c),
		"route":   c.Request().Method + " " + c.Path(),
	}

	strategy := strings.ToLower(cfg.KeyStrategy)
	var use []string
	switch strategy {
	case "ip", "session", "route":
		use = []string{strategy}
	case "ip_session", "ip_route", "session_route":
		use = strings.SplitN(strategy, "_", 2)
	default:
		use = []string{"ip", "session", "route"}
	}

	key := []string{cfg.Prefix}
	if cfg.Name != "" {
		key = append(key, cfg.Name)
	}
	for _, name := range use {
		key = append(key, name, parts[name])
	}
	return strings.Join(key, ":")
}
