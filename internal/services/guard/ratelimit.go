package guard

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter throttles redemption attempts per actor. Allow reports
// whether the attempt may proceed and, when it may not, a retry-after
// hint in seconds.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfterSeconds int, err error)
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisRateLimiter counts attempts in fixed windows shared across all
// service instances.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a limiter allowing `limit` attempts per
// `window` for each key.
func NewRedisRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "creda:ratelimit"
	}
	return &RedisRateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	if r.limit <= 0 || r.window <= 0 {
		return true, 0, nil
	}

	windowMs := r.window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	fullKey := r.prefix + ":" + key
	raw, err := rateLimitScript.Run(ctx, r.client, []string{fullKey}, windowMs).Result()
	if err != nil {
		// The limiter is a protection layer, not a correctness
		// dependency: when Redis is unreachable the attempt proceeds
		// and the outage is logged.
		zap.L().Warn("rate limiter unavailable, allowing attempt", zap.Error(err))
		return true, 0, nil
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		zap.L().Warn("unexpected rate limiter response shape")
		return true, 0, nil
	}
	count, ok1 := values[0].(int64)
	ttlMs, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		zap.L().Warn("unexpected rate limiter response types")
		return true, 0, nil
	}

	if count <= int64(r.limit) {
		return true, 0, nil
	}

	if ttlMs < 0 {
		ttlMs = windowMs
	}
	retryAfter := int(math.Ceil(float64(ttlMs) / 1000.0))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter, nil
}
