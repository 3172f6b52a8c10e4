package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenBucketLua = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

if rate <= 0 or burst <= 0 then
  return {1, 0}
end

local data = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil then
  tokens = burst
end
if ts == nil then
  ts = now
end

local delta = math.max(0, now - ts)
tokens = math.min(burst, tokens + (delta * rate) / 1000.0)

local allowed = tokens >= requested
local wait_ms = 0
if allowed then
  tokens = tokens - requested
else
  wait_ms = math.ceil((requested - tokens) * 1000.0 / rate)
end

redis.call("HSET", key, "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", key, math.ceil((burst / rate) * 1000.0 * 2))

return {allowed and 1 or 0, wait_ms}
`

// RedisLimiter is a token bucket per key stored in redis, shared by every
// replica of the service.
type RedisLimiter struct {
	rdb    redis.Scripter
	prefix string
	rate   float64
	burst  float64
	now    func() time.Time
	script *redis.Script
}

// NewRedisLimiter creates a limiter refilling rate tokens per second up to burst.
func NewRedisLimiter(rdb redis.Scripter, prefix string, rate float64, burst int) *RedisLimiter {
	if prefix == "" {
		prefix = "pricewise:ratelimit"
	}
	return &RedisLimiter{
		rdb:    rdb,
		prefix: prefix,
		rate:   rate,
		burst:  float64(burst),
		now:    time.Now,
		script: redis.NewScript(tokenBucketLua),
	}
}

// Allow implements Limiter.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if r.rate <= 0 || r.burst <= 0 {
		return Decision{Allowed: true}, nil
	}
	res, err := r.script.Run(ctx, r.rdb, []string{r.prefix + ":" + key},
		r.rate, r.burst, r.now().UnixMilli(), 1).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	values, ok := res.([]any)
	if !ok || len(values) < 2 {
		return Decision{}, fmt.Errorf("%w: unexpected script result %v", ErrUnavailable, res)
	}
	return Decision{
		Allowed:    toInt64(values[0]) == 1,
		RetryAfter: time.Duration(toInt64(values[1])) * time.Millisecond,
	}, nil
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if parsed, err := strconv.ParseInt(t, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
