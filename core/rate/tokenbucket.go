package rate

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] bucket; ARGV capacity, tokens per second, now (ms), requested.
const tokenBucketLua = `
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

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
if tokens >= requested then
  tokens = tokens - requested
  allowed = 1
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", KEYS[1], tonumber(ARGV[5]))
return allowed
`

var tokenBucketScript = redis.NewScript(tokenBucketLua)

// TokenBucketLimiter allows bursts of up to capacity requests per key,
// refilled at rate tokens per second.
type TokenBucketLimiter struct {
	client   redis.Scripter
	prefix   string
	capacity int
	rate     float64
	ttl      time.Duration
}

func NewTokenBucketLimiter(client redis.Scripter, prefix string, capacity int, rate float64) *TokenBucketLimiter {
	// keep idle buckets until they would be full again, plus a margin
	refill := time.Duration(math.Ceil(float64(capacity)/rate*1000)) * time.Millisecond
	return &TokenBucketLimiter{
		client:   client,
		prefix:   prefix,
		capacity: capacity,
		rate:     rate,
		ttl:      2*refill + time.Second,
	}
}

func (l *TokenBucketLimiter) AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error) {
	res, err := tokenBucketScript.Run(ctx, l.client, []string{l.prefix + key},
		l.capacity, l.rate, t.UnixMilli(), n, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
