package rate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KEYS[1] window; ARGV window (ms), limit, now (ms), requested, member id.
const slidingWindowLua = `
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

redis.call("ZREMRANGEBYSCORE", KEYS[1], 0, now - window)
if redis.call("ZCARD", KEYS[1]) + requested > limit then
  return 0
end

for i = 1, requested do
  redis.call("ZADD", KEYS[1], now, ARGV[5] .. ":" .. i)
end
redis.call("PEXPIRE", KEYS[1], window)
return 1
`

var slidingWindowScript = redis.NewScript(slidingWindowLua)

// SlidingWindowLimiter allows at most limit requests per key in any window.
type SlidingWindowLimiter struct {
	client redis.Scripter
	prefix string
	window time.Duration
	limit  int
}

func NewSlidingWindowLimiter(client redis.Scripter, prefix string, window time.Duration, limit int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client: client,
		prefix: prefix,
		window: window,
		limit:  limit,
	}
}

func (l *SlidingWindowLimiter) AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error) {
	res, err := slidingWindowScript.Run(ctx, l.client, []string{l.prefix + key},
		l.window.Milliseconds(), l.limit, t.UnixMilli(), n, uuid.NewString()).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
