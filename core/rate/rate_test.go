package rate

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRedis connects to ECCD_TEST_REDIS_ADDR, skipping when it is unset.
func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("ECCD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ECCD_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestLimiterFunc(t *testing.T) {
	calls := 0
	l := LimiterFunc(func(_ context.Context, key string, _ time.Time, n int) (bool, error) {
		calls++
		return key == "allowed" && n == 1, nil
	})

	ok, err := Allow(context.Background(), l, "allowed")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Allow(context.Background(), l, "denied")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, calls)
}

func TestTokenBucket(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()
	l := NewTokenBucketLimiter(client, "ecckit:test:tb:", 2, 1)
	key := uuid.NewString()
	now := time.Now()

	for i, want := range []bool{true, true, false} {
		ok, err := l.AllowN(ctx, key, now, 1)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i)
	}

	ok, err := l.AllowN(ctx, key, now.Add(1100*time.Millisecond), 1)
	require.NoError(t, err)
	assert.True(t, ok, "one token refilled after a second")

	ok, err = l.AllowN(ctx, uuid.NewString(), now, 3)
	require.NoError(t, err)
	assert.False(t, ok, "more than capacity is never allowed")
}

func TestSlidingWindow(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()
	l := NewSlidingWindowLimiter(client, "ecckit:test:sw:", time.Second, 3)
	key := uuid.NewString()
	now := time.Now()

	ok, err := l.AllowN(ctx, key, now, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.AllowN(ctx, key, now.Add(100*time.Millisecond), 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.AllowN(ctx, key, now.Add(1100*time.Millisecond), 3)
	require.NoError(t, err)
	assert.True(t, ok, "window has moved on")
}
