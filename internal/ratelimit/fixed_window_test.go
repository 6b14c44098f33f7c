package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestFixedWindowLimiter(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", 2, time.Minute)
	require.NoError(t, err)

	assert.True(t, limiter.Allow(ctx, "ip-1"), "first request should pass")
	assert.True(t, limiter.Allow(ctx, "ip-1"), "second request should pass")
	assert.False(t, limiter.Allow(ctx, "ip-1"), "third request should be blocked")
	assert.True(t, limiter.Allow(ctx, "ip-2"), "other keys have their own quota")
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	mr, client := newClient(t)
	limiter, err := NewFixedWindowLimiter(client, "", 1, time.Second)
	require.NoError(t, err)

	mr.Close()
	assert.False(t, limiter.Allow(context.Background(), "ip-1"))
}

func TestNewFixedWindowLimiterValidation(t *testing.T) {
	_, client := newClient(t)

	_, err := NewFixedWindowLimiter(client, "p", 0, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(client, "p", 1, 0)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(nil, "p", 1, time.Second)
	assert.Error(t, err)
}
