package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisDistanceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDistanceCache(client, ttl), mr
}

func TestRedisDistanceCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 0)

	require.NoError(t, c.PutMany(ctx, "HUB", map[string]float64{"A": 1.5, "B": 3}))

	got, err := c.GetMany(ctx, "HUB", []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 1.5, "B": 3}, got)

	assert.Equal(t, "1.5", mr.HGet("distance:HUB", "A"))
	assert.Zero(t, mr.TTL("distance:HUB"))
}

func TestRedisDistanceCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Hour)

	require.NoError(t, c.PutMany(ctx, "HUB", map[string]float64{"A": 1}))
	assert.Equal(t, time.Hour, mr.TTL("distance:HUB"))

	mr.FastForward(2 * time.Hour)
	got, err := c.GetMany(ctx, "HUB", []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisDistanceCacheErrors(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 0)

	_, err := c.GetMany(ctx, "", []string{"A"})
	assert.Error(t, err)
	assert.Error(t, c.PutMany(ctx, "HUB", map[string]float64{"": 1}))

	mr.HSet("distance:HUB", "bad", "not-a-number")
	_, err = c.GetMany(ctx, "HUB", []string{"bad"})
	assert.Error(t, err)
}
