package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewStatsCache(client)
	ctx := context.Background()

	key := "dashboard:20260801:20260831"
	value := []byte(`{"total_orders":10,"revenue":"4500"}`)

	// Get before set => nil
	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Set
	err = cache.Set(ctx, key, value, time.Minute)
	require.NoError(t, err)

	// Get after set
	result, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestStatsCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewStatsCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "dashboard:all:all", []byte(`{"total_orders":0}`), time.Minute)
	require.NoError(t, err)

	s.FastForward(61 * time.Second)

	result, err := cache.Get(ctx, "dashboard:all:all")
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestStatsCache_KeyPrefix(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewStatsCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "dashboard:all:all", []byte("x"), time.Minute)
	require.NoError(t, err)

	// Keys are namespaced so they cannot collide with rate limit counters.
	assert.True(t, s.Exists("stats:dashboard:all:all"))
	assert.False(t, s.Exists("dashboard:all:all"))
}
