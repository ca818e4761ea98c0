package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, New(client, zap.NewNop())
}

type stats struct {
	Workers int64 `json:"workers"`
}

func TestCache_SetAndGet(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, DashboardStatsKey, stats{Workers: 42}, time.Minute)
	assert.True(t, mr.Exists(DashboardStatsKey))

	var got stats
	require.True(t, c.GetJSON(ctx, DashboardStatsKey, &got))
	assert.Equal(t, int64(42), got.Workers)

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.GetJSON(ctx, DashboardStatsKey, &got))
}

func TestCache_MissAndCorruptEntry(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	var got stats
	assert.False(t, c.GetJSON(ctx, "missing", &got))

	require.NoError(t, mr.Set("broken", "{not json"))
	assert.False(t, c.GetJSON(ctx, "broken", &got))
	assert.False(t, mr.Exists("broken"))
}

func TestCache_InvalidatePrefix(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(PublicCMSPrefix+"faq:th", "[]"))
	require.NoError(t, mr.Set(PublicCMSPrefix+"page:home:th", "{}"))
	require.NoError(t, mr.Set(DashboardStatsKey, "{}"))

	c.InvalidatePrefix(ctx, PublicCMSPrefix)

	assert.False(t, mr.Exists(PublicCMSPrefix+"faq:th"))
	assert.False(t, mr.Exists(PublicCMSPrefix+"page:home:th"))
	assert.True(t, mr.Exists(DashboardStatsKey))

	c.InvalidateBusinessData(ctx)
	assert.False(t, mr.Exists(DashboardStatsKey))
}

func TestCache_NilIsSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.SetJSON(ctx, "k", 1, time.Minute)
	c.Invalidate(ctx, "k")
	c.InvalidatePrefix(ctx, "k")
	var v int
	assert.False(t, c.GetJSON(ctx, "k", &v))
	assert.Error(t, c.Ping(ctx))
}
