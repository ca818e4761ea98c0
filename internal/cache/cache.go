// Package cache is a thin JSON cache over Redis. A nil *Cache is valid and
// behaves as an always-missing cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	DashboardStatsKey = "dashboard:stats"
	PublicCMSPrefix   = "cms:public:"
	WorkerCachePrefix = "worker:"

	TTLShort  = 5 * time.Minute
	TTLMedium = 30 * time.Minute
	TTLLong   = 2 * time.Hour
)

type Cache struct {
	redis  *redis.Client
	logger *zap.Logger
}

func New(redisClient *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{redis: redisClient, logger: logger}
}

func (c *Cache) enabled() bool {
	return c != nil && c.redis != nil
}

// GetJSON decodes the cached value into dst. Redis failures are logged and
// reported as a miss so callers fall back to the database.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.enabled() {
		return false
	}

	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get failed, falling back to DB", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(val, dst); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.redis.Del(ctx, key)
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("redis del failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidatePrefix removes every key starting with prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if !c.enabled() {
		return
	}

	iter := c.redis.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("redis scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	c.Invalidate(ctx, keys...)
}

// InvalidateBusinessData drops every cache derived from business records.
func (c *Cache) InvalidateBusinessData(ctx context.Context) {
	c.Invalidate(ctx, DashboardStatsKey)
	c.InvalidatePrefix(ctx, WorkerCachePrefix)
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.enabled() {
		return errors.New("redis not configured")
	}
	return c.redis.Ping(ctx).Err()
}
