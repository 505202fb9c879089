package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vessel-ops/internal/model"
)

const watermarkKeyPrefix = "cleanup:watermark:"

// RedisWatermarkCache keeps the last cleanup period per vessel in Redis.
// It only short-circuits repeated hub visits; the database holds the authoritative value.
type RedisWatermarkCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisWatermarkCache(rdb *redis.Client, ttl time.Duration) *RedisWatermarkCache {
	return &RedisWatermarkCache{rdb: rdb, ttl: ttl}
}

func (c *RedisWatermarkCache) Get(ctx context.Context, vesselID string) (model.Period, bool, error) {
	raw, err := c.rdb.Get(ctx, watermarkKeyPrefix+vesselID).Result()
	if errors.Is(err, redis.Nil) {
		return model.Period{}, false, nil
	}
	if err != nil {
		return model.Period{}, false, fmt.Errorf("redis get watermark: %w", err)
	}
	period, err := model.ParsePeriod(raw)
	if err != nil {
		return model.Period{}, false, nil
	}
	return period, true, nil
}

func (c *RedisWatermarkCache) Set(ctx context.Context, vesselID string, period model.Period) error {
	if err := c.rdb.Set(ctx, watermarkKeyPrefix+vesselID, period.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set watermark: %w", err)
	}
	return nil
}
