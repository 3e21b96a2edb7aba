package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/smartslip/internal/metrics"
	"github.com/yourusername/smartslip/internal/models"
)

const defaultRedisPrefix = "smartslip:prior:"

// RedisCache is a PriorCache shared between processes. Redis owns expiry,
// so PurgeExpired has nothing to do. Redis errors degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *logrus.Entry
}

// NewRedisCache creates a prior cache backed by client
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, logger *logrus.Logger) *RedisCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.WithField("component", "prior_cache"),
	}
}

func (rc *RedisCache) key(key PriorKey) string {
	return rc.prefix + key.String()
}

// Get retrieves a cached prior
func (rc *RedisCache) Get(ctx context.Context, key PriorKey) (*models.HistoricalStat, bool) {
	data, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if err == redis.Nil {
		metrics.RecordPriorCacheEvent("miss")
		return nil, false
	}
	if err != nil {
		rc.logger.WithError(err).WithField("key", key.String()).Warn("Prior cache read failed")
		metrics.RecordPriorCacheEvent("miss")
		return nil, false
	}

	var stat *models.HistoricalStat
	if err := json.Unmarshal(data, &stat); err != nil {
		rc.logger.WithError(err).WithField("key", key.String()).Warn("Discarding corrupt prior cache entry")
		metrics.RecordPriorCacheEvent("miss")
		return nil, false
	}

	metrics.RecordPriorCacheEvent("hit")
	return stat, true
}

// Set stores a prior with the configured TTL
func (rc *RedisCache) Set(ctx context.Context, key PriorKey, stat *models.HistoricalStat) {
	data, err := json.Marshal(stat)
	if err != nil {
		rc.logger.WithError(err).Warn("Failed to encode prior")
		return
	}
	if err := rc.client.Set(ctx, rc.key(key), data, rc.ttl).Err(); err != nil {
		rc.logger.WithError(err).WithField("key", key.String()).Warn("Prior cache write failed")
	}
}

// Invalidate removes one cached prior
func (rc *RedisCache) Invalidate(ctx context.Context, key PriorKey) {
	if err := rc.client.Del(ctx, rc.key(key)).Err(); err != nil {
		rc.logger.WithError(err).WithField("key", key.String()).Warn("Prior cache delete failed")
	}
}

// Clear deletes every key under the cache prefix
func (rc *RedisCache) Clear(ctx context.Context) error {
	iter := rc.client.Scan(ctx, 0, rc.prefix+"*", 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if err := rc.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return rc.client.Del(ctx, batch...).Err()
	}
	return nil
}

// PurgeExpired is a no-op; Redis expires keys itself
func (rc *RedisCache) PurgeExpired(ctx context.Context) int {
	return 0
}
