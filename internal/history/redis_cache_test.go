package history

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/smartslip/internal/logger"
)

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisCacheKeyUsesPrefix(t *testing.T) {
	rc := NewRedisCache(unreachableRedis(), "", time.Hour, logger.Discard())
	assert.Equal(t, "smartslip:prior:nba:moneyline:celtics:90", rc.key(testKey("Celtics")))

	custom := NewRedisCache(unreachableRedis(), "test:", time.Hour, logger.Discard())
	assert.Equal(t, "test:nba:moneyline:celtics:90", custom.key(testKey("Celtics")))
}

func TestRedisCacheDegradesToMissWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	rc := NewRedisCache(unreachableRedis(), "", time.Hour, logger.Discard())

	assert.NotPanics(t, func() {
		rc.Set(ctx, testKey("Celtics"), nil)
		rc.Invalidate(ctx, testKey("Celtics"))
	})

	stat, found := rc.Get(ctx, testKey("Celtics"))
	assert.False(t, found)
	assert.Nil(t, stat)

	assert.Error(t, rc.Clear(ctx))
	assert.Zero(t, rc.PurgeExpired(ctx))
}
