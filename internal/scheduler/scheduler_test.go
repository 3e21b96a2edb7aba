package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/smartslip/internal/history"
	"github.com/yourusername/smartslip/internal/logger"
	"github.com/yourusername/smartslip/internal/models"
)

type stubClock struct{ now time.Time }

func (c *stubClock) Now() time.Time { return c.now }

type failingCache struct {
	history.PriorCache
}

func (failingCache) Clear(ctx context.Context) error { return errors.New("redis down") }

func TestRunPurgeRemovesExpiredPriors(t *testing.T) {
	clock := &stubClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	cache := history.NewMemoryCache(time.Minute, 10, clock)
	key := history.PriorKey{Sport: "nba", MarketType: models.MarketMoneyline, Selection: "Celtics", LookbackDays: 90}
	cache.Set(context.Background(), key, &models.HistoricalStat{HitRate: 0.6, SampleSize: 40})
	require.Equal(t, 1, cache.ItemCount())

	clock.now = clock.now.Add(2 * time.Minute)
	s := NewScheduler(cache, logger.Discard())
	s.RunPurge(context.Background())

	assert.Equal(t, 0, cache.ItemCount())
}

func TestRunInvalidateClearsCache(t *testing.T) {
	cache := history.NewMemoryCache(time.Hour, 10, nil)
	key := history.PriorKey{Sport: "nfl", MarketType: models.MarketSpread, Selection: "Chiefs", LookbackDays: 30}
	cache.Set(context.Background(), key, nil)

	s := NewScheduler(cache, logger.Discard())
	s.RunInvalidate(context.Background())

	_, found := cache.Get(context.Background(), key)
	assert.False(t, found)
}

func TestRunInvalidateToleratesErrors(t *testing.T) {
	s := NewScheduler(failingCache{}, logger.Discard())
	assert.NotPanics(t, func() { s.RunInvalidate(context.Background()) })
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(history.NewMemoryCache(time.Hour, 10, nil), logger.Discard())

	assert.Error(t, s.Start(), "no jobs scheduled")
	assert.Error(t, s.SchedulePurge("every so often"))

	require.NoError(t, s.SchedulePurge("*/5 * * * *"))
	require.NoError(t, s.ScheduleInvalidate("@daily"))
	assert.Len(t, s.Entries(), 2)
	assert.True(t, s.GetNextRun().IsZero())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())
	assert.Error(t, s.Start())
	assert.Error(t, s.SchedulePurge("@hourly"))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}
