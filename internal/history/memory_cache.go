package history

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/smartslip/internal/metrics"
	"github.com/yourusername/smartslip/internal/models"
)

type priorEntry struct {
	stat      *models.HistoricalStat
	expiresAt time.Time
}

// MemoryCache is an in-process PriorCache. Expiry is judged against the
// injected clock rather than go-cache's own timer so that tests can move
// time forward.
type MemoryCache struct {
	cache     *cache.Cache
	clock     Clock
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewMemoryCache creates a new in-process prior cache
func NewMemoryCache(ttl time.Duration, maxSize int, clock Clock) *MemoryCache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryCache{
		cache:   cache.New(cache.NoExpiration, 0),
		clock:   clock,
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prior
func (mc *MemoryCache) Get(ctx context.Context, key PriorKey) (*models.HistoricalStat, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	k := key.String()
	if item, found := mc.cache.Get(k); found {
		entry := item.(priorEntry)
		if mc.clock.Now().Before(entry.expiresAt) {
			mc.hitCount++
			mc.updateMetrics("hit")
			return entry.stat, true
		}
		mc.cache.Delete(k)
	}

	mc.missCount++
	mc.updateMetrics("miss")
	return nil, false
}

// Set stores a prior in cache
func (mc *MemoryCache) Set(ctx context.Context, key PriorKey, stat *models.HistoricalStat) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	k := key.String()
	if _, exists := mc.cache.Get(k); !exists && mc.cache.ItemCount() >= mc.maxSize {
		if mc.purgeLocked() == 0 {
			mc.evictOldestLocked()
		}
	}

	mc.cache.Set(k, priorEntry{stat: stat, expiresAt: mc.clock.Now().Add(mc.ttl)}, cache.NoExpiration)
	metrics.UpdatePriorCache(mc.ratioLocked(), mc.cache.ItemCount())
}

// Invalidate removes one cached prior
func (mc *MemoryCache) Invalidate(ctx context.Context, key PriorKey) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Delete(key.String())
}

// Clear flushes the entire cache
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Flush()
	mc.hitCount = 0
	mc.missCount = 0
	metrics.UpdatePriorCache(0, 0)
	return nil
}

// PurgeExpired drops every entry whose TTL has passed and returns how many
// were removed
func (mc *MemoryCache) PurgeExpired(ctx context.Context) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	return mc.purgeLocked()
}

// Stats returns cache statistics
func (mc *MemoryCache) Stats() (hits, misses uint64, ratio float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	return mc.hitCount, mc.missCount, mc.ratioLocked()
}

// ItemCount returns the number of items in cache, expired or not
func (mc *MemoryCache) ItemCount() int {
	return mc.cache.ItemCount()
}

func (mc *MemoryCache) purgeLocked() int {
	now := mc.clock.Now()
	removed := 0
	for k, item := range mc.cache.Items() {
		if entry := item.Object.(priorEntry); !now.Before(entry.expiresAt) {
			mc.cache.Delete(k)
			removed++
		}
	}
	if removed > 0 {
		metrics.UpdatePriorCache(mc.ratioLocked(), mc.cache.ItemCount())
	}
	return removed
}

func (mc *MemoryCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, item := range mc.cache.Items() {
		entry := item.Object.(priorEntry)
		if oldestKey == "" || entry.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt = k, entry.expiresAt
		}
	}
	if oldestKey != "" {
		mc.cache.Delete(oldestKey)
		metrics.RecordPriorCacheEvent("eviction")
	}
}

func (mc *MemoryCache) ratioLocked() float64 {
	total := mc.hitCount + mc.missCount
	if total == 0 {
		return 0
	}
	return float64(mc.hitCount) / float64(total)
}

func (mc *MemoryCache) updateMetrics(event string) {
	metrics.RecordPriorCacheEvent(event)
	metrics.UpdatePriorCache(mc.ratioLocked(), mc.cache.ItemCount())
}
