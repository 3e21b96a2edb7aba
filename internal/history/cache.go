// Package history serves empirical hit-rate priors and closing prices from
// the result log, behind a TTL cache.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/smartslip/internal/models"
)

// Clock supplies the current time. Tests inject a controllable clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// PriorKey is the exact query tuple a prior is cached under
type PriorKey struct {
	Sport        string
	MarketType   models.MarketType
	Selection    string
	LookbackDays int
}

// String returns string representation of the key
func (k PriorKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%d",
		strings.ToLower(k.Sport), k.MarketType, strings.ToLower(k.Selection), k.LookbackDays)
}

// PriorCache stores hit-rate snapshots. A cached nil stat records that the
// query had no decisive rows. Entries are returned unchanged until their
// TTL passes, even if the result log has moved on.
type PriorCache interface {
	Get(ctx context.Context, key PriorKey) (stat *models.HistoricalStat, found bool)
	Set(ctx context.Context, key PriorKey, stat *models.HistoricalStat)
	Invalidate(ctx context.Context, key PriorKey)
	Clear(ctx context.Context) error
	PurgeExpired(ctx context.Context) int
}
