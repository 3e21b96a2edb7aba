package repository

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/metrics"
	"github.com/yourusername/smartslip/internal/models"
)

// Provider operation names used in lookup failures, logs and metrics
const (
	OpQueryQuotes  = "query_quotes"
	OpQueryResults = "query_results"
	OpQueryClosing = "query_closing_record"
)

// Guarded bounds every provider call with a timeout and a shared rate limit.
// Any error other than models.ErrNotFound comes back as a *models.LookupFailure.
type Guarded struct {
	inner   Provider
	timeout time.Duration
	limiter *rate.Limiter
}

// NewGuarded wraps a provider with the configured lookup bounds
func NewGuarded(inner Provider, cfg config.ProviderConfig) *Guarded {
	return &Guarded{
		inner:   inner,
		timeout: cfg.LookupTimeout(),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// QueryQuotes implements QuoteReader
func (g *Guarded) QueryQuotes(ctx context.Context, gameKey string, market models.MarketType, book string, since *time.Time) ([]models.OddsQuote, error) {
	var quotes []models.OddsQuote
	err := g.do(ctx, OpQueryQuotes, func(ctx context.Context) error {
		var err error
		quotes, err = g.inner.QueryQuotes(ctx, gameKey, market, book, since)
		return err
	})
	return quotes, err
}

// QueryResults implements ResultReader
func (g *Guarded) QueryResults(ctx context.Context, filter ResultFilter) ([]models.ResultRow, error) {
	var rows []models.ResultRow
	err := g.do(ctx, OpQueryResults, func(ctx context.Context) error {
		var err error
		rows, err = g.inner.QueryResults(ctx, filter)
		return err
	})
	return rows, err
}

// QueryClosingRecord implements ClosingReader
func (g *Guarded) QueryClosingRecord(ctx context.Context, gameKey string, market models.MarketType, selection, book string) (*models.ClosingOddsRecord, error) {
	var record *models.ClosingOddsRecord
	err := g.do(ctx, OpQueryClosing, func(ctx context.Context) error {
		var err error
		record, err = g.inner.QueryClosingRecord(ctx, gameKey, market, selection, book)
		return err
	})
	return record, err
}

func (g *Guarded) do(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		metrics.RecordLookupFailure(op)
		return models.NewLookupFailure(op, err)
	}

	start := time.Now()
	err := fn(ctx)
	metrics.RecordLookupLatency(op, time.Since(start).Seconds())

	switch {
	case err == nil, errors.Is(err, models.ErrNotFound):
		return err
	case ctx.Err() != nil:
		metrics.RecordLookupFailure(op)
		return models.NewLookupFailure(op, ctx.Err())
	default:
		metrics.RecordLookupFailure(op)
		return models.NewLookupFailure(op, err)
	}
}
