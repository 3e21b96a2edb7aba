package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/repository"
)

// ClosingQuery identifies the selection whose closing line is wanted.
// An empty Sportsbook accepts any book; a zero CommenceTime accepts every
// quote as pre-close.
type ClosingQuery struct {
	GameKey      string
	MarketType   models.MarketType
	Selection    string
	Point        *float64
	Sportsbook   string
	CommenceTime time.Time
}

// Service answers prior and closing-line questions from the data provider
type Service struct {
	provider repository.Provider
	cache    PriorCache
	clock    Clock
	logger   *logrus.Entry
}

// NewService creates a new historical prior service
func NewService(provider repository.Provider, priorCache PriorCache, clock Clock, logger *logrus.Logger) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		provider: provider,
		cache:    priorCache,
		clock:    clock,
		logger:   logger.WithField("component", "history"),
	}
}

// Cache returns the prior cache so maintenance jobs can purge it
func (s *Service) Cache() PriorCache {
	return s.cache
}

// GetHitRate returns the empirical win rate of a selection over the lookback
// window. Only win and loss rows count. A nil stat with a nil error means the
// result log has no decisive rows for the query.
func (s *Service) GetHitRate(ctx context.Context, sport string, market models.MarketType, selection string, lookbackDays int) (*models.HistoricalStat, error) {
	if lookbackDays <= 0 {
		return nil, fmt.Errorf("lookback days must be positive, got %d", lookbackDays)
	}

	key := PriorKey{Sport: sport, MarketType: market, Selection: selection, LookbackDays: lookbackDays}
	if s.cache != nil {
		if stat, found := s.cache.Get(ctx, key); found {
			return stat, nil
		}
	}

	now := s.clock.Now()
	rows, err := s.provider.QueryResults(ctx, repository.ResultFilter{
		Sport:      sport,
		MarketType: market,
		Selection:  selection,
		Since:      now.AddDate(0, 0, -lookbackDays),
	})
	if err != nil {
		return nil, asLookupFailure("query_results", err)
	}

	stat := summarize(key, rows, now)
	if s.cache != nil {
		s.cache.Set(ctx, key, stat)
	}

	if stat != nil {
		s.logger.WithFields(logrus.Fields{
			"key":         key.String(),
			"hit_rate":    stat.HitRate,
			"sample_size": stat.SampleSize,
			"tier":        stat.ConfidenceTier,
		}).Debug("Computed historical prior")
	}
	return stat, nil
}

func summarize(key PriorKey, rows []models.ResultRow, now time.Time) *models.HistoricalStat {
	wins, decisive := 0, 0
	for _, row := range rows {
		if !strings.EqualFold(row.Selection, key.Selection) || !row.Result.IsDecisive() {
			continue
		}
		decisive++
		if row.Result == models.ResultWin {
			wins++
		}
	}
	if decisive == 0 {
		return nil
	}

	return &models.HistoricalStat{
		Sport:          key.Sport,
		MarketType:     key.MarketType,
		SelectionKey:   key.Selection,
		LookbackDays:   key.LookbackDays,
		HitRate:        float64(wins) / float64(decisive),
		SampleSize:     decisive,
		ConfidenceTier: models.TierForSample(decisive),
		ComputedAt:     now,
	}
}

// GetClosingPrice resolves the closing line of a selection. A persisted
// closing record wins; otherwise the most recent quote observed at or before
// commence is used. Neither existing yields nil, nil.
func (s *Service) GetClosingPrice(ctx context.Context, q ClosingQuery) (*models.ClosingPrice, error) {
	record, err := s.provider.QueryClosingRecord(ctx, q.GameKey, q.MarketType, q.Selection, q.Sportsbook)
	switch {
	case err == nil && record != nil:
		return &models.ClosingPrice{
			Price:      strconv.FormatFloat(record.ClosingPrice, 'f', -1, 64),
			Decimal:    record.ClosingPrice,
			Sportsbook: record.Sportsbook,
			ObservedAt: record.ClosingObservedAt,
		}, nil
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, asLookupFailure("query_closing_record", err)
	}

	quotes, err := s.provider.QueryQuotes(ctx, q.GameKey, q.MarketType, q.Sportsbook, nil)
	if err != nil {
		return nil, asLookupFailure("query_quotes", err)
	}

	var latest *models.OddsQuote
	for i := range quotes {
		quote := &quotes[i]
		if !strings.EqualFold(quote.Selection, q.Selection) {
			continue
		}
		if q.Point != nil && quote.Point != nil && !quote.MatchesPoint(q.Point) {
			continue
		}
		if !q.CommenceTime.IsZero() && quote.ObservedAt.After(q.CommenceTime) {
			continue
		}
		if latest == nil || quote.ObservedAt.After(latest.ObservedAt) {
			latest = quote
		}
	}
	if latest == nil {
		return nil, nil
	}

	return &models.ClosingPrice{
		Price:      latest.Price,
		Decimal:    latest.DecimalOdds,
		Sportsbook: latest.Sportsbook,
		ObservedAt: latest.ObservedAt,
		FromQuote:  true,
	}, nil
}

func asLookupFailure(op string, err error) error {
	var failure *models.LookupFailure
	if errors.As(err, &failure) {
		return err
	}
	return models.NewLookupFailure(op, err)
}
