package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/smartslip/internal/logger"
	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/repository"
)

// MockProvider mocks the data provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) QueryQuotes(ctx context.Context, gameKey string, market models.MarketType, book string, since *time.Time) ([]models.OddsQuote, error) {
	args := m.Called(ctx, gameKey, market, book, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OddsQuote), args.Error(1)
}

func (m *MockProvider) QueryResults(ctx context.Context, filter repository.ResultFilter) ([]models.ResultRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ResultRow), args.Error(1)
}

func (m *MockProvider) QueryClosingRecord(ctx context.Context, gameKey string, market models.MarketType, selection, book string) (*models.ClosingOddsRecord, error) {
	args := m.Called(ctx, gameKey, market, selection, book)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClosingOddsRecord), args.Error(1)
}

func resultRows(selection string, wins, losses, pushes int) []models.ResultRow {
	rows := make([]models.ResultRow, 0, wins+losses+pushes)
	add := func(n int, outcome models.ResultOutcome) {
		for i := 0; i < n; i++ {
			rows = append(rows, models.ResultRow{Result: outcome, Selection: selection, MarketType: models.MarketMoneyline, Sport: "nba"})
		}
	}
	add(wins, models.ResultWin)
	add(losses, models.ResultLoss)
	add(pushes, models.ResultPush)
	return rows
}

func newTestService(provider *MockProvider, clock Clock) *Service {
	return NewService(provider, NewMemoryCache(time.Hour, 100, clock), clock, logger.Discard())
}

func TestGetHitRateTiers(t *testing.T) {
	tests := []struct {
		name         string
		wins, losses int
		tier         models.ConfidenceTier
		hitRate      float64
	}{
		{"eight samples", 5, 3, models.TierVeryLow, 5.0 / 8.0},
		{"thirty-five samples", 21, 14, models.TierMedium, 0.6},
		{"ten samples", 4, 6, models.TierLow, 0.4},
		{"hundred samples", 55, 45, models.TierHigh, 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{}
			provider.On("QueryResults", mock.Anything, mock.Anything).
				Return(resultRows("Celtics", tt.wins, tt.losses, 2), nil)

			svc := newTestService(provider, newFakeClock())
			stat, err := svc.GetHitRate(context.Background(), "nba", models.MarketMoneyline, "Celtics", 90)
			require.NoError(t, err)
			require.NotNil(t, stat)

			assert.Equal(t, tt.wins+tt.losses, stat.SampleSize)
			assert.Equal(t, tt.tier, stat.ConfidenceTier)
			assert.InDelta(t, tt.hitRate, stat.HitRate, 1e-12)
		})
	}
}

func TestGetHitRateNoRowsReturnsNil(t *testing.T) {
	provider := &MockProvider{}
	provider.On("QueryResults", mock.Anything, mock.Anything).Return([]models.ResultRow{}, nil).Once()

	svc := newTestService(provider, newFakeClock())
	stat, err := svc.GetHitRate(context.Background(), "nba", models.MarketMoneyline, "Celtics", 90)
	require.NoError(t, err)
	assert.Nil(t, stat)

	// the empty answer is cached too
	stat, err = svc.GetHitRate(context.Background(), "nba", models.MarketMoneyline, "Celtics", 90)
	require.NoError(t, err)
	assert.Nil(t, stat)
	provider.AssertNumberOfCalls(t, "QueryResults", 1)
}

func TestGetHitRateIgnoresOtherSelectionsAndPushes(t *testing.T) {
	rows := append(resultRows("Celtics", 3, 1, 5), resultRows("Knicks", 10, 0, 0)...)
	provider := &MockProvider{}
	provider.On("QueryResults", mock.Anything, mock.Anything).Return(rows, nil)

	svc := newTestService(provider, newFakeClock())
	stat, err := svc.GetHitRate(context.Background(), "nba", models.MarketMoneyline, "celtics", 90)
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.Equal(t, 4, stat.SampleSize)
	assert.Equal(t, 0.75, stat.HitRate)
}

func TestGetHitRateUsesLookbackWindow(t *testing.T) {
	clock := newFakeClock()
	provider := &MockProvider{}
	provider.On("QueryResults", mock.Anything, mock.MatchedBy(func(f repository.ResultFilter) bool {
		return f.Since.Equal(clock.Now().AddDate(0, 0, -30)) && f.Sport == "nba" && f.Selection == "Celtics"
	})).Return(resultRows("Celtics", 1, 1, 0), nil)

	svc := newTestService(provider, clock)
	_, err := svc.GetHitRate(context.Background(), "nba", models.MarketMoneyline, "Celtics", 30)
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestGetHitRateServesCacheUntilTTL(t *testing.T) {
	clock := newFakeClock()
	provider := &MockProvider{}
	provider.On("QueryResults", mock.Anything, mock.Anything).Return(resultRows("Celtics", 6, 4, 0), nil).Once()
	provider.On("QueryResults", mock.Anything, mock.Anything).Return(resultRows("Celtics", 7, 4, 0), nil).Once()

	svc := newTestService(provider, clock)
	ctx := context.Background()

	first, err := svc.GetHitRate(ctx, "nba", models.MarketMoneyline, "Celtics", 90)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	second, err := svc.GetHitRate(ctx, "nba", models.MarketMoneyline, "Celtics", 90)
	require.NoError(t, err)
	assert.Same(t, first, second, "stale snapshot is served within TTL")

	clock.Advance(31 * time.Minute)
	third, err := svc.GetHitRate(ctx, "nba", models.MarketMoneyline, "Celtics", 90)
	require.NoError(t, err)
	assert.Equal(t, 11, third.SampleSize)
	provider.AssertNumberOfCalls(t, "QueryResults", 2)
}

func TestGetHitRateWrapsProviderErrors(t *testing.T) {
	provider := &MockProvider{}
	provider.On("QueryResults", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	svc := newTestService(provider, newFakeClock())
	stat, err := svc.GetHitRate(context.Background(), "nba", models.MarketMoneyline, "Celtics", 90)
	assert.Nil(t, stat)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)

	var failure *models.LookupFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "query_results", failure.Op)
}

func TestGetHitRateRejectsBadLookback(t *testing.T) {
	svc := newTestService(&MockProvider{}, newFakeClock())
	_, err := svc.GetHitRate(context.Background(), "nba", models.MarketMoneyline, "Celtics", 0)
	assert.Error(t, err)
}

func TestGetClosingPricePrefersRecord(t *testing.T) {
	observed := time.Date(2026, 10, 1, 23, 59, 0, 0, time.UTC)
	provider := &MockProvider{}
	provider.On("QueryClosingRecord", mock.Anything, "g1", models.MarketMoneyline, "Celtics", "pinnacle").
		Return(&models.ClosingOddsRecord{Sportsbook: "pinnacle", ClosingPrice: 1.87, ClosingObservedAt: observed}, nil)

	svc := newTestService(provider, newFakeClock())
	price, err := svc.GetClosingPrice(context.Background(), ClosingQuery{
		GameKey: "g1", MarketType: models.MarketMoneyline, Selection: "Celtics", Sportsbook: "pinnacle",
	})
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 1.87, price.Decimal)
	assert.False(t, price.FromQuote)
	provider.AssertNotCalled(t, "QueryQuotes", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetClosingPriceFallsBackToLatestPreCloseQuote(t *testing.T) {
	commence := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	quotes := []models.OddsQuote{
		{Selection: "Celtics", Sportsbook: "pinnacle", Price: "-120", DecimalOdds: 1.8333, ObservedAt: commence.Add(-3 * time.Hour)},
		{Selection: "Celtics", Sportsbook: "pinnacle", Price: "-125", DecimalOdds: 1.80, ObservedAt: commence.Add(-5 * time.Minute)},
		{Selection: "Knicks", Sportsbook: "pinnacle", Price: "+110", DecimalOdds: 2.10, ObservedAt: commence.Add(-time.Minute)},
		{Selection: "Celtics", Sportsbook: "pinnacle", Price: "-200", DecimalOdds: 1.50, ObservedAt: commence.Add(10 * time.Minute)},
	}
	provider := &MockProvider{}
	provider.On("QueryClosingRecord", mock.Anything, "g1", models.MarketMoneyline, "Celtics", "").
		Return(nil, models.ErrNotFound)
	provider.On("QueryQuotes", mock.Anything, "g1", models.MarketMoneyline, "", (*time.Time)(nil)).
		Return(quotes, nil)

	svc := newTestService(provider, newFakeClock())
	price, err := svc.GetClosingPrice(context.Background(), ClosingQuery{
		GameKey: "g1", MarketType: models.MarketMoneyline, Selection: "Celtics", CommenceTime: commence,
	})
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 1.80, price.Decimal)
	assert.Equal(t, "-125", price.Price)
	assert.True(t, price.FromQuote)
}

func TestGetClosingPriceNothingAvailable(t *testing.T) {
	provider := &MockProvider{}
	provider.On("QueryClosingRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, models.ErrNotFound)
	provider.On("QueryQuotes", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.OddsQuote{}, nil)

	svc := newTestService(provider, newFakeClock())
	price, err := svc.GetClosingPrice(context.Background(), ClosingQuery{GameKey: "g1", MarketType: models.MarketMoneyline, Selection: "Celtics"})
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestGetClosingPriceRecordError(t *testing.T) {
	provider := &MockProvider{}
	provider.On("QueryClosingRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))

	svc := newTestService(provider, newFakeClock())
	_, err := svc.GetClosingPrice(context.Background(), ClosingQuery{GameKey: "g1", MarketType: models.MarketMoneyline, Selection: "Celtics"})
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}
