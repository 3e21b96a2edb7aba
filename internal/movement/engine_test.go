package movement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/models"
)

var commence = time.Date(2026, 10, 21, 23, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(config.DefaultEngineConfig().Movement, "pinnacle")
}

func sharpQuote(selection string, p float64, minutesBefore int) models.OddsQuote {
	return models.OddsQuote{
		GameKey:     "g1",
		Sportsbook:  "Pinnacle",
		MarketType:  models.MarketMoneyline,
		Selection:   selection,
		DecimalOdds: 1 / p,
		ObservedAt:  commence.Add(-time.Duration(minutesBefore) * time.Minute),
	}
}

func moneylineQuery(selection string) Query {
	return Query{GameKey: "g1", MarketType: models.MarketMoneyline, Selection: selection, CommenceTime: commence}
}

func TestFavoritePressureScenario(t *testing.T) {
	quotes := []models.OddsQuote{
		sharpQuote("Favorite", 0.55, 24*60),
		sharpQuote("Underdog", 0.45, 24*60),
		sharpQuote("Favorite", 0.60, 5),
		sharpQuote("Underdog", 0.38, 5),
	}

	fav, err := newTestEngine().Compute(quotes, moneylineQuery("Favorite"))
	require.NoError(t, err)
	assert.InDelta(t, 0.12, fav.FavoritePressure, 1e-9)
	assert.Equal(t, 1.0, fav.Normalized.FPSignal)

	dog, err := newTestEngine().Compute(quotes, moneylineQuery("Underdog"))
	require.NoError(t, err)
	assert.InDelta(t, 0.12, dog.FavoritePressure, 1e-9, "pressure is a property of the market")
}

func TestFavoritePressureFunction(t *testing.T) {
	assert.InDelta(t, 0.12, FavoritePressure(0.55, 0.60, 0.45, 0.38), 1e-12)
	assert.InDelta(t, 0.12, FavoritePressure(0.45, 0.38, 0.55, 0.60), 1e-12)
}

func TestFavoritePressureNeedsBothSides(t *testing.T) {
	quotes := []models.OddsQuote{
		sharpQuote("Favorite", 0.55, 24*60),
		sharpQuote("Favorite", 0.60, 5),
	}

	signal, err := newTestEngine().Compute(quotes, moneylineQuery("Favorite"))
	require.NoError(t, err)
	assert.Zero(t, signal.FavoritePressure)
	assert.Zero(t, signal.Normalized.FPSignal)
}

func TestFavoritePressureMoneylineOnly(t *testing.T) {
	line := -3.5
	counter := 3.5
	quotes := []models.OddsQuote{
		sharpQuote("Celtics", 0.50, 600),
		sharpQuote("Knicks", 0.50, 600),
		sharpQuote("Celtics", 0.56, 10),
		sharpQuote("Knicks", 0.44, 10),
	}
	for i := range quotes {
		quotes[i].MarketType = models.MarketSpread
		if quotes[i].Selection == "Celtics" {
			quotes[i].Point = &line
		} else {
			quotes[i].Point = &counter
		}
	}

	signal, err := newTestEngine().Compute(quotes, Query{
		GameKey: "g1", MarketType: models.MarketSpread, Selection: "Celtics", Point: &line, CommenceTime: commence,
	})
	require.NoError(t, err)
	assert.Zero(t, signal.FavoritePressure)
	assert.InDelta(t, 0.06, signal.DriftOpen, 1e-9)
	assert.Equal(t, 1.0, signal.Normalized.LMSignal, "spread drift bound is 0.03")
}

func TestAnchorsAndDrift(t *testing.T) {
	quotes := []models.OddsQuote{
		sharpQuote("Celtics", 0.50, 600),
		sharpQuote("Celtics", 0.52, 90),
		sharpQuote("Celtics", 0.53, 60),
		sharpQuote("Celtics", 0.51, 30),
		sharpQuote("Celtics", 0.49, 0),
		sharpQuote("Celtics", 0.30, -30), // in-play, ignored
	}

	signal, err := newTestEngine().Compute(quotes, moneylineQuery("Celtics"))
	require.NoError(t, err)

	assert.InDelta(t, 0.50, signal.OpenProbability, 1e-9)
	assert.InDelta(t, 0.53, signal.T60Probability, 1e-9)
	assert.InDelta(t, 0.49, signal.CloseProbability, 1e-9)
	assert.InDelta(t, -0.01, signal.DriftOpen, 1e-9)
	assert.InDelta(t, -0.04, signal.Drift60, 1e-9)
	assert.Equal(t, "pinnacle", signal.SharpBook)
}

func TestT60FallsBackToOpen(t *testing.T) {
	quotes := []models.OddsQuote{
		sharpQuote("Celtics", 0.50, 45),
		sharpQuote("Celtics", 0.54, 10),
	}

	signal, err := newTestEngine().Compute(quotes, moneylineQuery("Celtics"))
	require.NoError(t, err)
	assert.InDelta(t, 0.50, signal.T60Probability, 1e-9)
	assert.InDelta(t, signal.DriftOpen, signal.Drift60, 1e-12)
}

func TestVelocityOverTrailingWindow(t *testing.T) {
	quotes := []models.OddsQuote{
		sharpQuote("Celtics", 0.40, 600),
		sharpQuote("Celtics", 0.50, 180),
		sharpQuote("Celtics", 0.51, 60),
		sharpQuote("Celtics", 0.54, 0),
	}

	signal, err := newTestEngine().Compute(quotes, moneylineQuery("Celtics"))
	require.NoError(t, err)

	// price in force at the window start is 0.50; +0.04 over two hours
	assert.InDelta(t, 0.02, signal.Velocity120, 1e-9)
	assert.InDelta(t, 1.0, signal.Normalized.VelSignal, 1e-9)
}

func TestVelocityWithoutEarlierPrice(t *testing.T) {
	quotes := []models.OddsQuote{
		sharpQuote("Celtics", 0.50, 60),
		sharpQuote("Celtics", 0.51, 0),
	}

	signal, err := newTestEngine().Compute(quotes, moneylineQuery("Celtics"))
	require.NoError(t, err)
	assert.InDelta(t, 0.01, signal.Velocity120, 1e-9)
	assert.InDelta(t, 0.5, signal.Normalized.VelSignal, 1e-9)
	assert.InDelta(t, 0.5*0.2+0.5*0.5, signal.Normalized.LineMoveSignal, 1e-9)
}

func TestComputeIgnoresOtherBooks(t *testing.T) {
	q := sharpQuote("Celtics", 0.5, 30)
	q.Sportsbook = "draftkings"

	_, err := newTestEngine().Compute([]models.OddsQuote{q}, moneylineQuery("Celtics"))
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.5, Normalize(0.025, 0.05))
	assert.Equal(t, 0.5, Normalize(-0.025, 0.05))
	assert.Equal(t, 1.0, Normalize(0.2, 0.05))
	assert.Equal(t, 0.0, Normalize(0.2, 0))
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name     string
		signal   models.MovementSignal
		ev       float64
		expected models.MovementRecommendation
	}{
		{
			name:     "pressure against us with thin edge",
			signal:   models.MovementSignal{DriftOpen: -0.03, Normalized: models.NormalizedSignals{FPSignal: 0.8}},
			ev:       0.5,
			expected: models.RecommendReplace,
		},
		{
			name:     "late drift against a losing bet",
			signal:   models.MovementSignal{DriftOpen: -0.01, Drift60: -0.03, Normalized: models.NormalizedSignals{FPSignal: 0.2}},
			ev:       -1,
			expected: models.RecommendHedge,
		},
		{
			name:     "strong move with edge",
			signal:   models.MovementSignal{DriftOpen: 0.04, Normalized: models.NormalizedSignals{LMSignal: 0.8}},
			ev:       3,
			expected: models.RecommendStrongHold,
		},
		{
			name:     "replace takes precedence over hedge",
			signal:   models.MovementSignal{DriftOpen: -0.05, Drift60: -0.04, Normalized: models.NormalizedSignals{FPSignal: 0.9}},
			ev:       -2,
			expected: models.RecommendReplace,
		},
		{
			name:     "quiet market",
			signal:   models.MovementSignal{Normalized: models.NormalizedSignals{LMSignal: 0.1}},
			ev:       1.5,
			expected: models.RecommendHold,
		},
		{
			name:     "strong move without enough edge",
			signal:   models.MovementSignal{DriftOpen: 0.04, Normalized: models.NormalizedSignals{LMSignal: 0.8}},
			ev:       2,
			expected: models.RecommendHold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := tt.signal
			assert.Equal(t, tt.expected, Recommend(&signal, tt.ev))

			withRec := WithRecommendation(&signal, tt.ev)
			assert.Equal(t, tt.expected, withRec.Recommendation)
			assert.Empty(t, signal.Recommendation)
		})
	}
}
