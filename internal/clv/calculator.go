// Package clv grades entry prices against the closing line.
package clv

import (
	"math"
	"time"

	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/odds"
)

// Percent returns (closing - entry) / entry with both prices in decimal
// odds. It is positive exactly when the closing price is longer than the
// entry price.
func Percent(entryDecimal, closingDecimal float64) (float64, error) {
	if err := odds.ValidateForStaking(entryDecimal); err != nil {
		return 0, err
	}
	if closingDecimal <= 1 {
		return 0, models.NewInvalidOddsError("", models.OddsFormatDecimal, "closing decimal odds must exceed 1.0")
	}
	return (closingDecimal - entryDecimal) / entryDecimal, nil
}

// Assess grades one leg. A lookup error yields status error and a missing
// closing price yields unknown; neither is fatal. A price recovered from the
// quote history only counts as closing once the game has started.
func Assess(entryDecimal float64, closing *models.ClosingPrice, lookupErr error, commence, now time.Time) models.LegCLV {
	switch {
	case lookupErr != nil:
		return models.LegCLV{Status: models.ClosingError}
	case closing == nil:
		return models.LegCLV{Status: models.ClosingUnknown}
	case closing.FromQuote && !commence.IsZero() && now.Before(commence):
		return models.LegCLV{Status: models.ClosingUnknown}
	}

	pct, err := Percent(entryDecimal, closing.Decimal)
	if err != nil {
		return models.LegCLV{Status: models.ClosingError}
	}
	closingDecimal := closing.Decimal
	return models.LegCLV{
		Status:         models.ClosingAvailable,
		ClosingDecimal: &closingDecimal,
		CLVPercent:     &pct,
	}
}

// Aggregate summarizes CLV over the legs that have it. With no such leg
// every field is nil.
func Aggregate(legs []models.Leg) models.CLVSummary {
	var (
		sum    float64
		worst  = math.Inf(1)
		beat   int
		lagged int
		n      int
	)
	for _, leg := range legs {
		if leg.CLV.CLVPercent == nil {
			continue
		}
		v := *leg.CLV.CLVPercent
		n++
		sum += v
		worst = math.Min(worst, v)
		switch {
		case v > 0:
			beat++
		case v < 0:
			lagged++
		}
	}

	if n == 0 {
		return models.CLVSummary{}
	}

	mean := sum / float64(n)
	return models.CLVSummary{
		MeanCLV:           &mean,
		WorstCLV:          &worst,
		BeatMarketCount:   &beat,
		LaggedMarketCount: &lagged,
		LegsWithCLV:       n,
	}
}
