package clv

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/smartslip/internal/models"
)

var (
	commence = time.Date(2026, 10, 21, 23, 30, 0, 0, time.UTC)
	before   = commence.Add(-time.Hour)
	after    = commence.Add(3 * time.Hour)
)

func TestPercent(t *testing.T) {
	pct, err := Percent(1.91, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, (2.0-1.91)/1.91, pct, 1e-12)

	_, err = Percent(1.0, 2.0)
	assert.True(t, models.IsInvalidOdds(err))
	_, err = Percent(1.91, 1.0)
	assert.True(t, models.IsInvalidOdds(err))
}

func TestPercentSign(t *testing.T) {
	entries := []float64{1.5, 1.91, 2.0, 3.25}
	closings := []float64{1.4, 1.5, 1.87, 1.91, 2.0, 2.2, 3.25, 4.0}

	for _, entry := range entries {
		for _, closing := range closings {
			pct, err := Percent(entry, closing)
			require.NoError(t, err)
			assert.Equal(t, closing > entry, pct > 0, "entry=%v closing=%v", entry, closing)
		}
	}
}

func TestAssess(t *testing.T) {
	record := &models.ClosingPrice{Decimal: 2.0, Sportsbook: "pinnacle"}
	fromQuote := &models.ClosingPrice{Decimal: 2.0, FromQuote: true}

	tests := []struct {
		name    string
		closing *models.ClosingPrice
		err     error
		now     time.Time
		status  models.ClosingStatus
	}{
		{"record before start", record, nil, before, models.ClosingAvailable},
		{"quote fallback after start", fromQuote, nil, after, models.ClosingAvailable},
		{"quote fallback while open", fromQuote, nil, before, models.ClosingUnknown},
		{"no data", nil, nil, after, models.ClosingUnknown},
		{"lookup failed", nil, errors.New("timeout"), after, models.ClosingError},
		{"corrupt closing price", &models.ClosingPrice{Decimal: 0.5}, nil, after, models.ClosingError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(1.91, tt.closing, tt.err, commence, tt.now)
			assert.Equal(t, tt.status, got.Status)
			if tt.status == models.ClosingAvailable {
				require.NotNil(t, got.CLVPercent)
				require.NotNil(t, got.ClosingDecimal)
				assert.Positive(t, *got.CLVPercent)
			} else {
				assert.Nil(t, got.CLVPercent)
				assert.Nil(t, got.ClosingDecimal)
			}
		})
	}
}

func legWithCLV(v *float64) models.Leg {
	return models.Leg{CLV: models.LegCLV{CLVPercent: v}}
}

func ptr(v float64) *float64 { return &v }

func TestAggregate(t *testing.T) {
	legs := []models.Leg{
		legWithCLV(ptr(0.04)),
		legWithCLV(ptr(-0.02)),
		legWithCLV(nil),
		legWithCLV(ptr(0.01)),
		legWithCLV(ptr(0)),
	}

	summary := Aggregate(legs)
	require.NotNil(t, summary.MeanCLV)
	assert.InDelta(t, 0.0075, *summary.MeanCLV, 1e-12)
	assert.Equal(t, -0.02, *summary.WorstCLV)
	assert.Equal(t, 2, *summary.BeatMarketCount)
	assert.Equal(t, 1, *summary.LaggedMarketCount)
	assert.Equal(t, 4, summary.LegsWithCLV)
}

func TestAggregateWithoutData(t *testing.T) {
	summary := Aggregate([]models.Leg{legWithCLV(nil), legWithCLV(nil)})

	assert.Nil(t, summary.MeanCLV)
	assert.Nil(t, summary.WorstCLV)
	assert.Nil(t, summary.BeatMarketCount)
	assert.Nil(t, summary.LaggedMarketCount)
	assert.Zero(t, summary.LegsWithCLV)

	assert.Equal(t, models.CLVSummary{}, Aggregate(nil))
}
