package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/smartslip/internal/models"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		format   models.OddsFormat
		expected float64
	}{
		{"american plus", "+150", models.OddsFormatAmerican, 2.5},
		{"american plus unsigned", "200", models.OddsFormatAmerican, 3.0},
		{"american minus", "-110", models.OddsFormatAmerican, 1.0 + 100.0/110.0},
		{"american minus heavy", "-300", models.OddsFormatAmerican, 1.0 + 100.0/300.0},
		{"american even", "+100", models.OddsFormatAmerican, 2.0},
		{"decimal passthrough", "1.91", models.OddsFormatDecimal, 1.91},
		{"fractional", "5/2", models.OddsFormatFractional, 3.5},
		{"fractional odds-on", "1/4", models.OddsFormatFractional, 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDecimal(tt.price, tt.format)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestToDecimalRejectsInvalidPrices(t *testing.T) {
	tests := []struct {
		name   string
		price  string
		format models.OddsFormat
	}{
		{"american zero", "0", models.OddsFormatAmerican},
		{"american inside band", "+50", models.OddsFormatAmerican},
		{"american garbage", "abc", models.OddsFormatAmerican},
		{"decimal one", "1.0", models.OddsFormatDecimal},
		{"decimal below one", "0.8", models.OddsFormatDecimal},
		{"fractional zero numerator", "0/1", models.OddsFormatFractional},
		{"fractional zero denominator", "5/0", models.OddsFormatFractional},
		{"fractional malformed", "5/2/1", models.OddsFormatFractional},
		{"empty", "  ", models.OddsFormatDecimal},
		{"unknown format", "2.0", models.OddsFormat("hongkong")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToDecimal(tt.price, tt.format)
			require.Error(t, err)
			assert.True(t, models.IsInvalidOdds(err))
		})
	}
}

func TestParsePriceDetectsFormat(t *testing.T) {
	tests := []struct {
		price    string
		format   models.OddsFormat
		expected float64
	}{
		{"-110", models.OddsFormatAmerican, 1.0 + 100.0/110.0},
		{"+120", models.OddsFormatAmerican, 2.2},
		{"150", models.OddsFormatAmerican, 2.5},
		{"1.95", models.OddsFormatDecimal, 1.95},
		{"11/10", models.OddsFormatFractional, 2.1},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			dec, format, err := ParsePrice(tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.InDelta(t, tt.expected, dec, 1e-9)
		})
	}
}

func TestImpliedProbabilityIsReciprocal(t *testing.T) {
	for _, d := range []float64{1.01, 1.5, 1.91, 2.0, 3.7245, 10, 101} {
		p, err := ImpliedProbability(d)
		require.NoError(t, err)
		assert.Equal(t, 1/d, p)
	}

	_, err := ImpliedProbability(1.0)
	assert.Error(t, err)
}

func TestAmericanRoundTrip(t *testing.T) {
	for _, american := range []float64{-1000, -250, -150, -110, -105, -100, 100, 105, 110, 150, 250, 1000} {
		dec, err := AmericanToDecimal(american)
		require.NoError(t, err)

		back, err := DecimalToAmerican(dec)
		require.NoError(t, err)

		if american == -100 {
			// -100 and +100 are the same price
			assert.InDelta(t, 100, back, 0.01)
			continue
		}
		assert.InDelta(t, american, back, 0.01, "round trip of %v", american)
	}
}

func TestProbabilityToDecimal(t *testing.T) {
	d, err := ProbabilityToDecimal(0.5)
	require.NoError(t, err)
	assert.Equal(t, 2.0, d)

	_, err = ProbabilityToDecimal(1)
	assert.ErrorIs(t, err, models.ErrInvalidProbability)
	_, err = ProbabilityToDecimal(0)
	assert.ErrorIs(t, err, models.ErrInvalidProbability)
}

func TestValidateForStaking(t *testing.T) {
	assert.NoError(t, ValidateForStaking(1.01))
	assert.NoError(t, ValidateForStaking(2.5))
	assert.True(t, models.IsInvalidOdds(ValidateForStaking(1.005)))
}

func TestConvert(t *testing.T) {
	c, err := Convert(" -110 ", "")
	require.NoError(t, err)
	assert.Equal(t, "-110", c.Price)
	assert.Equal(t, models.OddsFormatAmerican, c.Format)
	assert.InDelta(t, 1.909091, c.Decimal, 1e-6)
	assert.InDelta(t, -110.0, c.American, 1e-9)
	assert.InDelta(t, 0.523810, c.ImpliedProbability, 1e-6)

	c, err = Convert("2.5", models.OddsFormatDecimal)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, c.American, 1e-9)

	_, err = Convert("abc", models.OddsFormatDecimal)
	assert.True(t, models.IsInvalidOdds(err))
}
