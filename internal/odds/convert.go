// Package odds converts sportsbook prices between formats and removes
// bookmaker margin from market probabilities.
package odds

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/smartslip/internal/models"
)

// MinDecimalOdds is the shortest price EV and Kelly accept. Anything shorter
// implies a certain loss once margin is paid.
const MinDecimalOdds = 1.01

// ToDecimal converts a price written in the given format to decimal odds.
//
//	American +150 -> 2.50
//	American -110 -> 1.9091
//	Fractional 5/2 -> 3.50
//
// Results at or below 1.0 are rejected with an InvalidOddsError.
func ToDecimal(price string, format models.OddsFormat) (float64, error) {
	raw := strings.TrimSpace(price)
	if raw == "" {
		return 0, models.NewInvalidOddsError(price, format, "empty price")
	}

	var (
		dec float64
		err error
	)
	switch format {
	case models.OddsFormatAmerican:
		var american float64
		american, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, models.NewInvalidOddsError(price, format, "not a number")
		}
		dec, err = AmericanToDecimal(american)
	case models.OddsFormatDecimal:
		dec, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, models.NewInvalidOddsError(price, format, "not a number")
		}
	case models.OddsFormatFractional:
		dec, err = FractionalToDecimal(raw)
	default:
		return 0, models.NewInvalidOddsError(price, format, "unknown odds format")
	}
	if err != nil {
		return 0, err
	}

	if math.IsNaN(dec) || math.IsInf(dec, 0) || dec <= 1.0 {
		return 0, models.NewInvalidOddsError(price, format, fmt.Sprintf("decimal odds %.4f must exceed 1.0", dec))
	}
	return dec, nil
}

// ParsePrice detects the format of a raw price and converts it to decimal.
// "a/b" is fractional, a leading sign or a magnitude of at least 100 is
// American, anything else is decimal.
func ParsePrice(price string) (float64, models.OddsFormat, error) {
	format := DetectFormat(price)
	dec, err := ToDecimal(price, format)
	return dec, format, err
}

// DetectFormat guesses the format of a raw price
func DetectFormat(price string) models.OddsFormat {
	raw := strings.TrimSpace(price)
	if strings.Contains(raw, "/") {
		return models.OddsFormatFractional
	}
	if strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-") {
		return models.OddsFormatAmerican
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && math.Abs(v) >= 100 {
		return models.OddsFormatAmerican
	}
	return models.OddsFormatDecimal
}

// AmericanToDecimal converts American odds to decimal odds
func AmericanToDecimal(american float64) (float64, error) {
	label := strconv.FormatFloat(american, 'f', -1, 64)
	switch {
	case american >= 100:
		return 1.0 + american/100.0, nil
	case american <= -100:
		return 1.0 + 100.0/math.Abs(american), nil
	default:
		return 0, models.NewInvalidOddsError(label, models.OddsFormatAmerican, "magnitude must be at least 100")
	}
}

// DecimalToAmerican converts decimal odds back to American odds, rounded to
// two places. Prices of 2.0 and longer are positive.
func DecimalToAmerican(dec float64) (float64, error) {
	if dec <= 1.0 {
		return 0, models.NewInvalidOddsError(strconv.FormatFloat(dec, 'f', -1, 64), models.OddsFormatDecimal, "decimal odds must exceed 1.0")
	}

	var american decimal.Decimal
	if dec >= 2.0 {
		american = decimal.NewFromFloat(dec).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	} else {
		american = decimal.NewFromInt(-100).Div(decimal.NewFromFloat(dec).Sub(decimal.NewFromInt(1)))
	}
	value, _ := american.Round(2).Float64()
	return value, nil
}

// FractionalToDecimal converts "n/d" to decimal odds using exact arithmetic
func FractionalToDecimal(fraction string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(fraction), "/")
	if len(parts) != 2 {
		return 0, models.NewInvalidOddsError(fraction, models.OddsFormatFractional, "expected numerator/denominator")
	}

	num, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, models.NewInvalidOddsError(fraction, models.OddsFormatFractional, "numerator is not a number")
	}
	den, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, models.NewInvalidOddsError(fraction, models.OddsFormatFractional, "denominator is not a number")
	}
	if !den.IsPositive() || !num.IsPositive() {
		return 0, models.NewInvalidOddsError(fraction, models.OddsFormatFractional, "numerator and denominator must be positive")
	}

	value, _ := decimal.NewFromInt(1).Add(num.DivRound(den, 10)).Float64()
	return value, nil
}

// ImpliedProbability returns 1/decimal
func ImpliedProbability(dec float64) (float64, error) {
	if dec <= 1.0 {
		return 0, models.NewInvalidOddsError(strconv.FormatFloat(dec, 'f', -1, 64), models.OddsFormatDecimal, "decimal odds must exceed 1.0")
	}
	return 1.0 / dec, nil
}

// ProbabilityToDecimal returns the fair decimal price of a probability
func ProbabilityToDecimal(p float64) (float64, error) {
	if !models.ValidProbability(p) {
		return 0, models.ErrInvalidProbability
	}
	return 1.0 / p, nil
}

// ValidateForStaking rejects prices too short for EV/Kelly
func ValidateForStaking(dec float64) error {
	if dec < MinDecimalOdds {
		return models.NewInvalidOddsError(strconv.FormatFloat(dec, 'f', -1, 64), models.OddsFormatDecimal,
			fmt.Sprintf("decimal odds below minimum %.2f", MinDecimalOdds))
	}
	return nil
}

// Conversion is one price written in every supported format
type Conversion struct {
	Price              string            `json:"price"`
	Format             models.OddsFormat `json:"format"`
	Decimal            float64           `json:"decimal"`
	American           float64           `json:"american"`
	ImpliedProbability float64           `json:"implied_probability"`
}

// Convert normalizes a price into every format. An empty format is detected
// from the price.
func Convert(price string, format models.OddsFormat) (*Conversion, error) {
	var (
		dec float64
		err error
	)
	if format == "" {
		dec, format, err = ParsePrice(price)
	} else {
		dec, err = ToDecimal(price, format)
	}
	if err != nil {
		return nil, err
	}

	american, err := DecimalToAmerican(dec)
	if err != nil {
		return nil, err
	}
	implied, err := ImpliedProbability(dec)
	if err != nil {
		return nil, err
	}

	return &Conversion{
		Price:              strings.TrimSpace(price),
		Format:             format,
		Decimal:            dec,
		American:           american,
		ImpliedProbability: implied,
	}, nil
}
