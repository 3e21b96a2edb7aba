package odds

import (
	"fmt"

	"github.com/yourusername/smartslip/internal/models"
)

// RemoveVig strips bookmaker margin from a market by proportional
// normalization: p_i' = p_i / sum(p). The same rule serves 2-way and N-way
// markets. Shin and power methods are deliberately not implemented; the
// proportional rule spreads margin evenly in relative terms, which slightly
// overstates longshots in heavily juiced N-way markets.
func RemoveVig(probabilities []float64) ([]float64, error) {
	if len(probabilities) < 2 {
		return nil, fmt.Errorf("need at least 2 outcomes, got %d", len(probabilities))
	}

	total := 0.0
	for i, p := range probabilities {
		if !models.ValidProbability(p) {
			return nil, fmt.Errorf("outcome %d: %w", i, models.ErrInvalidProbability)
		}
		total += p
	}

	fair := make([]float64, len(probabilities))
	for i, p := range probabilities {
		fair[i] = p / total
	}
	return fair, nil
}

// RemoveVigFromDecimal converts a full market of decimal prices to fair
// probabilities in the same order
func RemoveVigFromDecimal(prices []float64) ([]float64, error) {
	implied := make([]float64, len(prices))
	for i, price := range prices {
		p, err := ImpliedProbability(price)
		if err != nil {
			return nil, err
		}
		implied[i] = p
	}
	return RemoveVig(implied)
}

// VigPercentage returns the overround of a market in percent.
// Markets priced at or under 100% report zero.
func VigPercentage(probabilities []float64) float64 {
	total := 0.0
	for _, p := range probabilities {
		total += p
	}
	if total <= 1.0 {
		return 0
	}
	return (total - 1.0) * 100.0
}
