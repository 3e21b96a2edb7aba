// Package ev computes expected value and Kelly stake sizing and applies the
// quality gate to scored legs.
package ev

import (
	"fmt"

	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/odds"
)

// LegContext selects which EV threshold a leg is held to
type LegContext string

const (
	ContextSingle    LegContext = "single"
	ContextParlayLeg LegContext = "parlay_leg"
)

// ExpectedValue returns p*d - 1 per unit staked
func ExpectedValue(p, dec float64) (float64, error) {
	if err := validate(p, dec); err != nil {
		return 0, err
	}
	return p*dec - 1, nil
}

// FullKelly returns the Kelly fraction (b*p - q)/b with b = d-1, clamped at
// zero. (b*p - q) reduces to p*d - 1, so the fraction carries exactly the
// sign of the EV.
func FullKelly(p, dec float64) (float64, error) {
	if err := validate(p, dec); err != nil {
		return 0, err
	}
	f := (p*dec - 1) / (dec - 1)
	if f < 0 {
		return 0, nil
	}
	return f, nil
}

func validate(p, dec float64) error {
	if !models.ValidProbability(p) {
		return models.ErrInvalidProbability
	}
	return odds.ValidateForStaking(dec)
}

// Calculator applies the configured Kelly fraction and quality gate
type Calculator struct {
	thresholds config.ThresholdConfig
}

// NewCalculator creates an EV/Kelly calculator
func NewCalculator(thresholds config.ThresholdConfig) *Calculator {
	return &Calculator{thresholds: thresholds}
}

// Metrics computes EV and Kelly figures for a probability and decimal price.
// PassesFilters is left false; Score sets it.
func (c *Calculator) Metrics(p, dec float64) (models.LegMetrics, error) {
	value, err := ExpectedValue(p, dec)
	if err != nil {
		return models.LegMetrics{}, err
	}
	kelly, err := FullKelly(p, dec)
	if err != nil {
		return models.LegMetrics{}, err
	}

	return models.LegMetrics{
		EV:              value,
		EVPercent:       value * 100,
		KellyFull:       kelly,
		KellyFractional: kelly * c.thresholds.KellyFraction,
	}, nil
}

// ParlayMetrics computes slip-level EV and Kelly for a combined probability
// and combined decimal price. SmartScore is left for the parlay engine.
func (c *Calculator) ParlayMetrics(p, dec float64) (models.ParlayMetrics, error) {
	lm, err := c.Metrics(p, dec)
	if err != nil {
		return models.ParlayMetrics{}, err
	}
	return models.ParlayMetrics{
		EV:              lm.EV,
		EVPercent:       lm.EVPercent,
		KellyFull:       lm.KellyFull,
		KellyFractional: lm.KellyFractional,
	}, nil
}

// Score returns a copy of the leg with metrics filled in from its blended
// probability and entry price. Gate failures are recorded as issues and
// never returned as errors.
func (c *Calculator) Score(leg models.Leg, legContext LegContext) (models.Leg, error) {
	metrics, err := c.Metrics(leg.Probabilities.True, leg.EntryDecimal)
	if err != nil {
		return leg, err
	}
	leg.Metrics = metrics

	issues := c.Gate(metrics.EVPercent, leg.Probabilities.True, leg.Confidence.Score, legContext)
	leg.Metrics.PassesFilters = len(issues) == 0
	for _, issue := range issues {
		leg = leg.WithIssue(issue)
	}
	return leg, nil
}

// Gate returns one human-readable issue per failed check
func (c *Calculator) Gate(evPercent, p, confidence float64, legContext LegContext) []string {
	t := c.thresholds
	var issues []string

	minEV := t.MinSingleEVPercent
	if legContext == ContextParlayLeg {
		minEV = t.MinParlayLegEVPercent
	}
	if evPercent < minEV {
		issues = append(issues, fmt.Sprintf("EV %.2f%% below %.2f%% minimum for a %s", evPercent, minEV, describe(legContext)))
	}
	if p < t.MinProbability || p > t.MaxProbability {
		issues = append(issues, fmt.Sprintf("probability %.3f outside the %.2f-%.2f band", p, t.MinProbability, t.MaxProbability))
	}
	if confidence < t.MinConfidence {
		issues = append(issues, fmt.Sprintf("confidence %.0f below minimum %.0f", confidence, t.MinConfidence))
	}
	return issues
}

func describe(legContext LegContext) string {
	if legContext == ContextParlayLeg {
		return "parlay leg"
	}
	return "single"
}
