// Package parlay combines scored legs into a slip: joint probability with a
// correlation discount, combined odds, EV/Kelly, smart score and verdict.
package parlay

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/smartslip/internal/clv"
	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/ev"
	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/odds"
)

// Quality gate names
const (
	GateParlayEV    = "parlay_ev"
	GateLegFilters  = "leg_filters"
	GateCorrelation = "correlation"
	GateConfidence  = "confidence"
)

// Engine builds parlays under the configured policy
type Engine struct {
	cfg  config.EngineConfig
	calc *ev.Calculator
}

// NewEngine creates a parlay engine
func NewEngine(cfg config.EngineConfig) *Engine {
	return &Engine{cfg: cfg, calc: ev.NewCalculator(cfg.Thresholds)}
}

// Analyze combines scored legs into a parlay. Zero legs and legs carrying a
// structurally invalid price or probability are hard errors; everything
// else is reported through quality gates and leg issues.
func (e *Engine) Analyze(legs []models.Leg) (*models.Parlay, error) {
	if len(legs) == 0 {
		return nil, models.ErrNoLegs
	}

	naive := 1.0
	combinedOdds := 1.0
	for _, leg := range legs {
		if err := odds.ValidateForStaking(leg.EntryDecimal); err != nil {
			return nil, fmt.Errorf("leg %s: %w", leg.ID, err)
		}
		if !models.ValidProbability(leg.Probabilities.True) {
			return nil, fmt.Errorf("leg %s: %w", leg.ID, models.ErrInvalidProbability)
		}
		naive *= leg.Probabilities.True
		combinedOdds *= leg.EntryDecimal
	}

	factor := e.CorrelationFactor(legs)
	adjusted := naive * factor

	metrics, err := e.calc.ParlayMetrics(adjusted, combinedOdds)
	if err != nil {
		return nil, err
	}

	confidence := meanConfidence(legs)
	metrics.SmartScore = e.SmartScore(metrics.EVPercent, confidence.Score, legs)

	p := &models.Parlay{
		Legs: append([]models.Leg(nil), legs...),
		Combined: models.Combined{
			DecimalOdds: combinedOdds,
			Probability: models.CombinedProbability{
				Naive:             naive,
				Adjusted:          adjusted,
				CorrelationFactor: factor,
			},
			Metrics:    metrics,
			Confidence: confidence,
		},
		Verdict: VerdictFor(metrics.EVPercent),
		CLV:     clv.Aggregate(legs),
	}
	p.Combined.QualityGates = e.qualityGates(p)
	return p, nil
}

// CorrelationFactor discounts legs that share a game. Each game holding k
// legs multiplies the factor by SameGamePenalty^(k-1); within that game each
// market holding m legs multiplies it again by SameMarketPenalty^(m-1). The
// result never drops below Floor. Legs on different games leave it at 1.
func (e *Engine) CorrelationFactor(legs []models.Leg) float64 {
	c := e.cfg.Correlation

	perGame := make(map[string]int)
	perMarket := make(map[string]int)
	for _, leg := range legs {
		game := strings.ToLower(leg.GameKey)
		perGame[game]++
		perMarket[game+"|"+string(leg.MarketType)]++
	}

	factor := 1.0
	for _, k := range perGame {
		if k > 1 {
			factor *= math.Pow(c.SameGamePenalty, float64(k-1))
		}
	}
	for _, m := range perMarket {
		if m > 1 {
			factor *= math.Pow(c.SameMarketPenalty, float64(m-1))
		}
	}

	return math.Max(factor, c.Floor)
}

// SmartScore blends EV, confidence and movement favorability into 0-100.
// The EV component maps EV% linearly so that 0% scores 50 and
// ±EVScalePercent scores 100 or 0. Movement favorability is 50 for a leg
// without a signal and moves toward 100 or 0 with LineMoveSignal in the
// direction of the drift.
func (e *Engine) SmartScore(evPercent, confidence float64, legs []models.Leg) float64 {
	s := e.cfg.SmartScore

	evComponent := clamp(50+50*evPercent/s.EVScalePercent, 0, 100)

	movement := 50.0
	if len(legs) > 0 {
		total := 0.0
		for _, leg := range legs {
			total += MovementFavorability(leg.Movement)
		}
		movement = total / float64(len(legs))
	}

	score := s.EVWeight*evComponent + s.ConfidenceWeight*clamp(confidence, 0, 100) + s.MovementWeight*movement
	return clamp(score, 0, 100)
}

// MovementFavorability scores a leg's line movement on 0-100
func MovementFavorability(signal *models.MovementSignal) float64 {
	if signal == nil {
		return 50
	}
	direction := 0.0
	switch {
	case signal.DriftOpen > 0:
		direction = 1
	case signal.DriftOpen < 0:
		direction = -1
	}
	return clamp(50+50*direction*signal.Normalized.LineMoveSignal, 0, 100)
}

// VerdictFor classifies a parlay EV in percent. The first matching band wins.
func VerdictFor(evPercent float64) models.Verdict {
	switch {
	case evPercent < -5:
		return models.VerdictStrongAvoid
	case evPercent < 0:
		return models.VerdictNegativeEV
	case evPercent < 1:
		return models.VerdictMarginal
	case evPercent < 2:
		return models.VerdictPlayable
	case evPercent < 5:
		return models.VerdictGoodValue
	default:
		return models.VerdictExcellentValue
	}
}

func (e *Engine) qualityGates(p *models.Parlay) []models.QualityGate {
	t := e.cfg.Thresholds
	c := e.cfg.Correlation

	failing := 0
	for _, leg := range p.Legs {
		if !leg.Metrics.PassesFilters {
			failing++
		}
	}

	return []models.QualityGate{
		{
			Name:   GateParlayEV,
			Passed: p.Combined.Metrics.EVPercent >= t.MinParlayEVPercent,
			Detail: fmt.Sprintf("EV %.2f%%, minimum %.2f%%", p.Combined.Metrics.EVPercent, t.MinParlayEVPercent),
		},
		{
			Name:   GateLegFilters,
			Passed: failing == 0,
			Detail: fmt.Sprintf("%d of %d legs fail their filters", failing, len(p.Legs)),
		},
		{
			Name:   GateCorrelation,
			Passed: p.Combined.Probability.CorrelationFactor >= c.WarningThreshold,
			Detail: fmt.Sprintf("correlation factor %.3f, warning below %.2f", p.Combined.Probability.CorrelationFactor, c.WarningThreshold),
		},
		{
			Name:   GateConfidence,
			Passed: p.Combined.Confidence.Score >= t.MinConfidence,
			Detail: fmt.Sprintf("mean confidence %.0f, minimum %.0f", p.Combined.Confidence.Score, t.MinConfidence),
		},
	}
}

func meanConfidence(legs []models.Leg) models.Confidence {
	total := 0.0
	allSharp := true
	for _, leg := range legs {
		total += leg.Confidence.Score
		allSharp = allSharp && leg.Confidence.SharpAvailable
	}
	return models.Confidence{Score: total / float64(len(legs)), SharpAvailable: allSharp}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
