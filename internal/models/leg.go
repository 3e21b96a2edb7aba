package models

import (
	"time"

	"github.com/google/uuid"
)

// LegRequest is a proposed wager candidate before any pipeline stage runs
type LegRequest struct {
	ID           uuid.UUID  `json:"id"`
	GameKey      string     `json:"game_key" validate:"required"`
	Sport        string     `json:"sport" validate:"required"`
	MarketType   MarketType `json:"market_type" validate:"required,oneof=moneyline spread total"`
	Selection    string     `json:"selection" validate:"required"`
	Point        *float64   `json:"point,omitempty"`
	Price        string     `json:"price" validate:"required"`
	Format       OddsFormat `json:"format,omitempty" validate:"omitempty,oneof=american decimal fractional"`
	Sportsbook   string     `json:"sportsbook" validate:"required"`
	HomeTeam     string     `json:"home_team,omitempty"`
	AwayTeam     string     `json:"away_team,omitempty"`
	CommenceTime time.Time  `json:"commence_time"`
}

// Probabilities holds every estimator the blender saw plus the blended result.
// A nil estimator means the data was unavailable, which is distinct from zero.
type Probabilities struct {
	Implied   float64  `json:"implied"`
	Sharp     *float64 `json:"sharp"`
	Consensus *float64 `json:"consensus"`
	Prior     *float64 `json:"prior"`
	True      float64  `json:"true"`
}

// LegMetrics holds the EV/Kelly figures derived from the blended probability
type LegMetrics struct {
	EV              float64 `json:"ev"`
	EVPercent       float64 `json:"ev_percent"`
	KellyFull       float64 `json:"kelly_full"`
	KellyFractional float64 `json:"kelly_fractional"`
	PassesFilters   bool    `json:"passes_filters"`
}

// Confidence describes how many independent estimators backed a probability
type Confidence struct {
	Score          float64 `json:"score"`
	SharpAvailable bool    `json:"sharp_available"`
}

// Leg is a fully scored wager candidate. Stages build new Leg values rather
// than mutating a shared one, and nothing mutates a Leg after scoring.
type Leg struct {
	ID            uuid.UUID       `json:"id"`
	GameKey       string          `json:"game_key"`
	Sport         string          `json:"sport"`
	MarketType    MarketType      `json:"market_type"`
	Selection     string          `json:"selection"`
	Point         *float64        `json:"point,omitempty"`
	EntryPrice    string          `json:"entry_price"`
	EntryFormat   OddsFormat      `json:"entry_format"`
	EntryDecimal  float64         `json:"entry_decimal"`
	Sportsbook    string          `json:"sportsbook"`
	CommenceTime  time.Time       `json:"commence_time"`
	Probabilities Probabilities   `json:"probabilities"`
	Metrics       LegMetrics      `json:"metrics"`
	Confidence    Confidence      `json:"confidence"`
	Prior         *HistoricalStat `json:"prior,omitempty"`
	BestPrice     *BestPrice      `json:"best_price,omitempty"`
	Movement      *MovementSignal `json:"movement,omitempty"`
	CLV           LegCLV          `json:"clv"`
	Issues        []string        `json:"issues"`
}

// WithIssue returns a copy of the leg with an extra issue appended
func (l Leg) WithIssue(issue string) Leg {
	issues := make([]string, 0, len(l.Issues)+1)
	issues = append(issues, l.Issues...)
	l.Issues = append(issues, issue)
	return l
}

// LineShoppingDelta returns how much longer the best available price is than
// the entry price, in decimal odds. Zero when no better price exists.
func (l Leg) LineShoppingDelta() float64 {
	if l.BestPrice == nil || l.BestPrice.DecimalOdds <= l.EntryDecimal {
		return 0
	}
	return l.BestPrice.DecimalOdds - l.EntryDecimal
}
