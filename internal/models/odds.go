package models

import (
	"time"
)

// OddsFormat identifies how a sportsbook price is written
type OddsFormat string

const (
	OddsFormatAmerican   OddsFormat = "american"
	OddsFormatDecimal    OddsFormat = "decimal"
	OddsFormatFractional OddsFormat = "fractional"
)

// MarketType identifies the wager market
type MarketType string

const (
	MarketMoneyline MarketType = "moneyline"
	MarketSpread    MarketType = "spread"
	MarketTotal     MarketType = "total"
)

// IsMoneyline reports whether the market is a head-to-head market
func (m MarketType) IsMoneyline() bool {
	return m == MarketMoneyline
}

// OddsQuote is a single observed price from one sportsbook at one point in time.
// Quotes are immutable once recorded.
type OddsQuote struct {
	GameKey     string     `db:"game_key" json:"game_key"`
	Sportsbook  string     `db:"sportsbook" json:"sportsbook"`
	MarketType  MarketType `db:"market_type" json:"market_type"`
	Selection   string     `db:"selection" json:"selection"`
	Price       string     `db:"price" json:"price"`
	Format      OddsFormat `db:"format" json:"format"`
	DecimalOdds float64    `db:"decimal_odds" json:"decimal_odds"`
	Point       *float64   `db:"point" json:"point,omitempty"`
	ObservedAt  time.Time  `db:"observed_at" json:"observed_at"`
}

// MatchesPoint reports whether the quote is for the given line.
// Two nil points match; a nil and a non-nil point do not.
func (q *OddsQuote) MatchesPoint(point *float64) bool {
	if q.Point == nil || point == nil {
		return q.Point == nil && point == nil
	}
	return *q.Point == *point
}

// BestPrice is the longest available price for a selection across books
type BestPrice struct {
	Sportsbook  string    `json:"sportsbook"`
	DecimalOdds float64   `json:"decimal_odds"`
	ObservedAt  time.Time `json:"observed_at"`
}

// CounterpartPoint returns the line the opposing side of a market is quoted
// at: the negated handicap for spreads, the same number for totals and no
// point for moneylines.
func CounterpartPoint(market MarketType, point *float64) *float64 {
	if point == nil || market.IsMoneyline() {
		return nil
	}
	counter := *point
	if market == MarketSpread {
		counter = -counter
	}
	return &counter
}
