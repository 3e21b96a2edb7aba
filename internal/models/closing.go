package models

import (
	"time"
)

// ClosingOddsRecord is the final pre-start price of a market. Written once
// when the market closes and read-only afterwards.
type ClosingOddsRecord struct {
	GameKey           string     `db:"game_key" json:"game_key"`
	MarketType        MarketType `db:"market_type" json:"market_type"`
	Sportsbook        string     `db:"sportsbook" json:"sportsbook"`
	Outcome           string     `db:"outcome" json:"outcome"`
	ClosingPrice      float64    `db:"closing_price" json:"closing_price"`
	ClosingObservedAt time.Time  `db:"closing_observed_at" json:"closing_observed_at"`
}

// ClosingPrice is the resolved closing line for a selection
type ClosingPrice struct {
	Price      string    `json:"price"`
	Decimal    float64   `json:"decimal"`
	Sportsbook string    `json:"sportsbook"`
	ObservedAt time.Time `json:"observed_at"`
	FromQuote  bool      `json:"from_quote"`
}

// ClosingStatus describes whether a closing price could be resolved
type ClosingStatus string

const (
	ClosingAvailable ClosingStatus = "available"
	ClosingUnknown   ClosingStatus = "unknown"
	ClosingError     ClosingStatus = "error"
)

// LegCLV is the closing-line-value assessment of a single leg
type LegCLV struct {
	Status         ClosingStatus `json:"closing_status"`
	ClosingDecimal *float64      `json:"closing_decimal"`
	CLVPercent     *float64      `json:"clv_percent"`
}

// CLVSummary aggregates CLV over a slip. Every pointer is nil when no leg
// has closing data.
type CLVSummary struct {
	MeanCLV           *float64 `json:"clv_mean"`
	WorstCLV          *float64 `json:"clv_worst"`
	BeatMarketCount   *int     `json:"beat_market_count"`
	LaggedMarketCount *int     `json:"lagged_market_count"`
	LegsWithCLV       int      `json:"legs_with_clv"`
}
