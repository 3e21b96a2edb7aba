package models

import (
	"time"
)

// ConfidenceTier grades a historical hit-rate by sample size
type ConfidenceTier string

const (
	TierHigh    ConfidenceTier = "high"
	TierMedium  ConfidenceTier = "medium"
	TierLow     ConfidenceTier = "low"
	TierVeryLow ConfidenceTier = "very_low"
)

// TierForSample maps a decisive sample size onto a confidence tier
func TierForSample(sampleSize int) ConfidenceTier {
	switch {
	case sampleSize >= 100:
		return TierHigh
	case sampleSize >= 30:
		return TierMedium
	case sampleSize >= 10:
		return TierLow
	default:
		return TierVeryLow
	}
}

// ResultOutcome is the graded result of a tracked selection
type ResultOutcome string

const (
	ResultWin  ResultOutcome = "win"
	ResultLoss ResultOutcome = "loss"
	ResultPush ResultOutcome = "push"
	ResultVoid ResultOutcome = "void"
)

// IsDecisive reports whether the outcome counts toward a hit-rate
func (r ResultOutcome) IsDecisive() bool {
	return r == ResultWin || r == ResultLoss
}

// ResultRow is one graded selection from the result log
type ResultRow struct {
	Result       ResultOutcome `db:"result" json:"result"`
	MarketType   MarketType    `db:"market_type" json:"market_type"`
	Selection    string        `db:"selection" json:"selection"`
	Sport        string        `db:"sport" json:"sport"`
	HomeTeam     string        `db:"home_team" json:"home_team"`
	AwayTeam     string        `db:"away_team" json:"away_team"`
	CommenceTime time.Time     `db:"commence_time" json:"commence_time"`
}

// HistoricalStat is an empirical hit-rate snapshot for one query tuple
type HistoricalStat struct {
	Sport          string         `json:"sport"`
	MarketType     MarketType     `json:"market_type"`
	SelectionKey   string         `json:"selection_key"`
	LookbackDays   int            `json:"lookback_days"`
	HitRate        float64        `json:"hit_rate"`
	SampleSize     int            `json:"sample_size"`
	ConfidenceTier ConfidenceTier `json:"confidence_tier"`
	ComputedAt     time.Time      `json:"computed_at"`
}
