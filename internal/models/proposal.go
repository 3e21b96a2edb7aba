package models

import (
	"time"

	"github.com/google/uuid"
)

// LegProposal is the record the tracking subsystem persists for later CLV
// grading. Every field maps directly from a scored Leg.
type LegProposal struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	GameKey              string     `db:"game_key" json:"game_key"`
	Sport                string     `db:"sport" json:"sport"`
	MarketType           MarketType `db:"market_type" json:"market_type"`
	Selection            string     `db:"selection" json:"selection"`
	Sportsbook           string     `db:"sportsbook" json:"sportsbook"`
	OpeningOdds          float64    `db:"opening_odds" json:"opening_odds"`
	SuggestedProbability float64    `db:"suggested_probability" json:"suggested_probability"`
	EVAtSuggestion       float64    `db:"ev_at_suggestion" json:"ev_at_suggestion"`
	KellySizeSuggested   float64    `db:"kelly_size_suggested" json:"kelly_size_suggested"`
	ModelVersion         string     `db:"model_version" json:"model_version"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// NewLegProposal shapes a scored leg for the tracking write path
func NewLegProposal(leg Leg, modelVersion string, now time.Time) LegProposal {
	return LegProposal{
		ID:                   leg.ID,
		GameKey:              leg.GameKey,
		Sport:                leg.Sport,
		MarketType:           leg.MarketType,
		Selection:            leg.Selection,
		Sportsbook:           leg.Sportsbook,
		OpeningOdds:          leg.EntryDecimal,
		SuggestedProbability: leg.Probabilities.True,
		EVAtSuggestion:       leg.Metrics.EV,
		KellySizeSuggested:   leg.Metrics.KellyFractional,
		ModelVersion:         modelVersion,
		CreatedAt:            now,
	}
}
