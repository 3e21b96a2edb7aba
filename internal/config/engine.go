package config

import (
	"time"

	"github.com/yourusername/smartslip/internal/models"
)

// EngineConfig is the full blending and classification policy. It is read
// once at process start and handed to each component at construction.
type EngineConfig struct {
	SharpBook    string            `mapstructure:"sharp_book" validate:"required"`
	ModelVersion string            `mapstructure:"model_version" validate:"required"`
	Blend        BlendConfig       `mapstructure:"blend" validate:"required"`
	Thresholds   ThresholdConfig   `mapstructure:"thresholds" validate:"required"`
	Movement     MovementConfig    `mapstructure:"movement" validate:"required"`
	Correlation  CorrelationConfig `mapstructure:"correlation" validate:"required"`
	SmartScore   SmartScoreConfig  `mapstructure:"smart_score" validate:"required"`
	History      HistoryConfig     `mapstructure:"history" validate:"required"`
}

// BlendConfig weights each probability estimator
type BlendConfig struct {
	SharpWeight        float64         `mapstructure:"sharp_weight" validate:"gte=0"`
	ConsensusWeight    float64         `mapstructure:"consensus_weight" validate:"gte=0"`
	PriorWeight        float64         `mapstructure:"prior_weight" validate:"gte=0"`
	ConsensusFullBooks int             `mapstructure:"consensus_full_books" validate:"required,gt=0"`
	TierMultipliers    TierMultipliers `mapstructure:"tier_multipliers"`
	Score              ScoreConfig     `mapstructure:"score"`
}

// TierMultipliers scale the prior weight by its confidence tier
type TierMultipliers struct {
	High    float64 `mapstructure:"high" validate:"gte=0,lte=1"`
	Medium  float64 `mapstructure:"medium" validate:"gte=0,lte=1"`
	Low     float64 `mapstructure:"low" validate:"gte=0,lte=1"`
	VeryLow float64 `mapstructure:"very_low" validate:"gte=0,lte=1"`
}

// For returns the multiplier of a tier
func (t TierMultipliers) For(tier models.ConfidenceTier) float64 {
	switch tier {
	case models.TierHigh:
		return t.High
	case models.TierMedium:
		return t.Medium
	case models.TierLow:
		return t.Low
	default:
		return t.VeryLow
	}
}

// ScoreConfig assigns confidence points to each available estimator
type ScoreConfig struct {
	Sharp       float64 `mapstructure:"sharp" validate:"gt=0"`
	Consensus   float64 `mapstructure:"consensus" validate:"gt=0"`
	Prior       float64 `mapstructure:"prior" validate:"gt=0"`
	ImpliedOnly float64 `mapstructure:"implied_only" validate:"gte=0"`
}

// ThresholdConfig holds the quality-gate cutoffs
type ThresholdConfig struct {
	MinSingleEVPercent    float64 `mapstructure:"min_single_ev_percent"`
	MinParlayLegEVPercent float64 `mapstructure:"min_parlay_leg_ev_percent"`
	MinParlayEVPercent    float64 `mapstructure:"min_parlay_ev_percent"`
	MinProbability        float64 `mapstructure:"min_probability" validate:"gt=0,lt=1"`
	MaxProbability        float64 `mapstructure:"max_probability" validate:"gt=0,lt=1"`
	MinConfidence         float64 `mapstructure:"min_confidence" validate:"gte=0,lte=100"`
	KellyFraction         float64 `mapstructure:"kelly_fraction" validate:"gt=0,lte=1"`
}

// MarketBounds are the empirical normalization bounds of one market family
type MarketBounds struct {
	Drift            float64 `mapstructure:"drift" validate:"gt=0"`
	Velocity         float64 `mapstructure:"velocity" validate:"gt=0"`
	FavoritePressure float64 `mapstructure:"favorite_pressure" validate:"gt=0"`
}

// MovementConfig configures the line movement engine
type MovementConfig struct {
	Moneyline             MarketBounds `mapstructure:"moneyline"`
	SpreadTotal           MarketBounds `mapstructure:"spread_total"`
	AnchorMinutes         int          `mapstructure:"anchor_minutes" validate:"required,gt=0"`
	VelocityWindowMinutes int          `mapstructure:"velocity_window_minutes" validate:"required,gt=0"`
}

// BoundsFor returns the bounds used for a market
func (m MovementConfig) BoundsFor(market models.MarketType) MarketBounds {
	if market.IsMoneyline() {
		return m.Moneyline
	}
	return m.SpreadTotal
}

// CorrelationConfig drives the same-game correlation discount
type CorrelationConfig struct {
	SameGamePenalty   float64 `mapstructure:"same_game_penalty" validate:"gt=0,lte=1"`
	SameMarketPenalty float64 `mapstructure:"same_market_penalty" validate:"gt=0,lte=1"`
	Floor             float64 `mapstructure:"floor" validate:"gt=0,lte=1"`
	WarningThreshold  float64 `mapstructure:"warning_threshold" validate:"gt=0,lte=1"`
}

// SmartScoreConfig weights the composite parlay score
type SmartScoreConfig struct {
	EVWeight         float64 `mapstructure:"ev_weight" validate:"gte=0"`
	ConfidenceWeight float64 `mapstructure:"confidence_weight" validate:"gte=0"`
	MovementWeight   float64 `mapstructure:"movement_weight" validate:"gte=0"`
	EVScalePercent   float64 `mapstructure:"ev_scale_percent" validate:"gt=0"`
}

// HistoryConfig configures the historical prior service
type HistoryConfig struct {
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	LookbackDays    int    `mapstructure:"lookback_days" validate:"required,gt=0"`
	CacheBackend    string `mapstructure:"cache_backend" validate:"required,cachebackend"`
	CacheMaxEntries int    `mapstructure:"cache_max_entries" validate:"required,gt=0"`
}

// CacheTTL returns the prior cache time-to-live
func (h HistoryConfig) CacheTTL() time.Duration {
	return time.Duration(h.CacheTTLSeconds) * time.Second
}

// DefaultEngineConfig returns the product defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SharpBook:    "pinnacle",
		ModelVersion: "blend-v1",
		Blend: BlendConfig{
			SharpWeight:        0.6,
			ConsensusWeight:    0.3,
			PriorWeight:        0.1,
			ConsensusFullBooks: 3,
			TierMultipliers: TierMultipliers{
				High:    1.0,
				Medium:  0.6,
				Low:     0.3,
				VeryLow: 0.0,
			},
			Score: ScoreConfig{
				Sharp:       45,
				Consensus:   30,
				Prior:       25,
				ImpliedOnly: 10,
			},
		},
		Thresholds: ThresholdConfig{
			MinSingleEVPercent:    3.5,
			MinParlayLegEVPercent: 1.5,
			MinParlayEVPercent:    2.0,
			MinProbability:        0.25,
			MaxProbability:        0.65,
			MinConfidence:         40,
			KellyFraction:         0.25,
		},
		Movement: MovementConfig{
			Moneyline: MarketBounds{
				Drift:            0.05,
				Velocity:         0.02,
				FavoritePressure: 0.10,
			},
			SpreadTotal: MarketBounds{
				Drift:            0.03,
				Velocity:         0.015,
				FavoritePressure: 0.06,
			},
			AnchorMinutes:         60,
			VelocityWindowMinutes: 120,
		},
		Correlation: CorrelationConfig{
			SameGamePenalty:   0.90,
			SameMarketPenalty: 0.95,
			Floor:             0.50,
			WarningThreshold:  0.85,
		},
		SmartScore: SmartScoreConfig{
			EVWeight:         0.5,
			ConfidenceWeight: 0.3,
			MovementWeight:   0.2,
			EVScalePercent:   10,
		},
		History: HistoryConfig{
			CacheTTLSeconds: 3600,
			LookbackDays:    90,
			CacheBackend:    "memory",
			CacheMaxEntries: 10000,
		},
	}
}
