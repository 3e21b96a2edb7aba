package models

// Verdict classifies a parlay by expected value
type Verdict string

const (
	VerdictStrongAvoid    Verdict = "STRONG AVOID"
	VerdictNegativeEV     Verdict = "NEGATIVE EV"
	VerdictMarginal       Verdict = "MARGINAL"
	VerdictPlayable       Verdict = "PLAYABLE"
	VerdictGoodValue      Verdict = "GOOD VALUE"
	VerdictExcellentValue Verdict = "EXCELLENT VALUE"
)

// CombinedProbability is the joint win probability of a slip
type CombinedProbability struct {
	Naive             float64 `json:"naive"`
	Adjusted          float64 `json:"adjusted"`
	CorrelationFactor float64 `json:"correlation_factor"`
}

// ParlayMetrics are EV/Kelly figures for the whole slip
type ParlayMetrics struct {
	EV              float64 `json:"ev"`
	EVPercent       float64 `json:"ev_percent"`
	KellyFull       float64 `json:"kelly_full"`
	KellyFractional float64 `json:"kelly_fractional"`
	SmartScore      float64 `json:"smart_score"`
}

// QualityGate is one pass/fail check applied to a slip
type QualityGate struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Combined holds every slip-level figure
type Combined struct {
	DecimalOdds  float64             `json:"odds"`
	Probability  CombinedProbability `json:"probability"`
	Metrics      ParlayMetrics       `json:"metrics"`
	QualityGates []QualityGate       `json:"quality_gates"`
	Confidence   Confidence          `json:"confidence"`
}

// Parlay is an ordered set of scored legs plus the combined verdict.
// Leg order matters only for display.
type Parlay struct {
	Legs     []Leg      `json:"legs"`
	Combined Combined   `json:"combined"`
	Verdict  Verdict    `json:"verdict"`
	CLV      CLVSummary `json:"clv"`
}

// RecommendationKind groups parlay recommendations
type RecommendationKind string

const (
	RecommendationWeakLeg      RecommendationKind = "weak_leg"
	RecommendationLineShopping RecommendationKind = "line_shopping"
	RecommendationCorrelation  RecommendationKind = "correlation_warning"
	RecommendationMovement     RecommendationKind = "line_movement"
)

// Recommendation is a derived, human-readable suggestion about a slip
type Recommendation struct {
	Kind    RecommendationKind `json:"kind"`
	LegID   string             `json:"leg_id,omitempty"`
	Message string             `json:"message"`
	Delta   float64            `json:"delta,omitempty"`
}
