package models

// MovementRecommendation is the hold/replace/hedge verdict for a leg
type MovementRecommendation string

const (
	RecommendReplace    MovementRecommendation = "replace"
	RecommendHedge      MovementRecommendation = "hedge"
	RecommendStrongHold MovementRecommendation = "strong_hold"
	RecommendHold       MovementRecommendation = "hold"
)

// NormalizedSignals are raw movement figures scaled to [0,1]
type NormalizedSignals struct {
	LMSignal       float64 `json:"lm_signal"`
	VelSignal      float64 `json:"vel_signal"`
	FPSignal       float64 `json:"fp_signal"`
	LineMoveSignal float64 `json:"line_move_signal"`
}

// MovementSignal is derived on demand from the sharp book's quote series and
// never persisted.
type MovementSignal struct {
	GameKey          string                 `json:"game_key"`
	MarketType       MarketType             `json:"market"`
	SharpBook        string                 `json:"sharp_book"`
	Outcome          string                 `json:"outcome"`
	OpenProbability  float64                `json:"p_open"`
	T60Probability   float64                `json:"p_60"`
	CloseProbability float64                `json:"p_close"`
	DriftOpen        float64                `json:"drift_open"`
	Drift60          float64                `json:"drift_60"`
	Velocity120      float64                `json:"velocity_120"`
	FavoritePressure float64                `json:"favorite_pressure"`
	Normalized       NormalizedSignals      `json:"normalized"`
	Recommendation   MovementRecommendation `json:"recommendation"`
}
