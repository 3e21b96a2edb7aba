// Package movement derives drift, velocity and favorite-pressure signals
// from the sharp book's price history and classifies them into a
// hold/replace/hedge recommendation.
package movement

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/models"
)

// Recommendation cutoffs. EV figures are in percent.
const (
	replaceFPSignal     = 0.7
	replaceMaxEVPercent = 1.0
	hedgeDrift60        = -0.02
	hedgeMaxEVPercent   = 0.0
	holdLMSignal        = 0.6
	holdMinEVPercent    = 2.0
)

// Query identifies the selection a signal is wanted for
type Query struct {
	GameKey      string
	MarketType   models.MarketType
	Selection    string
	Point        *float64
	CommenceTime time.Time
}

type point struct {
	at time.Time
	p  float64
}

// Engine computes movement signals against one sharp reference book
type Engine struct {
	cfg       config.MovementConfig
	sharpBook string
}

// NewEngine creates a line movement engine
func NewEngine(cfg config.MovementConfig, sharpBook string) *Engine {
	return &Engine{cfg: cfg, sharpBook: strings.ToLower(sharpBook)}
}

// Compute derives the movement signal of a selection from a market's quote
// history. Only the sharp book's quotes are used. It returns
// ErrDataUnavailable when the sharp book never quoted the selection before
// the start. The recommendation is left empty; see Recommend.
func (e *Engine) Compute(quotes []models.OddsQuote, q Query) (*models.MovementSignal, error) {
	own, opponents := e.series(quotes, q)
	if len(own) == 0 {
		return nil, models.ErrDataUnavailable
	}

	pOpen, p60, pClose := e.anchors(own, q.CommenceTime)

	signal := &models.MovementSignal{
		GameKey:          q.GameKey,
		MarketType:       q.MarketType,
		SharpBook:        e.sharpBook,
		Outcome:          q.Selection,
		OpenProbability:  pOpen,
		T60Probability:   p60,
		CloseProbability: pClose,
		DriftOpen:        pClose - pOpen,
		Drift60:          pClose - p60,
		Velocity120:      e.velocity(own),
	}

	if q.MarketType.IsMoneyline() && len(opponents) == 1 {
		for _, opp := range opponents {
			if len(opp) == 0 {
				continue
			}
			oppOpen, _, oppClose := e.anchors(opp, q.CommenceTime)
			signal.FavoritePressure = FavoritePressure(pOpen, pClose, oppOpen, oppClose)
		}
	}

	bounds := e.cfg.BoundsFor(q.MarketType)
	lm := Normalize(signal.DriftOpen, bounds.Drift)
	vel := Normalize(signal.Velocity120, bounds.Velocity)
	signal.Normalized = models.NormalizedSignals{
		LMSignal:       lm,
		VelSignal:      vel,
		FPSignal:       Normalize(signal.FavoritePressure, bounds.FavoritePressure),
		LineMoveSignal: 0.5*lm + 0.5*vel,
	}
	return signal, nil
}

// series splits the sharp book's pre-start quotes into the selection's own
// probability series and one series per opposing selection, each sorted by
// time
func (e *Engine) series(quotes []models.OddsQuote, q Query) ([]point, map[string][]point) {
	selection := strings.ToLower(q.Selection)
	counter := models.CounterpartPoint(q.MarketType, q.Point)

	var own []point
	opponents := make(map[string][]point)
	for _, quote := range quotes {
		if strings.ToLower(quote.Sportsbook) != e.sharpBook {
			continue
		}
		if quote.MarketType != "" && quote.MarketType != q.MarketType {
			continue
		}
		if quote.DecimalOdds <= 1 {
			continue
		}
		if !q.CommenceTime.IsZero() && quote.ObservedAt.After(q.CommenceTime) {
			continue
		}

		sel := strings.ToLower(quote.Selection)
		pt := point{at: quote.ObservedAt, p: 1 / quote.DecimalOdds}
		if sel == selection {
			if q.Point == nil || quote.MatchesPoint(q.Point) {
				own = append(own, pt)
			}
			continue
		}
		if q.Point == nil || quote.MatchesPoint(counter) {
			opponents[sel] = append(opponents[sel], pt)
		}
	}

	sortPoints(own)
	for sel := range opponents {
		sortPoints(opponents[sel])
	}
	return own, opponents
}

func sortPoints(points []point) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].at.Before(points[j].at) })
}

// anchors returns the opening, t-60 and closing probabilities of a sorted
// series. Without a quote at or before t-60 the opening price stands in.
func (e *Engine) anchors(points []point, commence time.Time) (pOpen, p60, pClose float64) {
	pOpen = points[0].p
	pClose = points[len(points)-1].p
	p60 = pOpen

	if commence.IsZero() {
		return pOpen, p60, pClose
	}
	cutoff := commence.Add(-time.Duration(e.cfg.AnchorMinutes) * time.Minute)
	for _, pt := range points {
		if pt.at.After(cutoff) {
			break
		}
		p60 = pt.p
	}
	return pOpen, p60, pClose
}

// velocity is the probability change per hour across the trailing window
// ending at the last quote. The price in force at the window start is taken
// from the latest quote at or before it, if any.
func (e *Engine) velocity(points []point) float64 {
	if len(points) < 2 {
		return 0
	}
	end := points[len(points)-1]
	windowStart := end.at.Add(-time.Duration(e.cfg.VelocityWindowMinutes) * time.Minute)

	var start *point
	for i := range points {
		pt := points[i]
		if !pt.at.After(windowStart) {
			start = &point{at: windowStart, p: pt.p}
			continue
		}
		if start == nil {
			start = &pt
		}
		break
	}
	if start == nil {
		return 0
	}

	hours := end.at.Sub(start.at).Hours()
	if hours <= 0 {
		return 0
	}
	return (end.p - start.p) / hours
}

// FavoritePressure compares the drifts of the two sides of a 2-way market:
// the favorite's drift minus the underdog's, where the favorite is the side
// with the higher closing probability
func FavoritePressure(ownOpen, ownClose, oppOpen, oppClose float64) float64 {
	ownDrift := ownClose - ownOpen
	oppDrift := oppClose - oppOpen
	if ownClose >= oppClose {
		return ownDrift - oppDrift
	}
	return oppDrift - ownDrift
}

// Normalize scales a raw signal into [0,1] as min(|x|/bound, 1)
func Normalize(x, bound float64) float64 {
	if bound <= 0 {
		return 0
	}
	return math.Min(math.Abs(x)/bound, 1)
}

// Recommend classifies a signal given the leg's EV in percent. The first
// matching rule wins.
func Recommend(signal *models.MovementSignal, evPercent float64) models.MovementRecommendation {
	switch {
	case signal.Normalized.FPSignal > replaceFPSignal && signal.DriftOpen < 0 && evPercent < replaceMaxEVPercent:
		return models.RecommendReplace
	case signal.Drift60 < hedgeDrift60 && evPercent < hedgeMaxEVPercent:
		return models.RecommendHedge
	case signal.Normalized.LMSignal > holdLMSignal && evPercent > holdMinEVPercent:
		return models.RecommendStrongHold
	default:
		return models.RecommendHold
	}
}

// WithRecommendation returns a copy of the signal carrying its recommendation
func WithRecommendation(signal *models.MovementSignal, evPercent float64) *models.MovementSignal {
	if signal == nil {
		return nil
	}
	out := *signal
	out.Recommendation = Recommend(signal, evPercent)
	return &out
}
