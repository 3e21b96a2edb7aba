package parlay

import (
	"fmt"
	"strings"

	"github.com/yourusername/smartslip/internal/models"
)

// Recommendations derives suggestions from a parlay. Nothing is stored; the
// same parlay always yields the same list, in leg order, with the
// correlation warning last.
func (e *Engine) Recommendations(p *models.Parlay) []models.Recommendation {
	if p == nil {
		return nil
	}

	var recs []models.Recommendation
	for _, leg := range p.Legs {
		id := leg.ID.String()

		if !leg.Metrics.PassesFilters || leg.Metrics.EVPercent < 0 {
			msg := fmt.Sprintf("%s is a weak leg (EV %.2f%%)", leg.Selection, leg.Metrics.EVPercent)
			if len(leg.Issues) > 0 {
				msg += ": " + strings.Join(leg.Issues, "; ")
			}
			recs = append(recs, models.Recommendation{
				Kind:    models.RecommendationWeakLeg,
				LegID:   id,
				Message: msg,
			})
		}

		if delta := leg.LineShoppingDelta(); delta > 0 {
			recs = append(recs, models.Recommendation{
				Kind:  models.RecommendationLineShopping,
				LegID: id,
				Message: fmt.Sprintf("%s is available at %.3f on %s versus %.3f on %s",
					leg.Selection, leg.BestPrice.DecimalOdds, leg.BestPrice.Sportsbook, leg.EntryDecimal, leg.Sportsbook),
				Delta: delta,
			})
		}

		if leg.Movement != nil {
			switch leg.Movement.Recommendation {
			case models.RecommendReplace:
				recs = append(recs, models.Recommendation{
					Kind:    models.RecommendationMovement,
					LegID:   id,
					Message: fmt.Sprintf("Replace %s: sharp money is moving the other way", leg.Selection),
				})
			case models.RecommendHedge:
				recs = append(recs, models.Recommendation{
					Kind:    models.RecommendationMovement,
					LegID:   id,
					Message: fmt.Sprintf("Consider hedging %s: the line moved %.1f points against it in the last hour", leg.Selection, -leg.Movement.Drift60*100),
				})
			}
		}
	}

	factor := p.Combined.Probability.CorrelationFactor
	if factor < e.cfg.Correlation.WarningThreshold {
		recs = append(recs, models.Recommendation{
			Kind:    models.RecommendationCorrelation,
			Message: fmt.Sprintf("Legs share games or markets; joint probability discounted by %.1f%%", (1-factor)*100),
			Delta:   factor,
		})
	}
	return recs
}
