// Package logger provides analysis-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/smartslip/internal/models"
)

// AnalysisLogger provides dedicated logging for the scoring pipeline.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	if baseLogger == nil {
		baseLogger = Discard()
	}
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogLegScored logs the outcome of scoring a single leg.
func (al *AnalysisLogger) LogLegScored(leg models.Leg) {
	al.WithFields(logrus.Fields{
		"leg_id":           leg.ID.String(),
		"game_key":         leg.GameKey,
		"market_type":      leg.MarketType,
		"selection":        leg.Selection,
		"entry_decimal":    leg.EntryDecimal,
		"true_probability": leg.Probabilities.True,
		"ev_percent":       leg.Metrics.EVPercent,
		"kelly_fractional": leg.Metrics.KellyFractional,
		"passes_filters":   leg.Metrics.PassesFilters,
		"confidence":       leg.Confidence.Score,
		"sharp_available":  leg.Confidence.SharpAvailable,
		"issues":           len(leg.Issues),
	}).Info("Leg scored")
}

// LogLookupFailure logs a degraded data-provider lookup.
func (al *AnalysisLogger) LogLookupFailure(op, legID string, err error) {
	al.WithFields(logrus.Fields{
		"operation": op,
		"leg_id":    legID,
		"event":     "lookup_failure",
	}).WithError(err).Warn("Data provider lookup failed, continuing without it")
}

// LogInvalidLeg logs a leg rejected for a structurally invalid price.
func (al *AnalysisLogger) LogInvalidLeg(legID string, err error) {
	al.WithFields(logrus.Fields{
		"leg_id": legID,
		"event":  "invalid_leg",
	}).WithError(err).Warn("Leg rejected")
}

// LogParlayVerdict logs the combined verdict of a slip.
func (al *AnalysisLogger) LogParlayVerdict(parlay *models.Parlay, durationMs float64) {
	al.WithFields(logrus.Fields{
		"legs":               len(parlay.Legs),
		"combined_odds":      parlay.Combined.DecimalOdds,
		"adjusted_prob":      parlay.Combined.Probability.Adjusted,
		"correlation_factor": parlay.Combined.Probability.CorrelationFactor,
		"ev_percent":         parlay.Combined.Metrics.EVPercent,
		"smart_score":        parlay.Combined.Metrics.SmartScore,
		"verdict":            parlay.Verdict,
		"duration_ms":        durationMs,
	}).Info("Parlay analyzed")
}

// LogCacheEvent logs prior-cache maintenance.
func (al *AnalysisLogger) LogCacheEvent(event string, fields logrus.Fields) {
	al.WithField("event", event).WithFields(fields).Info("Prior cache maintenance")
}
