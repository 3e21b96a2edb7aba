package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/smartslip/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := newLogger(&bytes.Buffer{}, "chatty", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	log := newLogger(&bytes.Buffer{}, "debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestAnalysisLoggerLegScored(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	leg := models.Leg{
		ID:           uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		GameKey:      "nba_2026_10_21_bos_nyk",
		MarketType:   models.MarketMoneyline,
		Selection:    "Boston Celtics",
		EntryDecimal: 1.91,
		Metrics:      models.LegMetrics{EVPercent: 2.4, PassesFilters: true},
		Confidence:   models.Confidence{Score: 75, SharpAvailable: true},
	}
	analysisLogger.LogLegScored(leg)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "analysis", logEntry["component"])
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", logEntry["leg_id"])
	assert.Equal(t, true, logEntry["passes_filters"])
}

func TestAnalysisLoggerLookupFailure(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogLookupFailure("query_quotes", "leg-1", errors.New("connection reset"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "lookup_failure", logEntry["event"])
	assert.Equal(t, "query_quotes", logEntry["operation"])
	assert.Equal(t, "connection reset", logEntry["error"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestAnalysisLoggerParlayVerdict(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	parlay := &models.Parlay{
		Legs:    make([]models.Leg, 2),
		Verdict: models.VerdictGoodValue,
	}
	analysisLogger.LogParlayVerdict(parlay, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "GOOD VALUE", logEntry["verdict"])
	assert.Equal(t, float64(2), logEntry["legs"])
}

func TestNewAnalysisLoggerNilBase(t *testing.T) {
	analysisLogger := NewAnalysisLogger(nil)
	require.NotNil(t, analysisLogger)
	analysisLogger.LogInvalidLeg("leg-1", errors.New("bad price"))
}
