package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/smartslip/internal/analysis"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestOddsConvertCommand(t *testing.T) {
	out, err := execute(t, "", "odds", "convert", "+150")
	require.NoError(t, err)
	assert.Contains(t, out, "Decimal:     2.5000")
	assert.Contains(t, out, "American:    +150")
	assert.Contains(t, out, "Implied:     40.00%")

	_, err = execute(t, "", "odds", "convert", "--format", "fractional", "3")
	assert.Error(t, err)
}

func TestAnalyzeOfflineParlay(t *testing.T) {
	dir := t.TempDir()
	slipPath := filepath.Join(dir, "slip.json")
	slip := `{"legs":[
		{"game_key":"g1","sport":"nba","market_type":"moneyline","selection":"Celtics","price":"1.91","sportsbook":"draftkings"},
		{"game_key":"g2","sport":"nba","market_type":"moneyline","selection":"Lakers","price":"1.95","sportsbook":"fanduel"}
	]}`
	require.NoError(t, os.WriteFile(slipPath, []byte(slip), 0o600))

	out, err := execute(t, "", "analyze", "--offline", "--config", filepath.Join(dir, "missing.yaml"), slipPath)
	require.NoError(t, err)

	var result analysis.SlipResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Parlay)
	assert.InDelta(t, 3.7245, result.Parlay.Combined.DecimalOdds, 1e-9)
}

func TestAnalyzeOfflineSinglesFromStdin(t *testing.T) {
	slip := `{"legs":[{"game_key":"g1","sport":"nba","market_type":"moneyline","selection":"Celtics","price":"-110","sportsbook":"draftkings"}]}`

	out, err := execute(t, slip, "analyze", "--offline", "--singles", "--config", "does-not-exist.yaml", "-")
	require.NoError(t, err)

	var results []analysis.LegResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Leg)
	assert.InDelta(t, 0.523810, results[0].Leg.Probabilities.True, 1e-6)
}

func TestReadSlipRejectsEmpty(t *testing.T) {
	_, err := readSlip("-", strings.NewReader(`{"legs":[]}`))
	assert.Error(t, err)
}
