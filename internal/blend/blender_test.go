package blend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/models"
)

func ptr(v float64) *float64 { return &v }

func newTestBlender() *Blender {
	return NewBlender(config.DefaultEngineConfig().Blend)
}

func TestBlendImpliedOnlyFallback(t *testing.T) {
	implied := 1.0 / (1.0 + 100.0/110.0)

	probs, conf, err := newTestBlender().Blend(Input{Implied: implied})
	require.NoError(t, err)

	assert.InDelta(t, 0.5238, probs.Implied, 1e-4)
	assert.InDelta(t, implied, probs.True, 1e-12)
	assert.Nil(t, probs.Sharp)
	assert.Nil(t, probs.Consensus)
	assert.Nil(t, probs.Prior)
	assert.False(t, conf.SharpAvailable)
	assert.Equal(t, 10.0, conf.Score)
}

func TestBlendSharpAnchors(t *testing.T) {
	probs, conf, err := newTestBlender().Blend(Input{
		Implied:        0.52,
		Sharp:          ptr(0.55),
		Consensus:      ptr(0.53),
		ConsensusBooks: 3,
	})
	require.NoError(t, err)

	assert.InDelta(t, (0.6*0.55+0.3*0.53)/0.9, probs.True, 1e-12)
	assert.True(t, conf.SharpAvailable)
	assert.Equal(t, 75.0, conf.Score)
}

func TestBlendConsensusCoverageScalesWeight(t *testing.T) {
	probs, _, err := newTestBlender().Blend(Input{
		Implied:        0.50,
		Consensus:      ptr(0.56),
		ConsensusBooks: 1,
	})
	require.NoError(t, err)

	// one of three books: a third of the market weight goes to consensus
	assert.InDelta(t, 0.56/3+0.50*2/3, probs.True, 1e-12)
}

func TestBlendPriorScaledByTier(t *testing.T) {
	high := &models.HistoricalStat{HitRate: 0.70, SampleSize: 150, ConfidenceTier: models.TierHigh}
	veryLow := &models.HistoricalStat{HitRate: 0.70, SampleSize: 5, ConfidenceTier: models.TierVeryLow}

	withHigh, _, err := newTestBlender().Blend(Input{Implied: 0.5, Sharp: ptr(0.5), Prior: high})
	require.NoError(t, err)
	assert.InDelta(t, (0.6*0.5+0.1*0.7)/0.7, withHigh.True, 1e-12)

	withVeryLow, conf, err := newTestBlender().Blend(Input{Implied: 0.5, Sharp: ptr(0.5), Prior: veryLow})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, withVeryLow.True, 1e-12)
	require.NotNil(t, withVeryLow.Prior)
	assert.Greater(t, conf.Score, 45.0)
}

func TestBlendClampsDegeneratePrior(t *testing.T) {
	perfect := &models.HistoricalStat{HitRate: 1.0, SampleSize: 12, ConfidenceTier: models.TierLow}

	probs, _, err := newTestBlender().Blend(Input{Implied: 0.5, Prior: perfect})
	require.NoError(t, err)
	require.NotNil(t, probs.Prior)
	assert.Equal(t, 0.99, *probs.Prior)
	assert.True(t, models.ValidProbability(probs.True))
}

func TestBlendIgnoresInvalidEstimators(t *testing.T) {
	probs, conf, err := newTestBlender().Blend(Input{Implied: 0.5, Sharp: ptr(1.0), Consensus: ptr(0)})
	require.NoError(t, err)
	assert.Nil(t, probs.Sharp)
	assert.Nil(t, probs.Consensus)
	assert.False(t, conf.SharpAvailable)
}

func TestBlendRejectsInvalidImplied(t *testing.T) {
	_, _, err := newTestBlender().Blend(Input{Implied: 1.0})
	assert.ErrorIs(t, err, models.ErrInvalidProbability)
}

func TestConfidenceDropsWhenAnyEstimatorRemoved(t *testing.T) {
	prior := &models.HistoricalStat{HitRate: 0.6, SampleSize: 40, ConfidenceTier: models.TierMedium}
	full := Input{Implied: 0.5, Sharp: ptr(0.52), Consensus: ptr(0.51), ConsensusBooks: 2, Prior: prior}

	variants := []struct {
		name  string
		input Input
	}{
		{"full", full},
		{"no sharp", Input{Implied: 0.5, Consensus: ptr(0.51), ConsensusBooks: 2, Prior: prior}},
		{"no consensus", Input{Implied: 0.5, Sharp: ptr(0.52), Prior: prior}},
		{"no prior", Input{Implied: 0.5, Sharp: ptr(0.52), Consensus: ptr(0.51), ConsensusBooks: 2}},
		{"sharp only", Input{Implied: 0.5, Sharp: ptr(0.52)}},
		{"consensus only", Input{Implied: 0.5, Consensus: ptr(0.51), ConsensusBooks: 1}},
		{"prior only", Input{Implied: 0.5, Prior: prior}},
	}

	score := func(in Input) float64 {
		_, conf, err := newTestBlender().Blend(in)
		require.NoError(t, err)
		return conf.Score
	}

	fullScore := score(full)
	assert.LessOrEqual(t, fullScore, 100.0)
	for _, v := range variants[1:] {
		assert.Less(t, score(v.input), fullScore, v.name)
	}

	// every single estimator beats the implied-only floor
	floor := score(Input{Implied: 0.5})
	for _, v := range variants[4:] {
		assert.Greater(t, score(v.input), floor, v.name)
	}
}
