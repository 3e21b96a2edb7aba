// Package blend combines sharp, consensus and historical estimators into a
// single win probability with a confidence score.
package blend

import (
	"math"

	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/models"
)

const (
	minPrior = 0.01
	maxPrior = 0.99

	// a present prior always earns some confidence, even at a zero tier weight
	minPriorScoreShare = 0.1
)

// Input carries every estimator available for one leg. Nil means the data
// was unavailable.
type Input struct {
	// Implied is the entry book's probability, de-vigged when the opposing
	// side is quoted
	Implied        float64
	Sharp          *float64
	Consensus      *float64
	ConsensusBooks int
	Prior          *models.HistoricalStat
}

// Blender applies the configured blending policy
type Blender struct {
	cfg config.BlendConfig
}

// NewBlender creates a blender
func NewBlender(cfg config.BlendConfig) *Blender {
	return &Blender{cfg: cfg}
}

// Blend produces the blended probability and its confidence. The sharp
// estimator anchors the market share of the weight when present, the
// consensus takes its place when it is not, and the entry implied
// probability fills whatever market share neither can cover. The prior is
// added on top, scaled by its confidence tier. Missing estimators never
// error; only an invalid implied probability does.
func (b *Blender) Blend(in Input) (models.Probabilities, models.Confidence, error) {
	if !models.ValidProbability(in.Implied) {
		return models.Probabilities{}, models.Confidence{}, models.ErrInvalidProbability
	}

	probs := models.Probabilities{Implied: in.Implied}
	sharp := validOrNil(in.Sharp)
	consensus := validOrNil(in.Consensus)
	coverage := b.coverage(consensus, in.ConsensusBooks)

	marketWeight := b.cfg.SharpWeight + b.cfg.ConsensusWeight

	var (
		weighted float64
		total    float64
	)
	add := func(p, w float64) {
		if w <= 0 {
			return
		}
		weighted += p * w
		total += w
	}

	switch {
	case sharp != nil:
		probs.Sharp = sharp
		add(*sharp, b.cfg.SharpWeight)
		if consensus != nil {
			probs.Consensus = consensus
			add(*consensus, b.cfg.ConsensusWeight*coverage)
		}
	case consensus != nil:
		probs.Consensus = consensus
		add(*consensus, marketWeight*coverage)
		add(in.Implied, marketWeight*(1-coverage))
	default:
		add(in.Implied, marketWeight)
	}

	var priorMultiplier float64
	if in.Prior != nil {
		prior := clamp(in.Prior.HitRate, minPrior, maxPrior)
		probs.Prior = &prior
		priorMultiplier = b.cfg.TierMultipliers.For(in.Prior.ConfidenceTier)
		add(prior, b.cfg.PriorWeight*priorMultiplier)
	}

	if total > 0 {
		probs.True = weighted / total
	} else {
		probs.True = in.Implied
	}

	confidence := models.Confidence{
		Score:          b.score(sharp != nil, consensus != nil, coverage, in.Prior != nil, priorMultiplier),
		SharpAvailable: sharp != nil,
	}
	return probs, confidence, nil
}

// coverage scales the consensus by how many books contributed to it
func (b *Blender) coverage(consensus *float64, books int) float64 {
	if consensus == nil {
		return 0
	}
	if books < 1 {
		books = 1
	}
	full := b.cfg.ConsensusFullBooks
	if full < 1 {
		full = 1
	}
	return math.Min(float64(books)/float64(full), 1)
}

// score awards points per estimator. Every estimator contributes a strictly
// positive amount, so removing any of them lowers the score.
func (b *Blender) score(hasSharp, hasConsensus bool, coverage float64, hasPrior bool, priorMultiplier float64) float64 {
	s := b.cfg.Score
	points := 0.0

	if hasSharp {
		points += s.Sharp
	}
	if hasConsensus {
		points += s.ImpliedOnly + (s.Consensus-s.ImpliedOnly)*coverage
	}
	if !hasSharp && !hasConsensus {
		points += s.ImpliedOnly
	}
	if hasPrior {
		points += s.Prior * math.Max(priorMultiplier, minPriorScoreShare)
	}

	return clamp(points, 0, 100)
}

func validOrNil(p *float64) *float64 {
	if p == nil || !models.ValidProbability(*p) {
		return nil
	}
	v := *p
	return &v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
