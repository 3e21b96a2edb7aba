// Package analysis runs the scoring pipeline over requested legs and slips.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smartslip/internal/blend"
	"github.com/yourusername/smartslip/internal/clv"
	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/ev"
	"github.com/yourusername/smartslip/internal/history"
	"github.com/yourusername/smartslip/internal/logger"
	"github.com/yourusername/smartslip/internal/metrics"
	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/movement"
	"github.com/yourusername/smartslip/internal/odds"
	"github.com/yourusername/smartslip/internal/parlay"
	"github.com/yourusername/smartslip/internal/repository"
)

// Leg outcomes reported to metrics
const (
	outcomePassed   = "passed"
	outcomeFiltered = "filtered"
	outcomeInvalid  = "invalid"
)

// LegResult is the outcome of one requested leg. Exactly one of Leg and
// Error is set.
type LegResult struct {
	RequestID uuid.UUID   `json:"request_id"`
	Leg       *models.Leg `json:"leg,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// SlipResult is a scored parlay with its derived recommendations
type SlipResult struct {
	Parlay          *models.Parlay          `json:"parlay"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// Analyzer wires every pipeline stage together
type Analyzer struct {
	cfg       config.EngineConfig
	provider  repository.Provider
	history   *history.Service
	blender   *blend.Blender
	calc      *ev.Calculator
	movement  *movement.Engine
	parlay    *parlay.Engine
	proposals repository.ProposalWriter
	clock     history.Clock
	logger    *logger.AnalysisLogger
}

// NewAnalyzer creates an analyzer. proposals may be nil to skip the tracking
// write path.
func NewAnalyzer(cfg config.EngineConfig, provider repository.Provider, hist *history.Service, proposals repository.ProposalWriter, clock history.Clock, log *logrus.Logger) (*Analyzer, error) {
	if err := config.ValidateEngine(cfg); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("data provider is required")
	}
	if hist == nil {
		return nil, fmt.Errorf("history service is required")
	}
	if clock == nil {
		clock = history.SystemClock{}
	}

	return &Analyzer{
		cfg:       cfg,
		provider:  provider,
		history:   hist,
		blender:   blend.NewBlender(cfg.Blend),
		calc:      ev.NewCalculator(cfg.Thresholds),
		movement:  movement.NewEngine(cfg.Movement, cfg.SharpBook),
		parlay:    parlay.NewEngine(cfg),
		proposals: proposals,
		clock:     clock,
		logger:    logger.NewAnalysisLogger(log),
	}, nil
}

// AnalyzeLegs scores each request as a single wager. A bad price fails only
// its own leg.
func (a *Analyzer) AnalyzeLegs(ctx context.Context, requests []models.LegRequest) []LegResult {
	start := time.Now()
	defer func() {
		metrics.RecordAnalysisDuration(metrics.KindLegs, time.Since(start).Seconds())
	}()

	legs, errs := a.scoreAll(ctx, requests, ev.ContextSingle)

	results := make([]LegResult, len(requests))
	var scored []models.Leg
	for i := range requests {
		results[i].RequestID = legs[i].ID
		if errs[i] != nil {
			results[i].Error = errs[i].Error()
			continue
		}
		leg := legs[i]
		results[i].Leg = &leg
		scored = append(scored, leg)
	}

	a.recordProposals(ctx, scored)
	return results
}

// AnalyzeParlay scores every request as a parlay leg and combines them.
// An empty slip or any leg with a bad price fails the whole slip.
func (a *Analyzer) AnalyzeParlay(ctx context.Context, requests []models.LegRequest) (*SlipResult, error) {
	if len(requests) == 0 {
		return nil, models.ErrNoLegs
	}

	start := time.Now()
	legs, errs := a.scoreAll(ctx, requests, ev.ContextParlayLeg)
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("leg %d (%s): %w", i+1, legs[i].ID, err)
		}
	}

	p, err := a.parlay.Analyze(legs)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordAnalysisDuration(metrics.KindParlay, elapsed.Seconds())
	metrics.RecordParlayAnalyzed(string(p.Verdict))
	a.logger.LogParlayVerdict(p, float64(elapsed.Microseconds())/1000)

	a.recordProposals(ctx, legs)
	return &SlipResult{
		Parlay:          p,
		Recommendations: a.parlay.Recommendations(p),
	}, nil
}

// scoreAll scores each request on its own goroutine. Each goroutine writes
// only its own slot.
func (a *Analyzer) scoreAll(ctx context.Context, requests []models.LegRequest, legContext ev.LegContext) ([]models.Leg, []error) {
	legs := make([]models.Leg, len(requests))
	errs := make([]error, len(requests))

	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			legs[i], errs[i] = a.scoreLeg(ctx, requests[i], legContext)
		}(i)
	}
	wg.Wait()

	return legs, errs
}

// scoreLeg runs one leg through every stage. Only a bad price or an invalid
// probability is returned as an error; missing data lowers confidence and
// is reported as an issue.
func (a *Analyzer) scoreLeg(ctx context.Context, req models.LegRequest, legContext ev.LegContext) (models.Leg, error) {
	leg := newLeg(req)
	id := leg.ID.String()

	dec, format, err := parseEntry(req)
	if err != nil {
		a.logger.LogInvalidLeg(id, err)
		metrics.RecordLegAnalyzed(outcomeInvalid)
		return leg, err
	}
	leg.EntryDecimal = dec
	leg.EntryFormat = format

	quotes, err := a.provider.QueryQuotes(ctx, req.GameKey, req.MarketType, "", nil)
	if err != nil {
		a.lookupFailed(repository.OpQueryQuotes, id, err)
		leg = leg.WithIssue("market quotes unavailable; using entry price only")
		quotes = nil
	}

	view := blend.NewMarketView(quotes, req.MarketType, req.Selection, req.Point)
	implied, err := view.DevigEntry(req.Sportsbook, dec)
	if err != nil {
		return leg, err
	}
	sharp := view.NoVig(a.cfg.SharpBook)
	consensus, books := view.Consensus(a.cfg.SharpBook)
	leg.BestPrice = view.BestPrice()

	prior, err := a.history.GetHitRate(ctx, req.Sport, req.MarketType, req.Selection, a.cfg.History.LookbackDays)
	if err != nil {
		a.lookupFailed(repository.OpQueryResults, id, err)
		leg = leg.WithIssue("historical prior unavailable")
		prior = nil
	}
	leg.Prior = prior

	probs, confidence, err := a.blender.Blend(blend.Input{
		Implied:        implied,
		Sharp:          sharp,
		Consensus:      consensus,
		ConsensusBooks: books,
		Prior:          prior,
	})
	if err != nil {
		metrics.RecordLegAnalyzed(outcomeInvalid)
		return leg, err
	}
	leg.Probabilities = probs
	leg.Confidence = confidence
	if sharp == nil {
		leg = leg.WithIssue(fmt.Sprintf("no %s price for this market", a.cfg.SharpBook))
	}

	leg, err = a.calc.Score(leg, legContext)
	if err != nil {
		metrics.RecordLegAnalyzed(outcomeInvalid)
		return leg, err
	}

	leg.Movement = a.movementSignal(quotes, req, leg.Metrics.EVPercent)
	leg.CLV = a.closingValue(ctx, req, dec, id)

	outcome := outcomeFiltered
	if leg.Metrics.PassesFilters {
		outcome = outcomePassed
	}
	metrics.RecordLegAnalyzed(outcome)
	a.logger.LogLegScored(leg)
	return leg, nil
}

func (a *Analyzer) movementSignal(quotes []models.OddsQuote, req models.LegRequest, evPercent float64) *models.MovementSignal {
	if len(quotes) == 0 {
		return nil
	}
	signal, err := a.movement.Compute(quotes, movement.Query{
		GameKey:      req.GameKey,
		MarketType:   req.MarketType,
		Selection:    req.Selection,
		Point:        req.Point,
		CommenceTime: req.CommenceTime,
	})
	if err != nil {
		return nil
	}
	signal = movement.WithRecommendation(signal, evPercent)
	metrics.RecordMovementRecommendation(string(signal.Recommendation))
	return signal
}

func (a *Analyzer) closingValue(ctx context.Context, req models.LegRequest, entryDecimal float64, legID string) models.LegCLV {
	closing, err := a.history.GetClosingPrice(ctx, history.ClosingQuery{
		GameKey:      req.GameKey,
		MarketType:   req.MarketType,
		Selection:    req.Selection,
		Point:        req.Point,
		Sportsbook:   a.cfg.SharpBook,
		CommenceTime: req.CommenceTime,
	})
	if err != nil {
		a.lookupFailed(repository.OpQueryClosing, legID, err)
	}
	return clv.Assess(entryDecimal, closing, err, req.CommenceTime, a.clock.Now())
}

func (a *Analyzer) lookupFailed(op, legID string, err error) {
	var failure *models.LookupFailure
	if errors.As(err, &failure) {
		op = failure.Op
	}
	a.logger.LogLookupFailure(op, legID, err)
}

// recordProposals hands legs that passed their filters to the tracking
// write path. Failures are logged and never surface to the caller.
func (a *Analyzer) recordProposals(ctx context.Context, legs []models.Leg) {
	if a.proposals == nil {
		return
	}

	now := a.clock.Now()
	var proposals []*models.LegProposal
	for _, leg := range legs {
		if !leg.Metrics.PassesFilters {
			continue
		}
		proposal := models.NewLegProposal(leg, a.cfg.ModelVersion, now)
		proposals = append(proposals, &proposal)
	}
	if len(proposals) == 0 {
		return
	}

	if err := a.proposals.InsertProposals(ctx, proposals); err != nil {
		a.logger.WithError(err).WithField("proposals", len(proposals)).Error("Failed to record leg proposals")
	}
}

func newLeg(req models.LegRequest) models.Leg {
	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return models.Leg{
		ID:           id,
		GameKey:      req.GameKey,
		Sport:        req.Sport,
		MarketType:   req.MarketType,
		Selection:    req.Selection,
		Point:        req.Point,
		EntryPrice:   strings.TrimSpace(req.Price),
		EntryFormat:  req.Format,
		Sportsbook:   req.Sportsbook,
		CommenceTime: req.CommenceTime,
		Issues:       []string{},
	}
}

// parseEntry converts the requested price to decimal odds fit for staking
func parseEntry(req models.LegRequest) (float64, models.OddsFormat, error) {
	var (
		dec    float64
		format = req.Format
		err    error
	)
	if format == "" {
		dec, format, err = odds.ParsePrice(req.Price)
	} else {
		dec, err = odds.ToDecimal(req.Price, format)
	}
	if err != nil {
		return 0, format, err
	}
	if err := odds.ValidateForStaking(dec); err != nil {
		return 0, format, err
	}
	return dec, format, nil
}
