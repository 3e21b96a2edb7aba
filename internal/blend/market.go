package blend

import (
	"strings"

	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/odds"
)

// MarketView reads per-book estimators for one selection out of a market's
// quote history. Each book contributes only its latest quote per selection.
type MarketView struct {
	market    models.MarketType
	selection string
	point     *float64
	latest    map[string]map[string]models.OddsQuote
}

// NewMarketView indexes quotes for the given selection and line
func NewMarketView(quotes []models.OddsQuote, market models.MarketType, selection string, point *float64) *MarketView {
	v := &MarketView{
		market:    market,
		selection: strings.ToLower(selection),
		point:     point,
		latest:    make(map[string]map[string]models.OddsQuote),
	}

	for _, q := range quotes {
		if q.MarketType != "" && q.MarketType != market {
			continue
		}
		if q.DecimalOdds <= 1 {
			continue
		}
		sel := strings.ToLower(q.Selection)
		if !v.relevant(sel, q) {
			continue
		}
		book := strings.ToLower(q.Sportsbook)
		if v.latest[book] == nil {
			v.latest[book] = make(map[string]models.OddsQuote)
		}
		if prev, ok := v.latest[book][sel]; !ok || q.ObservedAt.After(prev.ObservedAt) {
			v.latest[book][sel] = q
		}
	}
	return v
}

func (v *MarketView) relevant(sel string, q models.OddsQuote) bool {
	if v.point == nil || v.market.IsMoneyline() {
		return true
	}
	if sel == v.selection {
		return q.MatchesPoint(v.point)
	}
	return q.MatchesPoint(models.CounterpartPoint(v.market, v.point))
}

// Books returns the number of books quoting the selection
func (v *MarketView) Books() int {
	n := 0
	for _, sels := range v.latest {
		if _, ok := sels[v.selection]; ok {
			n++
		}
	}
	return n
}

// NoVig returns the book's fair probability for the selection, or nil when
// the book does not quote both the selection and at least one other side
func (v *MarketView) NoVig(book string) *float64 {
	sels := v.latest[strings.ToLower(book)]
	own, ok := sels[v.selection]
	if !ok || len(sels) < 2 {
		return nil
	}

	prices := []float64{own.DecimalOdds}
	for sel, q := range sels {
		if sel != v.selection {
			prices = append(prices, q.DecimalOdds)
		}
	}
	fair, err := odds.RemoveVigFromDecimal(prices)
	if err != nil {
		return nil
	}
	return &fair[0]
}

// Consensus averages the fair probability over every book except exclude
// that quotes a complete market. It returns nil and zero books when no book
// qualifies.
func (v *MarketView) Consensus(exclude string) (*float64, int) {
	exclude = strings.ToLower(exclude)
	sum, books := 0.0, 0
	for book := range v.latest {
		if book == exclude {
			continue
		}
		if p := v.NoVig(book); p != nil {
			sum += *p
			books++
		}
	}
	if books == 0 {
		return nil, 0
	}
	mean := sum / float64(books)
	return &mean, books
}

// DevigEntry removes the entry book's margin from the entry price using the
// book's latest opposing quotes. Without them the raw implied probability
// is returned.
func (v *MarketView) DevigEntry(book string, entryDecimal float64) (float64, error) {
	implied, err := odds.ImpliedProbability(entryDecimal)
	if err != nil {
		return 0, err
	}

	prices := []float64{entryDecimal}
	for sel, q := range v.latest[strings.ToLower(book)] {
		if sel != v.selection {
			prices = append(prices, q.DecimalOdds)
		}
	}
	if len(prices) < 2 {
		return implied, nil
	}

	fair, err := odds.RemoveVigFromDecimal(prices)
	if err != nil {
		return implied, nil
	}
	return fair[0], nil
}

// BestPrice returns the longest latest price for the selection across books
func (v *MarketView) BestPrice() *models.BestPrice {
	var best *models.BestPrice
	for _, sels := range v.latest {
		q, ok := sels[v.selection]
		if !ok {
			continue
		}
		if best == nil || q.DecimalOdds > best.DecimalOdds ||
			(q.DecimalOdds == best.DecimalOdds && q.Sportsbook < best.Sportsbook) {
			best = &models.BestPrice{Sportsbook: q.Sportsbook, DecimalOdds: q.DecimalOdds, ObservedAt: q.ObservedAt}
		}
	}
	return best
}
