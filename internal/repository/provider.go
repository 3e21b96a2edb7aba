package repository

import (
	"context"
	"time"

	"github.com/yourusername/smartslip/internal/models"
)

// ResultFilter narrows a result-log query. Empty fields are not filtered on.
type ResultFilter struct {
	Sport      string
	MarketType models.MarketType
	Selection  string
	Team       string
	Since      time.Time
}

// QuoteReader reads the odds history of a market. An empty book means every
// book and a nil since means the whole history. Quotes come back ordered by
// observed_at ascending.
type QuoteReader interface {
	QueryQuotes(ctx context.Context, gameKey string, market models.MarketType, book string, since *time.Time) ([]models.OddsQuote, error)
}

// ResultReader reads graded selections from the result log
type ResultReader interface {
	QueryResults(ctx context.Context, filter ResultFilter) ([]models.ResultRow, error)
}

// ClosingReader reads persisted closing lines. It returns models.ErrNotFound
// when the market has no closing record.
type ClosingReader interface {
	QueryClosingRecord(ctx context.Context, gameKey string, market models.MarketType, selection, book string) (*models.ClosingOddsRecord, error)
}

// ProposalWriter is the write path of the external tracking subsystem
type ProposalWriter interface {
	InsertProposal(ctx context.Context, proposal *models.LegProposal) error
	InsertProposals(ctx context.Context, proposals []*models.LegProposal) error
}

// Provider bundles every read the engine performs against the data store
type Provider interface {
	QuoteReader
	ResultReader
	ClosingReader
}
