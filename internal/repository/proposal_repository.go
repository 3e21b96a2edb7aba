package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/smartslip/internal/database"
	"github.com/yourusername/smartslip/internal/models"
)

var proposalColumns = []string{
	"id", "game_key", "sport", "market_type", "selection", "sportsbook",
	"opening_odds", "suggested_probability", "ev_at_suggestion", "kelly_size_suggested",
	"model_version", "created_at",
}

// PostgresProposalRepository implements ProposalWriter for PostgreSQL
type PostgresProposalRepository struct {
	db *database.DB
}

// NewPostgresProposalRepository creates a new proposal repository
func NewPostgresProposalRepository(db *database.DB) *PostgresProposalRepository {
	return &PostgresProposalRepository{db: db}
}

// InsertProposal inserts a single leg proposal
func (r *PostgresProposalRepository) InsertProposal(ctx context.Context, proposal *models.LegProposal) error {
	query := `
		INSERT INTO leg_proposals (id, game_key, sport, market_type, selection, sportsbook,
			opening_odds, suggested_probability, ev_at_suggestion, kelly_size_suggested,
			model_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.GetPool().Exec(ctx, query, proposalRow(proposal)...)
	if err != nil {
		return fmt.Errorf("failed to insert leg proposal: %w", err)
	}
	return nil
}

// InsertProposals inserts leg proposals using COPY inside one transaction;
// a batch is stored whole or not at all
func (r *PostgresProposalRepository) InsertProposals(ctx context.Context, proposals []*models.LegProposal) error {
	if len(proposals) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(proposals))
	for i, p := range proposals {
		rows[i] = proposalRow(p)
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		count, err := tx.CopyFrom(ctx, pgx.Identifier{"leg_proposals"}, proposalColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to batch insert leg proposals: %w", err)
		}
		if count != int64(len(proposals)) {
			return fmt.Errorf("inserted %d rows, expected %d", count, len(proposals))
		}
		return nil
	})
}

func proposalRow(p *models.LegProposal) []interface{} {
	return []interface{}{
		p.ID, p.GameKey, p.Sport, string(p.MarketType), p.Selection, p.Sportsbook,
		p.OpeningOdds, p.SuggestedProbability, p.EVAtSuggestion, p.KellySizeSuggested,
		p.ModelVersion, p.CreatedAt,
	}
}
