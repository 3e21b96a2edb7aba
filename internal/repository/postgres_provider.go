package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/smartslip/internal/database"
	"github.com/yourusername/smartslip/internal/models"
)

// PostgresProvider implements Provider for PostgreSQL
type PostgresProvider struct {
	db *database.DB
}

// NewPostgresProvider creates a new PostgreSQL data provider
func NewPostgresProvider(db *database.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

// QueryQuotes retrieves a market's quotes ordered by observation time
func (p *PostgresProvider) QueryQuotes(ctx context.Context, gameKey string, market models.MarketType, book string, since *time.Time) ([]models.OddsQuote, error) {
	var (
		where = []string{"game_key = $1", "market_type = $2"}
		args  = []interface{}{gameKey, market}
	)
	if book != "" {
		args = append(args, book)
		where = append(where, fmt.Sprintf("lower(sportsbook) = lower($%d)", len(args)))
	}
	if since != nil {
		args = append(args, *since)
		where = append(where, fmt.Sprintf("observed_at >= $%d", len(args)))
	}

	query := `
		SELECT game_key, sportsbook, market_type, selection, price, format, decimal_odds, point, observed_at
		FROM odds_quotes
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY observed_at ASC
	`

	rows, err := p.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.OddsQuote
	for rows.Next() {
		var q models.OddsQuote
		if err := rows.Scan(
			&q.GameKey, &q.Sportsbook, &q.MarketType, &q.Selection, &q.Price,
			&q.Format, &q.DecimalOdds, &q.Point, &q.ObservedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	return quotes, rows.Err()
}

// QueryResults retrieves graded selections matching the filter
func (p *PostgresProvider) QueryResults(ctx context.Context, filter ResultFilter) ([]models.ResultRow, error) {
	var (
		where = []string{"commence_time >= $1"}
		args  = []interface{}{filter.Since}
	)
	if filter.Sport != "" {
		args = append(args, filter.Sport)
		where = append(where, fmt.Sprintf("lower(sport) = lower($%d)", len(args)))
	}
	if filter.MarketType != "" {
		args = append(args, filter.MarketType)
		where = append(where, fmt.Sprintf("market_type = $%d", len(args)))
	}
	if filter.Selection != "" {
		args = append(args, filter.Selection)
		where = append(where, fmt.Sprintf("lower(selection) = lower($%d)", len(args)))
	}
	if filter.Team != "" {
		args = append(args, filter.Team)
		where = append(where, fmt.Sprintf("(lower(home_team) = lower($%d) OR lower(away_team) = lower($%d))", len(args), len(args)))
	}

	query := `
		SELECT result, market_type, selection, sport, home_team, away_team, commence_time
		FROM result_log
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY commence_time ASC
	`

	rows, err := p.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.ResultRow
	for rows.Next() {
		var r models.ResultRow
		if err := rows.Scan(
			&r.Result, &r.MarketType, &r.Selection, &r.Sport, &r.HomeTeam, &r.AwayTeam, &r.CommenceTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// QueryClosingRecord retrieves the latest closing line for a selection
func (p *PostgresProvider) QueryClosingRecord(ctx context.Context, gameKey string, market models.MarketType, selection, book string) (*models.ClosingOddsRecord, error) {
	var (
		where = []string{"game_key = $1", "market_type = $2", "lower(outcome) = lower($3)"}
		args  = []interface{}{gameKey, market, selection}
	)
	if book != "" {
		args = append(args, book)
		where = append(where, fmt.Sprintf("lower(sportsbook) = lower($%d)", len(args)))
	}

	query := `
		SELECT game_key, market_type, sportsbook, outcome, closing_price, closing_observed_at
		FROM closing_odds
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY closing_observed_at DESC
		LIMIT 1
	`

	record := &models.ClosingOddsRecord{}
	err := p.db.GetPool().QueryRow(ctx, query, args...).Scan(
		&record.GameKey, &record.MarketType, &record.Sportsbook, &record.Outcome,
		&record.ClosingPrice, &record.ClosingObservedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get closing record: %w", err)
	}

	return record, nil
}
