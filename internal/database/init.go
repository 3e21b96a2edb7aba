package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/smartslip/internal/config"
)

// RequiredTables are the provider tables the engine reads and writes
var RequiredTables = []string{"odds_quotes", "result_log", "closing_odds", "leg_proposals"}

// Initialize creates a database connection pool and verifies the provider
// tables exist. A missing table is logged rather than fatal: lookups
// against it fail and degrade to unavailable data.
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	missing, err := db.MissingTables(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(missing) > 0 && logger != nil {
		logger.WithField("tables", missing).Warn("Data provider tables missing; lookups against them will degrade")
	}

	return db, nil
}

// MissingTables lists RequiredTables absent from the current schema
func (db *DB) MissingTables(ctx context.Context) ([]string, error) {
	var missing []string
	for _, table := range RequiredTables {
		var exists bool
		err := db.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
