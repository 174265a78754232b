package database

import (
	"context"
	"fmt"

	"github.com/yourusername/courtside/internal/config"
)

// Initialize creates a database connection pool and ensures the schema
// exists. Schema statements are idempotent so repeated startup is safe.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// schemaStatements defines the tables and indexes the engine depends on
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		current_rating DOUBLE PRECISION NOT NULL DEFAULT 1500,
		last_game_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id UUID PRIMARY KEY,
		start_time TIMESTAMPTZ NOT NULL,
		home_team_id UUID NOT NULL REFERENCES teams(id),
		away_team_id UUID NOT NULL REFERENCES teams(id),
		status TEXT NOT NULL DEFAULT 'SCHEDULED',
		home_score INTEGER,
		away_score INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_start_time ON games (start_time)`,
	`CREATE TABLE IF NOT EXISTS odds_quotes (
		id UUID PRIMARY KEY,
		game_id UUID NOT NULL REFERENCES games(id),
		book TEXT NOT NULL,
		home_decimal DOUBLE PRECISION NOT NULL,
		away_decimal DOUBLE PRECISION NOT NULL,
		captured_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_odds_quotes_game_captured ON odds_quotes (game_id, captured_at)`,
	`CREATE TABLE IF NOT EXISTS edge_signals (
		id UUID PRIMARY KEY,
		game_id UUID NOT NULL REFERENCES games(id),
		side TEXT,
		model_prob DOUBLE PRECISION,
		market_prob DOUBLE PRECISION,
		edge DOUBLE PRECISION,
		ev DOUBLE PRECISION,
		decision TEXT NOT NULL,
		odds DOUBLE PRECISION,
		book TEXT,
		detected_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_edge_signals_game ON edge_signals (game_id)`,
	`CREATE TABLE IF NOT EXISTS bets (
		id UUID PRIMARY KEY,
		game_id UUID NOT NULL REFERENCES games(id),
		edge_id UUID REFERENCES edge_signals(id),
		side TEXT NOT NULL,
		stake DOUBLE PRECISION NOT NULL,
		odds DOUBLE PRECISION NOT NULL,
		book TEXT NOT NULL,
		model_prob DOUBLE PRECISION NOT NULL,
		market_prob DOUBLE PRECISION NOT NULL,
		edge DOUBLE PRECISION NOT NULL,
		ev DOUBLE PRECISION NOT NULL,
		outcome TEXT NOT NULL DEFAULT 'pending',
		payout DOUBLE PRECISION,
		profit_loss DOUBLE PRECISION,
		closing_odds DOUBLE PRECISION,
		placed_at TIMESTAMPTZ NOT NULL,
		settled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_bets_game UNIQUE (game_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bankroll_history (
		id BIGSERIAL PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL,
		balance DOUBLE PRECISION NOT NULL,
		peak DOUBLE PRECISION NOT NULL,
		drawdown DOUBLE PRECISION NOT NULL,
		change DOUBLE PRECISION NOT NULL,
		reason TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bankroll_history_recorded ON bankroll_history (recorded_at)`,
}

// EnsureSchema applies the table and index definitions
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
