package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

// PostgresBankrollRepository implements BankrollRepository for PostgreSQL
type PostgresBankrollRepository struct {
	db *database.DB
}

// NewPostgresBankrollRepository creates a new bankroll ledger repository
func NewPostgresBankrollRepository(db *database.DB) BankrollRepository {
	return &PostgresBankrollRepository{db: db}
}

// Record appends a bankroll state to the ledger
func (r *PostgresBankrollRepository) Record(ctx context.Context, state *models.BankrollState) error {
	query := `
		INSERT INTO bankroll_history (recorded_at, balance, peak, drawdown, change, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		state.Time, state.Balance, state.Peak, state.Drawdown, state.Change, state.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to record bankroll state: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent ledger entry
func (r *PostgresBankrollRepository) GetLatest(ctx context.Context) (*models.BankrollState, error) {
	query := `
		SELECT recorded_at, balance, peak, drawdown, change, reason
		FROM bankroll_history
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`

	state := &models.BankrollState{}
	err := r.db.GetPool().QueryRow(ctx, query).Scan(
		&state.Time, &state.Balance, &state.Peak, &state.Drawdown, &state.Change, &state.Reason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest bankroll state: %w", err)
	}

	return state, nil
}

// GetHistory retrieves ledger entries recorded within [start, end]
func (r *PostgresBankrollRepository) GetHistory(ctx context.Context, start, end time.Time) ([]*models.BankrollState, error) {
	query := `
		SELECT recorded_at, balance, peak, drawdown, change, reason
		FROM bankroll_history
		WHERE recorded_at >= $1 AND recorded_at <= $2
		ORDER BY recorded_at ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bankroll history: %w", err)
	}
	defer rows.Close()

	var history []*models.BankrollState
	for rows.Next() {
		state := &models.BankrollState{}
		err := rows.Scan(
			&state.Time, &state.Balance, &state.Peak, &state.Drawdown, &state.Change, &state.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bankroll state: %w", err)
		}
		history = append(history, state)
	}

	return history, rows.Err()
}
