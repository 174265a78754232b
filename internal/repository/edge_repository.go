package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

// PostgresEdgeRepository implements EdgeRepository for PostgreSQL
type PostgresEdgeRepository struct {
	db *database.DB
}

// NewPostgresEdgeRepository creates a new edge signal repository
func NewPostgresEdgeRepository(db *database.DB) EdgeRepository {
	return &PostgresEdgeRepository{db: db}
}

const edgeColumns = `id, game_id, side, model_prob, market_prob, edge, ev, decision, odds, book, detected_at`

// Create inserts an edge signal
func (r *PostgresEdgeRepository) Create(ctx context.Context, signal *models.EdgeSignal) error {
	query := `
		INSERT INTO edge_signals (id, game_id, side, model_prob, market_prob, edge, ev, decision, odds, book, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		signal.ID, signal.GameID, signal.Side, signal.ModelProb, signal.MarketProb,
		signal.Edge, signal.EV, signal.Decision, signal.Odds, signal.Book, signal.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create edge signal: %w", err)
	}

	return nil
}

// GetByGameID retrieves signals for a game in detection order
func (r *PostgresEdgeRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.EdgeSignal, error) {
	query := `
		SELECT ` + edgeColumns + `
		FROM edge_signals
		WHERE game_id = $1
		ORDER BY detected_at ASC
	`

	return r.querySignals(ctx, query, gameID)
}

// GetByDateRange retrieves signals detected within [start, end]
func (r *PostgresEdgeRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.EdgeSignal, error) {
	query := `
		SELECT ` + edgeColumns + `
		FROM edge_signals
		WHERE detected_at >= $1 AND detected_at <= $2
		ORDER BY detected_at ASC
	`

	return r.querySignals(ctx, query, start, end)
}

func (r *PostgresEdgeRepository) querySignals(ctx context.Context, query string, args ...interface{}) ([]*models.EdgeSignal, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edge signals: %w", err)
	}
	defer rows.Close()

	var signals []*models.EdgeSignal
	for rows.Next() {
		signal := &models.EdgeSignal{}
		err := rows.Scan(
			&signal.ID, &signal.GameID, &signal.Side, &signal.ModelProb, &signal.MarketProb,
			&signal.Edge, &signal.EV, &signal.Decision, &signal.Odds, &signal.Book, &signal.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge signal: %w", err)
		}
		signals = append(signals, signal)
	}

	return signals, rows.Err()
}
