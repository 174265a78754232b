package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

const betColumns = `id, game_id, edge_id, side, stake, odds, book, model_prob, market_prob, edge, ev,
	       outcome, payout, profit_loss, closing_odds, placed_at, settled_at, created_at, updated_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	bet := &models.Bet{}
	err := row.Scan(
		&bet.ID, &bet.GameID, &bet.EdgeID, &bet.Side, &bet.Stake, &bet.Odds, &bet.Book,
		&bet.ModelProb, &bet.MarketProb, &bet.Edge, &bet.EV, &bet.Outcome, &bet.Payout,
		&bet.ProfitLoss, &bet.ClosingOdds, &bet.PlacedAt, &bet.SettledAt, &bet.CreatedAt, &bet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bet, nil
}

// Create inserts a new bet. The unique index on game_id enforces the
// one-bet-per-game guard even across restarts.
func (r *PostgresBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (id, game_id, edge_id, side, stake, odds, book, model_prob, market_prob,
		                  edge, ev, outcome, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.GameID, bet.EdgeID, bet.Side, bet.Stake, bet.Odds, bet.Book,
		bet.ModelProb, bet.MarketProb, bet.Edge, bet.EV, bet.Outcome, bet.PlacedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("bet already placed for game %s: %w", bet.GameID, models.ErrDuplicateBet)
		}
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves a bet by ID
func (r *PostgresBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	return bet, nil
}

// GetByGameID retrieves the bet placed on a game, if any
func (r *PostgresBetRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE game_id = $1`

	bet, err := scanBet(r.db.GetPool().QueryRow(ctx, query, gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet by game: %w", err)
	}

	return bet, nil
}

// GetPending retrieves all unsettled bets in placement order
func (r *PostgresBetRepository) GetPending(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE outcome = 'pending'
		ORDER BY placed_at ASC
	`

	return r.queryBets(ctx, query)
}

// GetSettled retrieves bets settled within [start, end]
func (r *PostgresBetRepository) GetSettled(ctx context.Context, start, end time.Time) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE outcome != 'pending' AND settled_at >= $1 AND settled_at <= $2
		ORDER BY settled_at ASC
	`

	return r.queryBets(ctx, query, start, end)
}

// Settle persists a bet's final outcome
func (r *PostgresBetRepository) Settle(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets SET
			outcome = $2, payout = $3, profit_loss = $4, settled_at = $5, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.Outcome, bet.Payout, bet.ProfitLoss, bet.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to settle bet: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetClosingOdds records the closing price for closing line value
func (r *PostgresBetRepository) SetClosingOdds(ctx context.Context, id uuid.UUID, closing float64) error {
	query := `
		UPDATE bets SET closing_odds = $2, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, closing)
	if err != nil {
		return fmt.Errorf("failed to set closing odds: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresBetRepository) queryBets(ctx context.Context, query string, args ...interface{}) ([]*models.Bet, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}
