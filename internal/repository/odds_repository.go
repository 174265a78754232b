package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

const oddsColumns = `id, game_id, book, home_decimal, away_decimal, captured_at`

// Create inserts a single odds quote
func (r *PostgresOddsRepository) Create(ctx context.Context, quote *models.OddsQuote) error {
	query := `
		INSERT INTO odds_quotes (id, game_id, book, home_decimal, away_decimal, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		quote.ID, quote.GameID, quote.Book, quote.HomeDecimal, quote.AwayDecimal, quote.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create odds quote: %w", err)
	}

	return nil
}

// CreateBatch inserts quotes in a single transaction
func (r *PostgresOddsRepository) CreateBatch(ctx context.Context, quotes []*models.OddsQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO odds_quotes (id, game_id, book, home_decimal, away_decimal, captured_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, quote := range quotes {
			_, err := tx.Exec(ctx, query,
				quote.ID, quote.GameID, quote.Book, quote.HomeDecimal, quote.AwayDecimal, quote.CapturedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert odds quote %s: %w", quote.ID, err)
			}
		}
		return nil
	})
}

// GetByGameID retrieves all quotes for a game in capture order
func (r *PostgresOddsRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) (models.QuoteSeries, error) {
	query := `
		SELECT ` + oddsColumns + `
		FROM odds_quotes
		WHERE game_id = $1
		ORDER BY captured_at ASC, id ASC
	`

	return r.queryQuotes(ctx, query, gameID)
}

// GetLatestBefore retrieves each book's most recent quote captured
// strictly before cutoff.
func (r *PostgresOddsRepository) GetLatestBefore(ctx context.Context, gameID uuid.UUID, cutoff time.Time) (models.QuoteSeries, error) {
	query := `
		SELECT DISTINCT ON (book) ` + oddsColumns + `
		FROM odds_quotes
		WHERE game_id = $1 AND captured_at < $2
		ORDER BY book ASC, captured_at DESC, id DESC
	`

	return r.queryQuotes(ctx, query, gameID, cutoff)
}

// GetClosing retrieves the last quote for a book before the game start
func (r *PostgresOddsRepository) GetClosing(ctx context.Context, gameID uuid.UUID, book string, startTime time.Time) (*models.OddsQuote, error) {
	query := `
		SELECT ` + oddsColumns + `
		FROM odds_quotes
		WHERE game_id = $1 AND book = $2 AND captured_at < $3
		ORDER BY captured_at DESC, id DESC
		LIMIT 1
	`

	quote := &models.OddsQuote{}
	err := r.db.GetPool().QueryRow(ctx, query, gameID, book, startTime).Scan(
		&quote.ID, &quote.GameID, &quote.Book, &quote.HomeDecimal, &quote.AwayDecimal, &quote.CapturedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get closing quote: %w", err)
	}

	return quote, nil
}

func (r *PostgresOddsRepository) queryQuotes(ctx context.Context, query string, args ...interface{}) (models.QuoteSeries, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds quotes: %w", err)
	}
	defer rows.Close()

	var quotes models.QuoteSeries
	for rows.Next() {
		quote := &models.OddsQuote{}
		err := rows.Scan(
			&quote.ID, &quote.GameID, &quote.Book, &quote.HomeDecimal, &quote.AwayDecimal, &quote.CapturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds quote: %w", err)
		}
		quotes = append(quotes, quote)
	}

	return quotes, rows.Err()
}
