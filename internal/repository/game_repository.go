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

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

const gameColumns = `id, start_time, home_team_id, away_team_id, status, home_score, away_score, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(
		&game.ID, &game.StartTime, &game.HomeTeamID, &game.AwayTeamID, &game.Status,
		&game.HomeScore, &game.AwayScore, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

// Create inserts a new game
func (r *PostgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, start_time, home_team_id, away_team_id, status, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.StartTime, game.HomeTeamID, game.AwayTeamID, game.Status,
		game.HomeScore, game.AwayScore,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// Upsert inserts a game or refreshes its schedule and result fields
func (r *PostgresGameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, start_time, home_team_id, away_team_id, status, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			status = EXCLUDED.status,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.StartTime, game.HomeTeamID, game.AwayTeamID, game.Status,
		game.HomeScore, game.AwayScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByDateRange retrieves games starting within [start, end] ordered by
// start time then ID for deterministic iteration.
func (r *PostgresGameRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE start_time >= $1 AND start_time <= $2
		ORDER BY start_time ASC, id ASC
	`

	return r.queryGames(ctx, query, start, end)
}

// GetFinalBefore retrieves final games starting at or before horizon.
// Status values are bound from the models constants so the stored and
// queried spellings cannot drift apart.
func (r *PostgresGameRepository) GetFinalBefore(ctx context.Context, horizon time.Time) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = $1 AND start_time <= $2
		ORDER BY start_time ASC, id ASC
	`

	return r.queryGames(ctx, query, models.GameStatusFinal, horizon)
}

// GetScheduled retrieves scheduled games starting within [from, to]
func (r *PostgresGameRepository) GetScheduled(ctx context.Context, from, to time.Time) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time ASC, id ASC
	`

	return r.queryGames(ctx, query, models.GameStatusScheduled, from, to)
}

// SetResult finalizes a game with its score
func (r *PostgresGameRepository) SetResult(ctx context.Context, id uuid.UUID, homeScore, awayScore int) error {
	query := `
		UPDATE games SET status = $4, home_score = $2, away_score = $3, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, homeScore, awayScore, models.GameStatusFinal)
	if err != nil {
		return fmt.Errorf("failed to set game result: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresGameRepository) queryGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
