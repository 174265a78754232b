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

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Create inserts a new team
func (r *PostgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, current_rating, last_game_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		team.ID, team.Name, team.CurrentRating, team.LastGameAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := `
		SELECT id, name, current_rating, last_game_at, created_at, updated_at
		FROM teams WHERE id = $1
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.CurrentRating, &team.LastGameAt, &team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByName retrieves a team by its canonical name
func (r *PostgresTeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	query := `
		SELECT id, name, current_rating, last_game_at, created_at, updated_at
		FROM teams WHERE name = $1
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&team.ID, &team.Name, &team.CurrentRating, &team.LastGameAt, &team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by name: %w", err)
	}

	return team, nil
}

// GetAll retrieves every team ordered by name
func (r *PostgresTeamRepository) GetAll(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, name, current_rating, last_game_at, created_at, updated_at
		FROM teams
		ORDER BY name ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID, &team.Name, &team.CurrentRating, &team.LastGameAt, &team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// UpdateRating persists a team's rating and last game time
func (r *PostgresTeamRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, lastGameAt time.Time) error {
	query := `
		UPDATE teams SET current_rating = $2, last_game_at = $3, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, rating, lastGameAt)
	if err != nil {
		return fmt.Errorf("failed to update team rating: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
