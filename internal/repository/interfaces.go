package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/courtside/internal/models"
)

// TeamRepository defines operations for team data access
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetByName(ctx context.Context, name string) (*models.Team, error)
	GetAll(ctx context.Context) ([]*models.Team, error)
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, lastGameAt time.Time) error
}

// GameRepository defines operations for game data access
type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	Upsert(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error)
	GetFinalBefore(ctx context.Context, horizon time.Time) ([]*models.Game, error)
	GetScheduled(ctx context.Context, from, to time.Time) ([]*models.Game, error)
	SetResult(ctx context.Context, id uuid.UUID, homeScore, awayScore int) error
}

// OddsRepository defines operations for odds quote data access
type OddsRepository interface {
	Create(ctx context.Context, quote *models.OddsQuote) error
	CreateBatch(ctx context.Context, quotes []*models.OddsQuote) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) (models.QuoteSeries, error)
	// GetLatestBefore returns each book's most recent quote captured
	// strictly before cutoff.
	GetLatestBefore(ctx context.Context, gameID uuid.UUID, cutoff time.Time) (models.QuoteSeries, error)
	// GetClosing returns the last quote for the bet's book before the
	// game start, used for closing line value.
	GetClosing(ctx context.Context, gameID uuid.UUID, book string, startTime time.Time) (*models.OddsQuote, error)
}

// EdgeRepository defines operations for edge signal data access
type EdgeRepository interface {
	Create(ctx context.Context, signal *models.EdgeSignal) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.EdgeSignal, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.EdgeSignal, error)
}

// BetRepository defines operations for bet data access. Create enforces
// the one-bet-per-game guard and returns models.ErrDuplicateBet on
// conflict.
type BetRepository interface {
	Create(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)
	GetByGameID(ctx context.Context, gameID uuid.UUID) (*models.Bet, error)
	GetPending(ctx context.Context) ([]*models.Bet, error)
	GetSettled(ctx context.Context, start, end time.Time) ([]*models.Bet, error)
	Settle(ctx context.Context, bet *models.Bet) error
	SetClosingOdds(ctx context.Context, id uuid.UUID, closing float64) error
}

// BankrollRepository defines operations for the bankroll ledger
type BankrollRepository interface {
	Record(ctx context.Context, state *models.BankrollState) error
	GetLatest(ctx context.Context) (*models.BankrollState, error)
	GetHistory(ctx context.Context, start, end time.Time) ([]*models.BankrollState, error)
}
