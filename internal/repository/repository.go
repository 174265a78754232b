package repository

import (
	"fmt"

	"github.com/yourusername/courtside/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team     TeamRepository
	Game     GameRepository
	Odds     OddsRepository
	Edge     EdgeRepository
	Bet      BetRepository
	Bankroll BankrollRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:     NewPostgresTeamRepository(db),
		Game:     NewPostgresGameRepository(db),
		Odds:     NewPostgresOddsRepository(db),
		Edge:     NewPostgresEdgeRepository(db),
		Bet:      NewPostgresBetRepository(db),
		Bankroll: NewPostgresBankrollRepository(db),
	}, nil
}
