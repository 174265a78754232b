package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	GameStatusScheduled GameStatus = "SCHEDULED"
	GameStatusFinal     GameStatus = "FINAL"
	GameStatusVoid      GameStatus = "VOID"
)

// Side identifies one of the two outcomes of a moneyline market
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Opposite returns the other side of the market
func (s Side) Opposite() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// Game represents a scheduled or completed NBA game
type Game struct {
	ID         uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	StartTime  time.Time  `db:"start_time" json:"start_time" validate:"required"`
	HomeTeamID uuid.UUID  `db:"home_team_id" json:"home_team_id" validate:"required,uuid4"`
	AwayTeamID uuid.UUID  `db:"away_team_id" json:"away_team_id" validate:"required,uuid4"`
	Status     GameStatus `db:"status" json:"status" validate:"required,oneof=SCHEDULED FINAL VOID"`
	HomeScore  *int       `db:"home_score" json:"home_score"`
	AwayScore  *int       `db:"away_score" json:"away_score"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// IsFinal reports whether the game has completed with scores recorded
func (g *Game) IsFinal() bool {
	return g.Status == GameStatusFinal && g.HomeScore != nil && g.AwayScore != nil
}

// HomeWon reports whether the home team won. The second return value is
// false when the game is not final.
func (g *Game) HomeWon() (bool, bool) {
	if !g.IsFinal() {
		return false, false
	}
	return *g.HomeScore > *g.AwayScore, true
}

// Margin returns the absolute score margin for a final game, 0 otherwise
func (g *Game) Margin() int {
	if !g.IsFinal() {
		return 0
	}
	margin := *g.HomeScore - *g.AwayScore
	if margin < 0 {
		return -margin
	}
	return margin
}

// WinningSide returns the side that won a final game
func (g *Game) WinningSide() (Side, bool) {
	homeWon, ok := g.HomeWon()
	if !ok {
		return "", false
	}
	if homeWon {
		return SideHome, true
	}
	return SideAway, true
}
