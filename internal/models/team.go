package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents an NBA team and its current strength rating
type Team struct {
	ID            uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	Name          string     `db:"name" json:"name" validate:"required"`
	CurrentRating float64    `db:"current_rating" json:"current_rating"`
	LastGameAt    *time.Time `db:"last_game_at" json:"last_game_at"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// RestDays returns the number of full days of rest before gameTime,
// or defaultRest if the team has no recorded previous game.
func (t *Team) RestDays(gameTime time.Time, defaultRest int) int {
	if t == nil || t.LastGameAt == nil {
		return defaultRest
	}
	days := int(gameTime.Sub(*t.LastGameAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
