package models

import (
	"time"

	"github.com/google/uuid"
)

// Decision is the outcome of edge evaluation for a game
type Decision string

const (
	DecisionBet   Decision = "bet"
	DecisionNoBet Decision = "no_bet"
)

// EdgeSignal records the model-vs-market comparison that produced a
// betting decision for one game.
type EdgeSignal struct {
	ID         uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	GameID     uuid.UUID `db:"game_id" json:"game_id" validate:"required,uuid4"`
	Side       Side      `db:"side" json:"side" validate:"required,oneof=home away"`
	ModelProb  float64   `db:"model_prob" json:"model_prob" validate:"gte=0,lte=1"`
	MarketProb float64   `db:"market_prob" json:"market_prob" validate:"gte=0,lte=1"`
	Edge       float64   `db:"edge" json:"edge"`
	EV         float64   `db:"ev" json:"ev"`
	Decision   Decision  `db:"decision" json:"decision" validate:"required"`
	Odds       float64   `db:"odds" json:"odds"`
	Book       string    `db:"book" json:"book"`
	DetectedAt time.Time `db:"detected_at" json:"detected_at" validate:"required"`
}
