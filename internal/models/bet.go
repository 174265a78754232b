package models

import (
	"time"

	"github.com/google/uuid"
)

// BetOutcome represents the settlement state of a bet
type BetOutcome string

const (
	BetOutcomePending BetOutcome = "pending"
	BetOutcomeWon     BetOutcome = "won"
	BetOutcomeLost    BetOutcome = "lost"
	BetOutcomeVoid    BetOutcome = "void"
)

// Bet represents a moneyline paper bet. Stake is fixed at placement time
// and never adjusted by later bankroll changes.
type Bet struct {
	ID         uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	GameID     uuid.UUID  `db:"game_id" json:"game_id" validate:"required,uuid4"`
	EdgeID     *uuid.UUID `db:"edge_id" json:"edge_id"`
	Side       Side       `db:"side" json:"side" validate:"required,oneof=home away"`
	Stake      float64    `db:"stake" json:"stake" validate:"required,gt=0"`
	Odds       float64    `db:"odds" json:"odds" validate:"required,gt=1"`
	Book       string     `db:"book" json:"book"`
	ModelProb  float64    `db:"model_prob" json:"model_prob"`
	MarketProb float64    `db:"market_prob" json:"market_prob"`
	Edge       float64    `db:"edge" json:"edge"`
	EV         float64    `db:"ev" json:"ev"`
	Outcome    BetOutcome `db:"outcome" json:"outcome" validate:"required"`
	Payout     *float64   `db:"payout" json:"payout"`
	ProfitLoss *float64   `db:"profit_loss" json:"profit_loss"`
	// ClosingOdds is the last pre-start price for the bet side, recorded
	// for closing-line-value analysis.
	ClosingOdds *float64   `db:"closing_odds" json:"closing_odds"`
	PlacedAt    time.Time  `db:"placed_at" json:"placed_at" validate:"required"`
	SettledAt   *time.Time `db:"settled_at" json:"settled_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// IsSettled reports whether the bet has reached a terminal outcome
func (b *Bet) IsSettled() bool {
	return b.Outcome == BetOutcomeWon || b.Outcome == BetOutcomeLost || b.Outcome == BetOutcomeVoid
}

// Settle applies the game result to the bet and returns the bankroll delta.
// A void game refunds the stake.
func (b *Bet) Settle(game *Game, at time.Time) float64 {
	if b.IsSettled() {
		return 0
	}
	if game.Status == GameStatusVoid {
		b.Outcome = BetOutcomeVoid
		pnl := 0.0
		payout := b.Stake
		b.ProfitLoss = &pnl
		b.Payout = &payout
		b.SettledAt = &at
		return 0
	}

	winner, ok := game.WinningSide()
	if !ok {
		return 0
	}

	var pnl, payout float64
	if winner == b.Side {
		b.Outcome = BetOutcomeWon
		pnl = (b.Odds - 1.0) * b.Stake
		payout = b.Odds * b.Stake
	} else {
		b.Outcome = BetOutcomeLost
		pnl = -b.Stake
		payout = 0
	}
	b.ProfitLoss = &pnl
	b.Payout = &payout
	b.SettledAt = &at
	return pnl
}

// BeatClosing reports whether the bet price beat the closing line
func (b *Bet) BeatClosing() (bool, bool) {
	if b.ClosingOdds == nil {
		return false, false
	}
	return b.Odds > *b.ClosingOdds, true
}
