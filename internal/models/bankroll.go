package models

import "time"

// BankrollState is one entry in the append-only bankroll ledger. Drawdown
// is expressed as a fraction of the running peak.
type BankrollState struct {
	Time     time.Time `db:"time" json:"time" validate:"required"`
	Balance  float64   `db:"balance" json:"balance" validate:"gte=0"`
	Peak     float64   `db:"peak" json:"peak" validate:"gte=0"`
	Drawdown float64   `db:"drawdown" json:"drawdown" validate:"gte=0"`
	Change   float64   `db:"change" json:"change"`
	Reason   string    `db:"reason" json:"reason"`
}
