package backtest

import (
	"time"

	"github.com/yourusername/courtside/internal/models"
)

// RunStatus is the lifecycle state of a simulation run
type RunStatus string

const (
	StatusNotStarted RunStatus = "not_started"
	StatusRunning    RunStatus = "running"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// SimState tracks the simulation's bankroll, ledger, and bet history. A
// failed run retains everything accumulated up to the failure so the
// partial ledger can still be inspected.
type SimState struct {
	Status          RunStatus
	CurrentBankroll float64
	PeakBankroll    float64
	Bets            []*models.Bet
	Ledger          []models.BankrollState
	EquityCurve     EquityCurve
}

// NewSimState initializes state with the opening bankroll as the first
// ledger entry.
func NewSimState(initialBankroll float64, at time.Time) *SimState {
	state := &SimState{
		Status:          StatusNotStarted,
		CurrentBankroll: initialBankroll,
		PeakBankroll:    initialBankroll,
		Bets:            []*models.Bet{},
	}
	state.appendLedger(at, 0, "initial_bankroll")
	return state
}

// PlaceBet records a placed bet. Placement does not move the balance;
// the ledger entry marks exposure for audit purposes.
func (s *SimState) PlaceBet(bet *models.Bet) {
	s.Bets = append(s.Bets, bet)
	s.appendLedger(bet.PlacedAt, 0, "bet_placed")
}

// SettleBet applies a settled bet's profit or loss to the bankroll and
// records the resulting state.
func (s *SimState) SettleBet(bet *models.Bet, pnl float64, at time.Time) {
	s.CurrentBankroll += pnl
	if s.CurrentBankroll > s.PeakBankroll {
		s.PeakBankroll = s.CurrentBankroll
	}
	s.appendLedger(at, pnl, "bet_settled")
}

// Drawdown returns the current peak-to-trough drawdown as a fraction of
// the running peak.
func (s *SimState) Drawdown() float64 {
	if s.PeakBankroll == 0 {
		return 0
	}
	dd := (s.PeakBankroll - s.CurrentBankroll) / s.PeakBankroll
	if dd < 0 {
		return 0
	}
	return dd
}

// PendingBets returns placed bets that have not settled, in placement
// order.
func (s *SimState) PendingBets() []*models.Bet {
	var pending []*models.Bet
	for _, bet := range s.Bets {
		if !bet.IsSettled() {
			pending = append(pending, bet)
		}
	}
	return pending
}

func (s *SimState) appendLedger(at time.Time, change float64, reason string) {
	entry := models.BankrollState{
		Time:     at,
		Balance:  s.CurrentBankroll,
		Peak:     s.PeakBankroll,
		Drawdown: s.Drawdown(),
		Change:   change,
		Reason:   reason,
	}
	s.Ledger = append(s.Ledger, entry)
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:     at,
		Value:    s.CurrentBankroll,
		Drawdown: entry.Drawdown,
	})
}
