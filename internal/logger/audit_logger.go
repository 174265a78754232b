// Package logger provides audit logging.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/courtside/internal/models"
)

// AuditLogger provides a dedicated audit trail for bet lifecycle events.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// NewFileAuditLogger creates an audit logger that appends JSON lines to
// the file at path, creating parent directories as needed. The file is
// opened append-only so restarts extend the trail rather than truncate
// it.
func NewFileAuditLogger(path string) (*AuditLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	fileLogger := logrus.New()
	fileLogger.SetOutput(file)
	fileLogger.SetFormatter(&logrus.JSONFormatter{})
	fileLogger.SetLevel(logrus.InfoLevel)

	return &AuditLogger{
		Entry: fileLogger.WithField("component", "audit"),
	}, nil
}

// LogBetPlacement logs a bet placement event.
func (al *AuditLogger) LogBetPlacement(bet *models.Bet, balance float64, paperTrading bool) {
	al.WithFields(logrus.Fields{
		"bet_id":        bet.ID.String(),
		"game_id":       bet.GameID.String(),
		"side":          bet.Side,
		"stake":         bet.Stake,
		"odds":          bet.Odds,
		"book":          bet.Book,
		"edge":          bet.Edge,
		"ev":            bet.EV,
		"balance":       balance,
		"timestamp":     bet.PlacedAt.Unix(),
		"paper_trading": paperTrading,
	}).Info("Bet placement recorded")
}

// LogBetSettlement logs a bet settlement event.
func (al *AuditLogger) LogBetSettlement(bet *models.Bet, pnl, balance float64) {
	al.WithFields(logrus.Fields{
		"bet_id":  bet.ID.String(),
		"game_id": bet.GameID.String(),
		"outcome": bet.Outcome,
		"pnl":     pnl,
		"balance": balance,
	}).Info("Bet settlement recorded")
}

// LogBankrollChange logs an entry appended to the bankroll ledger.
func (al *AuditLogger) LogBankrollChange(state models.BankrollState) {
	al.WithFields(logrus.Fields{
		"balance":  state.Balance,
		"peak":     state.Peak,
		"drawdown": state.Drawdown,
		"change":   state.Change,
		"reason":   state.Reason,
		"time":     state.Time.Format(time.RFC3339),
	}).Info("Bankroll change recorded")
}
