package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/courtside/internal/models"
)

func TestFileAuditLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "audit.log")

	audit, err := NewFileAuditLogger(path)
	if err != nil {
		t.Fatalf("NewFileAuditLogger() error = %v", err)
	}

	bet := &models.Bet{
		ID:       uuid.New(),
		GameID:   uuid.New(),
		Side:     models.SideHome,
		Stake:    50.0,
		Odds:     2.05,
		Book:     "pinnacle",
		Edge:     0.08,
		EV:       0.146,
		Outcome:  models.BetOutcomePending,
		PlacedAt: time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC),
	}
	audit.LogBetPlacement(bet, 10000.0, true)

	lines := readAuditLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 audit line, got %d", len(lines))
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("audit line is not valid JSON: %v", err)
	}
	if entry["bet_id"] != bet.ID.String() {
		t.Fatalf("expected bet_id %s, got %v", bet.ID, entry["bet_id"])
	}
	if entry["component"] != "audit" {
		t.Fatalf("expected audit component tag, got %v", entry["component"])
	}
	if entry["paper_trading"] != true {
		t.Fatalf("expected paper_trading flag, got %v", entry["paper_trading"])
	}
}

func TestFileAuditLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	first, err := NewFileAuditLogger(path)
	if err != nil {
		t.Fatalf("NewFileAuditLogger() error = %v", err)
	}
	first.LogBankrollChange(models.BankrollState{
		Time:    time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC),
		Balance: 10000,
		Peak:    10000,
		Reason:  "initial_bankroll",
	})

	// A restart reopens the same file and must extend the trail
	second, err := NewFileAuditLogger(path)
	if err != nil {
		t.Fatalf("NewFileAuditLogger() reopen error = %v", err)
	}
	second.LogBankrollChange(models.BankrollState{
		Time:    time.Date(2024, 11, 6, 0, 0, 0, 0, time.UTC),
		Balance: 10052.50,
		Peak:    10052.50,
		Change:  52.50,
		Reason:  "bet_settled",
	})

	lines := readAuditLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines after reopen, got %d", len(lines))
	}
}

func readAuditLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to read audit log: %v", err)
	}
	return lines
}
