package database

import (
	"fmt"
	"strings"
	"testing"

	"github.com/yourusername/courtside/internal/models"
)

// Status and outcome enums are stored as written by the Go constants,
// so the schema defaults must use the same spelling or freshly
// defaulted rows become invisible to the repository queries.
func TestSchemaDefaultsMatchModelConstants(t *testing.T) {
	gamesDDL := schemaStatement(t, "CREATE TABLE IF NOT EXISTS games")
	wantStatus := fmt.Sprintf("DEFAULT '%s'", models.GameStatusScheduled)
	if !strings.Contains(gamesDDL, wantStatus) {
		t.Fatalf("games.status default does not match %q:\n%s", models.GameStatusScheduled, gamesDDL)
	}

	betsDDL := schemaStatement(t, "CREATE TABLE IF NOT EXISTS bets")
	wantOutcome := fmt.Sprintf("DEFAULT '%s'", models.BetOutcomePending)
	if !strings.Contains(betsDDL, wantOutcome) {
		t.Fatalf("bets.outcome default does not match %q:\n%s", models.BetOutcomePending, betsDDL)
	}
}

func TestSchemaHasNoStaleStatusSpellings(t *testing.T) {
	for _, stmt := range schemaStatements {
		for _, stale := range []string{"'scheduled'", "'final'", "'void'"} {
			if strings.Contains(stmt, stale) {
				t.Fatalf("schema statement carries stale status literal %s:\n%s", stale, stmt)
			}
		}
	}
}

func schemaStatement(t *testing.T, prefix string) string {
	t.Helper()
	for _, stmt := range schemaStatements {
		if strings.HasPrefix(strings.TrimSpace(stmt), prefix) {
			return stmt
		}
	}
	t.Fatalf("no schema statement starting with %q", prefix)
	return ""
}
