package service

import (
	"testing"
	"time"
)

func TestNormalizeTeamName(t *testing.T) {
	cases := map[string]string{
		"Boston Celtics":       "Boston Celtics",
		"boston celtics":       "Boston Celtics",
		"  Boston Celtics  ":   "Boston Celtics",
		"LA Clippers":          "Los Angeles Clippers",
		"Los Angeles Clippers": "Los Angeles Clippers",
		"PHILADELPHIA 76ERS":   "Philadelphia 76ers",
		// Unknown names pass through trimmed
		"Seattle SuperSonics": "Seattle SuperSonics",
	}
	for input, want := range cases {
		if got := NormalizeTeamName(input); got != want {
			t.Fatalf("NormalizeTeamName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestGameIDDeterministic(t *testing.T) {
	tipoff := time.Date(2024, 11, 1, 19, 30, 0, 0, time.UTC)

	a := GameID("Boston Celtics", "New York Knicks", tipoff)
	b := GameID("boston celtics", "new york knicks", tipoff.Add(2*time.Hour))
	if a != b {
		t.Fatalf("same matchup on the same day must share an ID")
	}

	nextDay := GameID("Boston Celtics", "New York Knicks", tipoff.AddDate(0, 0, 1))
	if a == nextDay {
		t.Fatalf("different days must not collide")
	}

	swapped := GameID("New York Knicks", "Boston Celtics", tipoff)
	if a == swapped {
		t.Fatalf("home and away are not interchangeable")
	}
}
