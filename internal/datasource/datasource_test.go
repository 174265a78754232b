package datasource

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseGameTime(t *testing.T) {
	exact, err := parseGameTime("2024-11-01T23:30:00Z", "2024-11-01")
	if err != nil {
		t.Fatalf("parseGameTime failed: %v", err)
	}
	if exact.Hour() != 23 || exact.Minute() != 30 {
		t.Fatalf("exact tip-off not used: %s", exact)
	}

	fallback, err := parseGameTime("", "2024-11-01")
	if err != nil {
		t.Fatalf("parseGameTime failed: %v", err)
	}
	if !fallback.Equal(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected midnight UTC fallback, got %s", fallback)
	}

	if _, err := parseGameTime("", "garbage"); err == nil {
		t.Fatalf("unparseable date should fail")
	}
}

func TestBallDontLieNormalize(t *testing.T) {
	s := &BallDontLieSource{}
	fetchedAt := time.Now().UTC()

	raw := ballDontLieGame{
		ID:        12345,
		Status:    "Final",
		Date:      "2024-11-01",
		HomeScore: 112,
		AwayScore: 104,
	}
	raw.HomeTeam.FullName = "Boston Celtics"
	raw.AwayTeam.FullName = "New York Knicks"

	game, err := s.normalize(raw, fetchedAt)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if game.Status != "final" {
		t.Fatalf("expected final status, got %s", game.Status)
	}
	if game.HomeScore == nil || *game.HomeScore != 112 {
		t.Fatalf("home score not carried")
	}
	if game.SourceID != "12345" {
		t.Fatalf("wrong source id: %s", game.SourceID)
	}

	raw.Status = "7:30 pm ET"
	scheduled, err := s.normalize(raw, fetchedAt)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if scheduled.Status != "scheduled" || scheduled.HomeScore != nil {
		t.Fatalf("non-final game should stay scheduled without scores")
	}
}

func TestExtractMoneyline(t *testing.T) {
	payload := `{
		"id": "evt1",
		"commence_time": "2024-11-01T23:30:00Z",
		"home_team": "Boston Celtics",
		"away_team": "New York Knicks",
		"bookmakers": [{
			"key": "pinnacle",
			"last_update": "2024-11-01T20:00:00Z",
			"markets": [{
				"key": "h2h",
				"outcomes": [
					{"name": "Boston Celtics", "price": 1.91},
					{"name": "New York Knicks", "price": 2.05}
				]
			}]
		}, {
			"key": "draftkings",
			"last_update": "2024-11-01T20:05:00Z",
			"markets": [{
				"key": "spreads",
				"outcomes": [
					{"name": "Boston Celtics", "price": 1.95},
					{"name": "New York Knicks", "price": 1.95}
				]
			}]
		}]
	}`

	var event oddsAPIEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		t.Fatalf("failed to parse payload: %v", err)
	}

	quote, ok := extractMoneyline(event, "pinnacle", event.Bookmakers[0].LastUpdate)
	if !ok {
		t.Fatalf("expected a moneyline quote")
	}
	if quote.Book != "pinnacle" {
		t.Fatalf("wrong book: %s", quote.Book)
	}
	if quote.HomeDecimal.String() != "1.91" || quote.AwayDecimal.String() != "2.05" {
		t.Fatalf("wrong prices: %s / %s", quote.HomeDecimal, quote.AwayDecimal)
	}

	// A book carrying only spreads has no usable moneyline
	if _, ok := extractMoneyline(event, "draftkings", event.Bookmakers[1].LastUpdate); ok {
		t.Fatalf("spreads-only book should be skipped")
	}
}

func TestSourceError(t *testing.T) {
	inner := ErrRateLimitExceeded
	err := NewSourceError("oddsapi", ErrCodeRateLimitExceeded, "throttled", inner)

	if err.Error() == "" {
		t.Fatalf("expected a message")
	}
	if got := err.Unwrap(); got != inner {
		t.Fatalf("unwrap should return the inner error")
	}
}
