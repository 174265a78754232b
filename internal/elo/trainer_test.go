package elo

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestTrainDeterministic(t *testing.T) {
	cfg := testEloConfig()
	model := NewModel(cfg)
	trainer := NewTrainer(model, cfg, testLogger())

	teamA, teamB, teamC := uuid.New(), uuid.New(), uuid.New()
	base := time.Date(2024, 11, 1, 19, 0, 0, 0, time.UTC)
	games := []*models.Game{
		finalGame(teamA, teamB, base, 108, 100),
		finalGame(teamB, teamC, base.AddDate(0, 0, 2), 95, 104),
		finalGame(teamC, teamA, base.AddDate(0, 0, 4), 120, 110),
	}
	horizon := base.AddDate(0, 0, 30)

	bookOne := NewRatings(cfg.InitialRating)
	resultOne, err := trainer.Train(bookOne, games, horizon)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	// Same games in reverse input order must produce identical ratings
	reversed := []*models.Game{games[2], games[1], games[0]}
	bookTwo := NewRatings(cfg.InitialRating)
	resultTwo, err := trainer.Train(bookTwo, reversed, horizon)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if resultOne.GamesProcessed != 3 || resultTwo.GamesProcessed != 3 {
		t.Fatalf("expected 3 games processed, got %d and %d", resultOne.GamesProcessed, resultTwo.GamesProcessed)
	}
	for _, id := range []uuid.UUID{teamA, teamB, teamC} {
		if bookOne.Get(id) != bookTwo.Get(id) {
			t.Fatalf("training not deterministic for %s: %.6f vs %.6f", id, bookOne.Get(id), bookTwo.Get(id))
		}
	}
}

func TestTrainSkipsNonFinalAndPostHorizon(t *testing.T) {
	cfg := testEloConfig()
	trainer := NewTrainer(NewModel(cfg), cfg, testLogger())

	teamA, teamB := uuid.New(), uuid.New()
	base := time.Date(2024, 11, 1, 19, 0, 0, 0, time.UTC)
	scheduled := &models.Game{
		ID: uuid.New(), StartTime: base,
		HomeTeamID: teamA, AwayTeamID: teamB,
		Status: models.GameStatusScheduled,
	}
	late := finalGame(teamA, teamB, base.AddDate(0, 0, 10), 100, 90)

	book := NewRatings(cfg.InitialRating)
	result, err := trainer.Train(book, []*models.Game{scheduled, late}, base.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if result.GamesProcessed != 0 || result.GamesSkipped != 2 {
		t.Fatalf("expected 0 processed and 2 skipped, got %+v", result)
	}
	if book.Get(teamA) != cfg.InitialRating {
		t.Fatalf("skipped games should not move ratings")
	}
}

func TestTrainRecencyWeight(t *testing.T) {
	cfg := testEloConfig()
	cfg.UseRecency = true
	cfg.RecencyDays = 14
	cfg.RecencyWeight = 1.5
	model := NewModel(cfg)

	teamA, teamB := uuid.New(), uuid.New()
	horizon := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	recent := finalGame(teamA, teamB, horizon.AddDate(0, 0, -3), 112, 101)

	weighted := NewTrainer(model, cfg, testLogger())
	weightedBook := NewRatings(cfg.InitialRating)
	if _, err := weighted.Train(weightedBook, []*models.Game{recent}, horizon); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	plainCfg := cfg
	plainCfg.UseRecency = false
	plain := NewTrainer(model, plainCfg, testLogger())
	plainBook := NewRatings(cfg.InitialRating)
	if _, err := plain.Train(plainBook, []*models.Game{recent}, horizon); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	weightedDelta := weightedBook.Get(teamA) - cfg.InitialRating
	plainDelta := plainBook.Get(teamA) - cfg.InitialRating
	if math.Abs(weightedDelta-1.5*plainDelta) > 1e-9 {
		t.Fatalf("recency weight not applied: weighted=%.6f plain=%.6f", weightedDelta, plainDelta)
	}
}

func TestWarmStart(t *testing.T) {
	cfg := testEloConfig()
	trainer := NewTrainer(NewModel(cfg), cfg, testLogger())

	celtics := uuid.New()
	byName := map[string]uuid.UUID{"Boston Celtics": celtics}
	resolve := func(name string) (uuid.UUID, bool) {
		id, ok := byName[name]
		return id, ok
	}

	book := NewRatings(cfg.InitialRating)
	seeded := trainer.WarmStart(book, map[string]float64{
		"Boston Celtics": 1612,
		"Unknown Team":   1480,
	}, resolve)

	if seeded != 1 {
		t.Fatalf("expected 1 team seeded, got %d", seeded)
	}
	if book.Get(celtics) != 1612 {
		t.Fatalf("warm-start rating not applied, got %.1f", book.Get(celtics))
	}
}
