package elo

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/models"
)

func testEloConfig() config.EloConfig {
	return config.EloConfig{
		KFactor:       20,
		HomeAdvantage: 70,
		InitialRating: 1500,
		UseMOVWeight:  true,
		UseRestDays:   true,
		RestPenalty:   25,
	}
}

func finalGame(homeTeam, awayTeam uuid.UUID, start time.Time, homeScore, awayScore int) *models.Game {
	return &models.Game{
		ID:         uuid.New(),
		StartTime:  start,
		HomeTeamID: homeTeam,
		AwayTeamID: awayTeam,
		Status:     models.GameStatusFinal,
		HomeScore:  &homeScore,
		AwayScore:  &awayScore,
	}
}

func TestPredictEqualRatings(t *testing.T) {
	model := NewModel(testEloConfig())
	pred := model.Predict(1500, 1500, 3, 3)

	// Equal ratings plus home advantage puts the home side above 0.5
	if pred.HomeProb <= 0.5 {
		t.Fatalf("expected home edge from home advantage, got %.4f", pred.HomeProb)
	}
	if math.Abs(pred.HomeProb+pred.AwayProb-1.0) > 1e-12 {
		t.Fatalf("probabilities do not sum to 1")
	}
	// 70 points of Elo gives the home side roughly 0.60
	if math.Abs(pred.HomeProb-0.5994) > 0.001 {
		t.Fatalf("expected home prob near 0.5994, got %.4f", pred.HomeProb)
	}
}

func TestPredictMonotoneInRating(t *testing.T) {
	model := NewModel(testEloConfig())
	low := model.Predict(1400, 1500, 3, 3)
	mid := model.Predict(1500, 1500, 3, 3)
	high := model.Predict(1600, 1500, 3, 3)

	if !(low.HomeProb < mid.HomeProb && mid.HomeProb < high.HomeProb) {
		t.Fatalf("home prob should increase with home rating: %.4f %.4f %.4f",
			low.HomeProb, mid.HomeProb, high.HomeProb)
	}
}

func TestRestPenaltyOnlyOneDay(t *testing.T) {
	model := NewModel(testEloConfig())
	rested := model.Predict(1500, 1500, 3, 3)
	shortRest := model.Predict(1500, 1500, 1, 3)
	backToBack := model.Predict(1500, 1500, 0, 3)
	longRest := model.Predict(1500, 1500, 5, 3)

	if shortRest.HomeProb >= rested.HomeProb {
		t.Fatalf("one rest day should reduce home prob: %.4f vs %.4f", shortRest.HomeProb, rested.HomeProb)
	}
	if backToBack.HomeProb != rested.HomeProb {
		t.Fatalf("zero rest days should carry no penalty")
	}
	if longRest.HomeProb != rested.HomeProb {
		t.Fatalf("long rest should carry no penalty")
	}
	if shortRest.AdjustedHome != rested.AdjustedHome-25 {
		t.Fatalf("expected 25 point penalty, got %.1f", rested.AdjustedHome-shortRest.AdjustedHome)
	}
}

func TestRestDisabled(t *testing.T) {
	cfg := testEloConfig()
	cfg.UseRestDays = false
	model := NewModel(cfg)

	if model.Predict(1500, 1500, 1, 1).HomeProb != model.Predict(1500, 1500, 3, 3).HomeProb {
		t.Fatalf("rest days should be ignored when disabled")
	}
}

func TestProcessZeroSum(t *testing.T) {
	model := NewModel(testEloConfig())
	game := finalGame(uuid.New(), uuid.New(), time.Now(), 110, 102)

	update, ok := model.Process(game, 1500, 1500, 3, 3)
	if !ok {
		t.Fatalf("expected an update for a final game")
	}
	if update.HomeDelta+update.AwayDelta != 0 {
		t.Fatalf("update is not zero-sum: %+v", update)
	}
	if update.HomeDelta <= 0 {
		t.Fatalf("home win should raise the home rating, got %.4f", update.HomeDelta)
	}
}

func TestProcessSkipsNonFinal(t *testing.T) {
	model := NewModel(testEloConfig())
	game := &models.Game{
		ID:         uuid.New(),
		StartTime:  time.Now(),
		HomeTeamID: uuid.New(),
		AwayTeamID: uuid.New(),
		Status:     models.GameStatusScheduled,
	}
	if _, ok := model.Process(game, 1500, 1500, 3, 3); ok {
		t.Fatalf("scheduled game should not produce an update")
	}
}

func TestUpsetMovesMoreThanChalk(t *testing.T) {
	model := NewModel(testEloConfig())
	now := time.Now()

	// Underdog home team wins by 15
	upset := finalGame(uuid.New(), uuid.New(), now, 115, 100)
	upsetUpdate, _ := model.Process(upset, 1400, 1600, 3, 3)

	// Heavy favorite home team wins by 15
	chalk := finalGame(uuid.New(), uuid.New(), now, 115, 100)
	chalkUpdate, _ := model.Process(chalk, 1600, 1400, 3, 3)

	if upsetUpdate.HomeDelta <= chalkUpdate.HomeDelta {
		t.Fatalf("upset should move ratings more: upset=%.4f chalk=%.4f",
			upsetUpdate.HomeDelta, chalkUpdate.HomeDelta)
	}
	if upsetUpdate.MOVMultiplier <= chalkUpdate.MOVMultiplier {
		t.Fatalf("favorite win should dampen the MOV multiplier")
	}
}

func TestMOVMultiplierCapped(t *testing.T) {
	model := NewModel(testEloConfig())
	game := finalGame(uuid.New(), uuid.New(), time.Now(), 160, 80)

	update, _ := model.Process(game, 1400, 1600, 3, 3)
	if update.MOVMultiplier > maxMOVMultiplier {
		t.Fatalf("MOV multiplier %.4f exceeds cap", update.MOVMultiplier)
	}
}

func TestRatingsSeedAndApply(t *testing.T) {
	book := NewRatings(1500)
	teamID := uuid.New()

	if got := book.Get(teamID); got != 1500 {
		t.Fatalf("unseen team should get the initial rating, got %.1f", got)
	}

	gameTime := time.Date(2024, 11, 1, 19, 0, 0, 0, time.UTC)
	book.Apply(teamID, 12.5, gameTime)
	if got := book.Get(teamID); got != 1512.5 {
		t.Fatalf("expected 1512.5 after apply, got %.1f", got)
	}

	last, ok := book.LastGame(teamID)
	if !ok || !last.Equal(gameTime) {
		t.Fatalf("last game time not recorded")
	}
}

func TestRestDays(t *testing.T) {
	book := NewRatings(1500)
	teamID := uuid.New()
	gameTime := time.Date(2024, 11, 1, 19, 0, 0, 0, time.UTC)

	if got := book.RestDays(teamID, gameTime, 3); got != 3 {
		t.Fatalf("unknown team should use the default, got %d", got)
	}

	book.Apply(teamID, 0, gameTime)
	next := gameTime.AddDate(0, 0, 1).Add(2 * time.Hour)
	if got := book.RestDays(teamID, next, 3); got != 1 {
		t.Fatalf("expected 1 rest day, got %d", got)
	}
}

func TestSnapshotSorted(t *testing.T) {
	book := NewRatings(1500)
	for i := 0; i < 5; i++ {
		book.Set(uuid.New(), 1500+float64(i))
	}

	snap := book.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(snap))
	}
	for i := 1; i < len(snap); i++ {
		if snap[i-1].TeamID.String() > snap[i].TeamID.String() {
			t.Fatalf("snapshot not sorted by team id")
		}
	}
}
