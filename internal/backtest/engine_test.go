package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/devig"
	"github.com/yourusername/courtside/internal/edge"
	"github.com/yourusername/courtside/internal/elo"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/staking"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testEngine(t *testing.T, cfg SimConfig) *Engine {
	t.Helper()

	model := elo.NewModel(config.EloConfig{
		KFactor:       20,
		HomeAdvantage: 70,
		InitialRating: 1500,
		UseMOVWeight:  true,
		UseRestDays:   true,
		RestPenalty:   25,
	})
	detector := edge.NewDetector(
		config.EdgeConfig{MinEdge: 0.04, Shrinkage: 0},
		devig.New(devig.MethodMultiplicative),
		quietLogger(),
	)
	policy, err := staking.NewPolicy(config.StakingConfig{
		BaseFraction:     0.005,
		MaxFraction:      0.02,
		ExhaustionPolicy: "clamp",
	})
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}

	engine, err := NewEngine(cfg, model, nil, detector, policy, nil, quietLogger())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func simWindow() SimConfig {
	start := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	return SimConfig{
		StartDate:       start,
		EndDate:         start.AddDate(0, 1, 0),
		InitialBankroll: 10000,
	}
}

func windowGame(start time.Time, homeScore, awayScore int) *models.Game {
	home, away := homeScore, awayScore
	return &models.Game{
		ID:         uuid.New(),
		StartTime:  start,
		HomeTeamID: uuid.New(),
		AwayTeamID: uuid.New(),
		Status:     models.GameStatusFinal,
		HomeScore:  &home,
		AwayScore:  &away,
	}
}

// valueQuotes prices the home side well above the model's fair price so
// the detector always fires on home.
func valueQuotes(gameID uuid.UUID, start time.Time) models.QuoteSeries {
	return models.QuoteSeries{{
		ID:          uuid.New(),
		GameID:      gameID,
		Book:        "pinnacle",
		HomeDecimal: 2.05,
		AwayDecimal: 1.91,
		CapturedAt:  start.Add(-time.Hour),
	}}
}

func TestReplayEmptyWindow(t *testing.T) {
	cfg := simWindow()
	engine := testEngine(t, cfg)
	book := elo.NewRatings(1500)

	state, err := engine.Replay(context.Background(), book, nil, nil)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if state.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", state.Status)
	}
	if state.CurrentBankroll != cfg.InitialBankroll {
		t.Fatalf("empty window must not move the bankroll, got %.2f", state.CurrentBankroll)
	}
	if len(state.Bets) != 0 {
		t.Fatalf("empty window must place no bets")
	}
}

func TestReplayPlacesAndSettlesBet(t *testing.T) {
	cfg := simWindow()
	engine := testEngine(t, cfg)
	book := elo.NewRatings(1500)

	game := windowGame(cfg.StartDate.Add(24*time.Hour), 110, 100)
	quotes := map[uuid.UUID]models.QuoteSeries{game.ID: valueQuotes(game.ID, game.StartTime)}

	state, err := engine.Replay(context.Background(), book, []*models.Game{game}, quotes)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(state.Bets) != 1 {
		t.Fatalf("expected exactly one bet, got %d", len(state.Bets))
	}

	bet := state.Bets[0]
	if bet.Side != models.SideHome {
		t.Fatalf("expected a home bet, got %s", bet.Side)
	}
	if bet.Stake != 50.00 {
		t.Fatalf("expected a 50.00 stake, got %.2f", bet.Stake)
	}
	if bet.Outcome != models.BetOutcomeWon {
		t.Fatalf("home win should settle the bet won, got %s", bet.Outcome)
	}

	// Win at 2.05 pays 1.05 * 50 = 52.50 on top of the stake
	want := cfg.InitialBankroll + 52.50
	if state.CurrentBankroll != want {
		t.Fatalf("expected bankroll %.2f, got %.2f", want, state.CurrentBankroll)
	}
}

func TestReplayBalanceMovesOnlyAtSettlement(t *testing.T) {
	cfg := simWindow()
	engine := testEngine(t, cfg)
	book := elo.NewRatings(1500)

	game := windowGame(cfg.StartDate.Add(24*time.Hour), 100, 110)
	quotes := map[uuid.UUID]models.QuoteSeries{game.ID: valueQuotes(game.ID, game.StartTime)}

	state, err := engine.Replay(context.Background(), book, []*models.Game{game}, quotes)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	var placedBalance, settledBalance float64
	for _, entry := range state.Ledger {
		switch entry.Reason {
		case "bet_placed":
			placedBalance = entry.Balance
			if entry.Change != 0 {
				t.Fatalf("placement entry must carry zero change, got %.2f", entry.Change)
			}
		case "bet_settled":
			settledBalance = entry.Balance
		}
	}
	if placedBalance != cfg.InitialBankroll {
		t.Fatalf("balance moved at placement: %.2f", placedBalance)
	}
	if settledBalance != cfg.InitialBankroll-50.00 {
		t.Fatalf("expected %.2f after the loss, got %.2f", cfg.InitialBankroll-50.00, settledBalance)
	}
}

func TestReplayDeterministic(t *testing.T) {
	cfg := simWindow()
	engine := testEngine(t, cfg)

	games := []*models.Game{
		windowGame(cfg.StartDate.Add(24*time.Hour), 110, 100),
		windowGame(cfg.StartDate.Add(48*time.Hour), 95, 104),
		windowGame(cfg.StartDate.Add(72*time.Hour), 121, 119),
	}
	quotes := make(map[uuid.UUID]models.QuoteSeries, len(games))
	for _, game := range games {
		quotes[game.ID] = valueQuotes(game.ID, game.StartTime)
	}

	run := func() *SimState {
		state, err := engine.Replay(context.Background(), elo.NewRatings(1500), games, quotes)
		if err != nil {
			t.Fatalf("Replay failed: %v", err)
		}
		return state
	}

	first := run()
	second := run()

	if first.CurrentBankroll != second.CurrentBankroll {
		t.Fatalf("final bankroll differs: %.4f vs %.4f", first.CurrentBankroll, second.CurrentBankroll)
	}
	if len(first.Bets) != len(second.Bets) {
		t.Fatalf("bet counts differ: %d vs %d", len(first.Bets), len(second.Bets))
	}
	for i := range first.Bets {
		a, b := first.Bets[i], second.Bets[i]
		if a.GameID != b.GameID || a.Side != b.Side || a.Stake != b.Stake || a.Odds != b.Odds {
			t.Fatalf("bet %d differs between runs", i)
		}
	}
	if len(first.Ledger) != len(second.Ledger) {
		t.Fatalf("ledger lengths differ: %d vs %d", len(first.Ledger), len(second.Ledger))
	}
}

func TestReplayChronologyViolation(t *testing.T) {
	cfg := simWindow()
	engine := testEngine(t, cfg)

	late := windowGame(cfg.StartDate.Add(48*time.Hour), 110, 100)
	early := windowGame(cfg.StartDate.Add(24*time.Hour), 95, 104)
	quotes := map[uuid.UUID]models.QuoteSeries{
		late.ID:  valueQuotes(late.ID, late.StartTime),
		early.ID: valueQuotes(early.ID, early.StartTime),
	}

	state, err := engine.Replay(context.Background(), elo.NewRatings(1500), []*models.Game{late, early}, quotes)
	if !errors.Is(err, models.ErrChronologyViolation) {
		t.Fatalf("expected ErrChronologyViolation, got %v", err)
	}
	if state.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", state.Status)
	}
	// The partial ledger survives: opening entry plus the first game's bet
	if len(state.Ledger) < 2 {
		t.Fatalf("partial ledger lost, entries: %d", len(state.Ledger))
	}
}

func TestReplayNoQuotesNoBet(t *testing.T) {
	cfg := simWindow()
	engine := testEngine(t, cfg)

	game := windowGame(cfg.StartDate.Add(24*time.Hour), 110, 100)
	state, err := engine.Replay(context.Background(), elo.NewRatings(1500), []*models.Game{game}, nil)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(state.Bets) != 0 {
		t.Fatalf("game without quotes must not be bet")
	}
	if state.CurrentBankroll != cfg.InitialBankroll {
		t.Fatalf("bankroll moved without bets")
	}
}
