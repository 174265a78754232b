package papertrade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/devig"
	"github.com/yourusername/courtside/internal/edge"
	"github.com/yourusername/courtside/internal/elo"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/staking"
)

type fakeTeamRepo struct{ teams map[uuid.UUID]*models.Team }

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error { return nil }
func (r *fakeTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return team, nil
}
func (r *fakeTeamRepo) GetByName(ctx context.Context, name string) (*models.Team, error) {
	for _, team := range r.teams {
		if team.Name == name {
			return team, nil
		}
	}
	return nil, models.ErrNotFound
}
func (r *fakeTeamRepo) GetAll(ctx context.Context) ([]*models.Team, error) {
	var all []*models.Team
	for _, team := range r.teams {
		all = append(all, team)
	}
	return all, nil
}
func (r *fakeTeamRepo) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, lastGameAt time.Time) error {
	team, ok := r.teams[id]
	if !ok {
		return models.ErrNotFound
	}
	team.CurrentRating = rating
	at := lastGameAt
	team.LastGameAt = &at
	return nil
}

type fakeGameRepo struct{ games []*models.Game }

func (r *fakeGameRepo) Create(ctx context.Context, game *models.Game) error { return nil }
func (r *fakeGameRepo) Upsert(ctx context.Context, game *models.Game) error { return nil }
func (r *fakeGameRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	for _, game := range r.games {
		if game.ID == id {
			return game, nil
		}
	}
	return nil, models.ErrNotFound
}
func (r *fakeGameRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error) {
	return r.games, nil
}
func (r *fakeGameRepo) GetFinalBefore(ctx context.Context, horizon time.Time) ([]*models.Game, error) {
	var finals []*models.Game
	for _, game := range r.games {
		if game.IsFinal() && game.StartTime.Before(horizon) {
			finals = append(finals, game)
		}
	}
	return finals, nil
}
func (r *fakeGameRepo) GetScheduled(ctx context.Context, from, to time.Time) ([]*models.Game, error) {
	var upcoming []*models.Game
	for _, game := range r.games {
		if game.Status == models.GameStatusScheduled && !game.StartTime.Before(from) && game.StartTime.Before(to) {
			upcoming = append(upcoming, game)
		}
	}
	return upcoming, nil
}
func (r *fakeGameRepo) SetResult(ctx context.Context, id uuid.UUID, homeScore, awayScore int) error {
	return nil
}

type fakeOddsRepo struct{ series map[uuid.UUID]models.QuoteSeries }

func (r *fakeOddsRepo) Create(ctx context.Context, quote *models.OddsQuote) error { return nil }
func (r *fakeOddsRepo) CreateBatch(ctx context.Context, quotes []*models.OddsQuote) error {
	return nil
}
func (r *fakeOddsRepo) GetByGameID(ctx context.Context, gameID uuid.UUID) (models.QuoteSeries, error) {
	return r.series[gameID], nil
}
func (r *fakeOddsRepo) GetLatestBefore(ctx context.Context, gameID uuid.UUID, cutoff time.Time) (models.QuoteSeries, error) {
	return r.series[gameID].LatestPerBook(cutoff), nil
}
func (r *fakeOddsRepo) GetClosing(ctx context.Context, gameID uuid.UUID, book string, startTime time.Time) (*models.OddsQuote, error) {
	for _, quote := range r.series[gameID].LatestPerBook(startTime) {
		if quote.Book == book {
			return quote, nil
		}
	}
	return nil, models.ErrNotFound
}

type fakeEdgeRepo struct{ signals []*models.EdgeSignal }

func (r *fakeEdgeRepo) Create(ctx context.Context, signal *models.EdgeSignal) error {
	r.signals = append(r.signals, signal)
	return nil
}
func (r *fakeEdgeRepo) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.EdgeSignal, error) {
	return nil, nil
}
func (r *fakeEdgeRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.EdgeSignal, error) {
	return nil, nil
}

type fakeBetRepo struct{ bets map[uuid.UUID]*models.Bet }

func (r *fakeBetRepo) Create(ctx context.Context, bet *models.Bet) error {
	if _, exists := r.bets[bet.GameID]; exists {
		return models.ErrDuplicateBet
	}
	r.bets[bet.GameID] = bet
	return nil
}
func (r *fakeBetRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	for _, bet := range r.bets {
		if bet.ID == id {
			return bet, nil
		}
	}
	return nil, models.ErrNotFound
}
func (r *fakeBetRepo) GetByGameID(ctx context.Context, gameID uuid.UUID) (*models.Bet, error) {
	bet, ok := r.bets[gameID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return bet, nil
}
func (r *fakeBetRepo) GetPending(ctx context.Context) ([]*models.Bet, error) {
	var pending []*models.Bet
	for _, bet := range r.bets {
		if !bet.IsSettled() {
			pending = append(pending, bet)
		}
	}
	return pending, nil
}
func (r *fakeBetRepo) GetSettled(ctx context.Context, start, end time.Time) ([]*models.Bet, error) {
	return nil, nil
}
func (r *fakeBetRepo) Settle(ctx context.Context, bet *models.Bet) error { return nil }
func (r *fakeBetRepo) SetClosingOdds(ctx context.Context, id uuid.UUID, closing float64) error {
	return nil
}

type fakeBankrollRepo struct{ entries []*models.BankrollState }

func (r *fakeBankrollRepo) Record(ctx context.Context, state *models.BankrollState) error {
	r.entries = append(r.entries, state)
	return nil
}
func (r *fakeBankrollRepo) GetLatest(ctx context.Context) (*models.BankrollState, error) {
	if len(r.entries) == 0 {
		return nil, models.ErrNotFound
	}
	return r.entries[len(r.entries)-1], nil
}
func (r *fakeBankrollRepo) GetHistory(ctx context.Context, start, end time.Time) ([]*models.BankrollState, error) {
	return r.entries, nil
}

type fixture struct {
	executor *Executor
	teams    *fakeTeamRepo
	games    *fakeGameRepo
	odds     *fakeOddsRepo
	bets     *fakeBetRepo
	bankroll *fakeBankrollRepo
}

func newFixture(t *testing.T, clvEnabled bool) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

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
		log,
	)
	policy, err := staking.NewPolicy(config.StakingConfig{
		BaseFraction:     0.005,
		MaxFraction:      0.02,
		ExhaustionPolicy: "clamp",
	})
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}

	f := &fixture{
		teams:    &fakeTeamRepo{teams: map[uuid.UUID]*models.Team{}},
		games:    &fakeGameRepo{},
		odds:     &fakeOddsRepo{series: map[uuid.UUID]models.QuoteSeries{}},
		bets:     &fakeBetRepo{bets: map[uuid.UUID]*models.Bet{}},
		bankroll: &fakeBankrollRepo{},
	}
	repos := &repository.Repositories{
		Team:     f.teams,
		Game:     f.games,
		Odds:     f.odds,
		Edge:     &fakeEdgeRepo{},
		Bet:      f.bets,
		Bankroll: f.bankroll,
	}

	cfg := config.PaperTradingConfig{Schedule: "0 12 * * *", InitialBankroll: 10000}
	f.executor = NewExecutor(cfg, clvEnabled, model, detector, policy, repos, logger.NewAuditLogger(log), log)
	return f
}

func (f *fixture) addTeam(name string, rating float64) *models.Team {
	team := &models.Team{ID: uuid.New(), Name: name, CurrentRating: rating}
	f.teams.teams[team.ID] = team
	return team
}

func (f *fixture) addGame(home, away *models.Team, start time.Time, status models.GameStatus) *models.Game {
	game := &models.Game{
		ID:         uuid.New(),
		StartTime:  start,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		Status:     status,
	}
	f.games.games = append(f.games.games, game)
	return game
}

func (f *fixture) addQuote(game *models.Game, book string, home, away float64, captured time.Time) {
	f.odds.series[game.ID] = append(f.odds.series[game.ID], &models.OddsQuote{
		ID:          uuid.New(),
		GameID:      game.ID,
		Book:        book,
		HomeDecimal: home,
		AwayDecimal: away,
		CapturedAt:  captured,
	})
}

func TestRunOncePlacesBet(t *testing.T) {
	f := newFixture(t, false)
	now := time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

	home := f.addTeam("Boston Celtics", 1500)
	away := f.addTeam("New York Knicks", 1500)
	game := f.addGame(home, away, now.Add(7*time.Hour), models.GameStatusScheduled)
	f.addQuote(game, "pinnacle", 2.05, 1.91, now.Add(-time.Hour))

	result, err := f.executor.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if result.BetsPlaced != 1 {
		t.Fatalf("expected one bet placed, got %d", result.BetsPlaced)
	}
	if result.Balance != 10000 {
		t.Fatalf("placement must not move the balance, got %.2f", result.Balance)
	}

	bet := f.bets.bets[game.ID]
	if bet == nil {
		t.Fatalf("bet not persisted")
	}
	if bet.Side != models.SideHome || bet.Stake != 50.00 {
		t.Fatalf("wrong bet: side=%s stake=%.2f", bet.Side, bet.Stake)
	}

	// The ledger records the placement with zero change
	last, err := f.bankroll.GetLatest(context.Background())
	if err != nil {
		t.Fatalf("ledger entry missing: %v", err)
	}
	if last.Reason != "bet_placed" || last.Change != 0 || last.Balance != 10000 {
		t.Fatalf("wrong ledger entry: %+v", last)
	}
}

func TestRunOnceDuplicateGuard(t *testing.T) {
	f := newFixture(t, false)
	now := time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

	home := f.addTeam("Boston Celtics", 1500)
	away := f.addTeam("New York Knicks", 1500)
	game := f.addGame(home, away, now.Add(7*time.Hour), models.GameStatusScheduled)
	f.addQuote(game, "pinnacle", 2.05, 1.91, now.Add(-time.Hour))

	if _, err := f.executor.RunOnce(context.Background(), now); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	second, err := f.executor.RunOnce(context.Background(), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if second.BetsPlaced != 0 {
		t.Fatalf("duplicate guard should block the second bet, placed %d", second.BetsPlaced)
	}
	if len(f.bets.bets) != 1 {
		t.Fatalf("expected exactly one durable bet, got %d", len(f.bets.bets))
	}
}

func TestRunOnceSettlesFinalGames(t *testing.T) {
	f := newFixture(t, false)
	now := time.Date(2024, 12, 2, 12, 0, 0, 0, time.UTC)

	home := f.addTeam("Boston Celtics", 1500)
	away := f.addTeam("New York Knicks", 1500)
	game := f.addGame(home, away, now.Add(-17*time.Hour), models.GameStatusFinal)
	homeScore, awayScore := 112, 104
	game.HomeScore, game.AwayScore = &homeScore, &awayScore

	f.bets.bets[game.ID] = &models.Bet{
		ID:       uuid.New(),
		GameID:   game.ID,
		Side:     models.SideHome,
		Stake:    50,
		Odds:     2.05,
		Outcome:  models.BetOutcomePending,
		PlacedAt: game.StartTime.Add(-time.Hour),
	}

	result, err := f.executor.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if result.BetsSettled != 1 {
		t.Fatalf("expected one settlement, got %d", result.BetsSettled)
	}
	if result.Balance != 10052.50 {
		t.Fatalf("expected balance 10052.50, got %.2f", result.Balance)
	}
	if result.RatingsApplied != 1 {
		t.Fatalf("final game should update ratings once, got %d", result.RatingsApplied)
	}

	// Winner gains, loser loses the same amount
	if home.CurrentRating <= 1500 || away.CurrentRating >= 1500 {
		t.Fatalf("ratings not updated: home=%.2f away=%.2f", home.CurrentRating, away.CurrentRating)
	}
	if home.CurrentRating-1500 != 1500-away.CurrentRating {
		t.Fatalf("rating update not zero-sum")
	}
}

func TestRatingsAppliedAtMostOnce(t *testing.T) {
	f := newFixture(t, false)
	now := time.Date(2024, 12, 2, 12, 0, 0, 0, time.UTC)

	home := f.addTeam("Boston Celtics", 1500)
	away := f.addTeam("New York Knicks", 1500)
	game := f.addGame(home, away, now.Add(-17*time.Hour), models.GameStatusFinal)
	homeScore, awayScore := 112, 104
	game.HomeScore, game.AwayScore = &homeScore, &awayScore

	first, err := f.executor.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	if first.RatingsApplied != 1 {
		t.Fatalf("expected one rating update, got %d", first.RatingsApplied)
	}
	ratingAfterFirst := home.CurrentRating

	second, err := f.executor.RunOnce(context.Background(), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if second.RatingsApplied != 0 {
		t.Fatalf("game must not be applied twice, got %d", second.RatingsApplied)
	}
	if home.CurrentRating != ratingAfterFirst {
		t.Fatalf("rating moved on the second cycle")
	}
}

func TestCLVRecordedAtSettlement(t *testing.T) {
	f := newFixture(t, true)
	now := time.Date(2024, 12, 2, 12, 0, 0, 0, time.UTC)

	home := f.addTeam("Boston Celtics", 1500)
	away := f.addTeam("New York Knicks", 1500)
	game := f.addGame(home, away, now.Add(-17*time.Hour), models.GameStatusFinal)
	homeScore, awayScore := 104, 112
	game.HomeScore, game.AwayScore = &homeScore, &awayScore

	f.addQuote(game, "pinnacle", 1.95, 2.00, game.StartTime.Add(-time.Minute))
	f.bets.bets[game.ID] = &models.Bet{
		ID:       uuid.New(),
		GameID:   game.ID,
		Side:     models.SideHome,
		Stake:    50,
		Odds:     2.05,
		Book:     "pinnacle",
		Outcome:  models.BetOutcomePending,
		PlacedAt: game.StartTime.Add(-time.Hour),
	}

	if _, err := f.executor.RunOnce(context.Background(), now); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	bet := f.bets.bets[game.ID]
	if bet.ClosingOdds == nil || *bet.ClosingOdds != 1.95 {
		t.Fatalf("closing odds not recorded: %+v", bet.ClosingOdds)
	}
	beat, ok := bet.BeatClosing()
	if !ok || !beat {
		t.Fatalf("2.05 should beat a 1.95 close")
	}
}
