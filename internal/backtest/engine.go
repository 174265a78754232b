package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/edge"
	"github.com/yourusername/courtside/internal/elo"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/staking"
)

// restDefault is assumed for teams with no game on record in the replay
const restDefault = 3

// Engine orchestrates historical replay simulations. The replay core is
// pure over in-memory inputs; Run wires it to the repository layer.
type Engine struct {
	config       SimConfig
	model        *elo.Model
	trainer      *elo.Trainer
	detector     *edge.Detector
	policy       *staking.Policy
	repositories *repository.Repositories
	logger       *logrus.Logger
}

// NewEngine creates a new simulation engine
func NewEngine(cfg SimConfig, model *elo.Model, trainer *elo.Trainer, detector *edge.Detector, policy *staking.Policy, repos *repository.Repositories, logger *logrus.Logger) (*Engine, error) {
	if model == nil || detector == nil || policy == nil {
		return nil, fmt.Errorf("model, detector, and staking policy are required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		config:       cfg,
		model:        model,
		trainer:      trainer,
		detector:     detector,
		policy:       policy,
		repositories: repos,
		logger:       logger,
	}, nil
}

// Config returns the simulation configuration
func (e *Engine) Config() SimConfig {
	return e.config
}

// Run loads games and odds from the database, trains ratings on games
// final before the window start, replays the window, and computes
// metrics. The returned state holds the partial ledger even on failure.
func (e *Engine) Run(ctx context.Context) (*SimState, Metrics, error) {
	if e.repositories == nil {
		return nil, Metrics{}, fmt.Errorf("repositories are required for database-backed runs")
	}

	e.logger.WithFields(logrus.Fields{
		"start": e.config.StartDate.Format("2006-01-02"),
		"end":   e.config.EndDate.Format("2006-01-02"),
	}).Info("Starting backtest run")

	book := elo.NewRatings(e.model.InitialRating())
	if e.trainer != nil {
		warmup, err := e.repositories.Game.GetFinalBefore(ctx, e.config.StartDate.Add(-time.Nanosecond))
		if err != nil {
			return nil, Metrics{}, fmt.Errorf("failed to load warmup games: %w", err)
		}
		if _, err := e.trainer.Train(book, warmup, e.config.StartDate); err != nil {
			return nil, Metrics{}, err
		}
	}

	games, err := e.repositories.Game.GetByDateRange(ctx, e.config.StartDate, e.config.EndDate)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("failed to load games: %w", err)
	}

	quotes := make(map[uuid.UUID]models.QuoteSeries, len(games))
	for _, game := range games {
		series, err := e.repositories.Odds.GetByGameID(ctx, game.ID)
		if err != nil {
			return nil, Metrics{}, fmt.Errorf("failed to load odds for game %s: %w", game.ID, err)
		}
		quotes[game.ID] = series
	}

	state, err := e.Replay(ctx, book, games, quotes)
	metrics := CalculateMetrics(state, e.config)
	return state, metrics, err
}

// Replay simulates the window over in-memory inputs. Games must be
// ordered by (start time, id); an out-of-order game fails the run with
// models.ErrChronologyViolation while preserving the partial ledger.
// Identical inputs and configuration always produce an identical bet
// ledger.
func (e *Engine) Replay(ctx context.Context, book *elo.Ratings, games []*models.Game, quotes map[uuid.UUID]models.QuoteSeries) (*SimState, error) {
	state := NewSimState(e.config.InitialBankroll, e.config.StartDate)
	state.Status = StatusRunning

	gamesByID := make(map[uuid.UUID]*models.Game, len(games))
	ratingApplied := make(map[uuid.UUID]bool, len(games))
	var resolvedQueue []*models.Game
	cursor := time.Time{}

	for _, game := range games {
		if err := ctx.Err(); err != nil {
			state.Status = StatusFailed
			return state, err
		}
		if game.StartTime.Before(cursor) {
			state.Status = StatusFailed
			metrics.ChronologyViolationsTotal.Inc()
			return state, fmt.Errorf("game %s starts %s before cursor %s: %w",
				game.ID, game.StartTime.Format(time.RFC3339), cursor.Format(time.RFC3339), models.ErrChronologyViolation)
		}
		cursor = game.StartTime
		gamesByID[game.ID] = game

		// Results known strictly before this tip-off are folded into
		// bankroll and ratings before the game is evaluated.
		e.settlePending(state, gamesByID, cursor)
		resolvedQueue = e.applyResolved(book, resolvedQueue, ratingApplied, cursor)

		e.evaluateGame(state, book, game, quotes[game.ID])

		if game.Status != models.GameStatusScheduled {
			resolvedQueue = append(resolvedQueue, game)
		}
	}

	// Flush everything still outstanding at the end of the window
	e.settlePending(state, gamesByID, cursor.Add(time.Nanosecond))
	e.applyResolved(book, resolvedQueue, ratingApplied, cursor.Add(time.Nanosecond))

	state.Status = StatusCompleted
	e.logger.WithFields(logrus.Fields{
		"bets":           len(state.Bets),
		"final_bankroll": state.CurrentBankroll,
	}).Info("Backtest replay complete")
	return state, nil
}

// settlePending settles placed bets whose games resolved strictly
// before the cursor.
func (e *Engine) settlePending(state *SimState, gamesByID map[uuid.UUID]*models.Game, cursor time.Time) {
	for _, bet := range state.PendingBets() {
		game, ok := gamesByID[bet.GameID]
		if !ok || game.Status == models.GameStatusScheduled || !game.StartTime.Before(cursor) {
			continue
		}
		settleAt := game.StartTime
		pnl := bet.Settle(game, settleAt)
		state.SettleBet(bet, pnl, settleAt)
	}
}

// applyResolved applies at most one rating update per final game whose
// start lies strictly before the cursor, returning games still waiting.
func (e *Engine) applyResolved(book *elo.Ratings, queue []*models.Game, applied map[uuid.UUID]bool, cursor time.Time) []*models.Game {
	var remaining []*models.Game
	for _, game := range queue {
		if !game.StartTime.Before(cursor) {
			remaining = append(remaining, game)
			continue
		}
		if applied[game.ID] || !game.IsFinal() {
			continue
		}

		homeRest := book.RestDays(game.HomeTeamID, game.StartTime, restDefault)
		awayRest := book.RestDays(game.AwayTeamID, game.StartTime, restDefault)
		update, ok := e.model.Process(game, book.Get(game.HomeTeamID), book.Get(game.AwayTeamID), homeRest, awayRest)
		if !ok {
			continue
		}
		book.Apply(game.HomeTeamID, update.HomeDelta, game.StartTime)
		book.Apply(game.AwayTeamID, update.AwayDelta, game.StartTime)
		applied[game.ID] = true
	}
	return remaining
}

// evaluateGame runs the prediction and edge pipeline for one game and
// places at most one bet. Games without a usable pre-start quote are
// skipped.
func (e *Engine) evaluateGame(state *SimState, book *elo.Ratings, game *models.Game, series models.QuoteSeries) {
	consensus, err := e.detector.BuildConsensus(series, game.StartTime)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			e.logger.WithField("game", game.ID).WithError(err).Warn("Skipping game with unusable odds")
		}
		return
	}

	homeRest := book.RestDays(game.HomeTeamID, game.StartTime, restDefault)
	awayRest := book.RestDays(game.AwayTeamID, game.StartTime, restDefault)
	pred := e.model.Predict(book.Get(game.HomeTeamID), book.Get(game.AwayTeamID), homeRest, awayRest)

	signal := e.detector.Detect(game, pred.HomeProb, consensus, game.StartTime)
	if signal.Decision != models.DecisionBet {
		return
	}

	stake, err := e.policy.Stake(state.CurrentBankroll, 1.0)
	if err != nil {
		if errors.Is(err, models.ErrBankrollExhausted) {
			e.logger.WithField("game", game.ID).Warn("Bankroll exhausted, skipping bet")
			return
		}
		e.logger.WithField("game", game.ID).WithError(err).Warn("Stake calculation failed")
		return
	}
	if stake <= 0 {
		return
	}

	edgeID := signal.ID
	bet := &models.Bet{
		ID:         uuid.New(),
		GameID:     game.ID,
		EdgeID:     &edgeID,
		Side:       signal.Side,
		Stake:      stake,
		Odds:       signal.Odds,
		Book:       signal.Book,
		ModelProb:  signal.ModelProb,
		MarketProb: signal.MarketProb,
		Edge:       signal.Edge,
		EV:         signal.EV,
		Outcome:    models.BetOutcomePending,
		PlacedAt:   game.StartTime,
	}
	if closing := closingOddsFor(series, signal.Side, signal.Book, game.StartTime); closing > 0 {
		bet.ClosingOdds = &closing
	}

	state.PlaceBet(bet)
}

// closingOddsFor finds the last pre-start price for the bet's book and
// side.
func closingOddsFor(series models.QuoteSeries, side models.Side, bookName string, startTime time.Time) float64 {
	for _, quote := range series.LatestPerBook(startTime) {
		if quote.Book == bookName {
			return quote.DecimalFor(side)
		}
	}
	return 0
}
