// Package papertrade runs the live signal pipeline against real odds
// with simulated money.
package papertrade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/edge"
	"github.com/yourusername/courtside/internal/elo"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/staking"
)

// restDefault is assumed for teams with no recorded game
const restDefault = 3

// Executor performs one paper trading cycle: settle yesterday's bets,
// fold results into ratings, and place bets on upcoming games. The
// database bet guard makes re-running a cycle safe.
type Executor struct {
	cfg        config.PaperTradingConfig
	clvEnabled bool
	model      *elo.Model
	detector   *edge.Detector
	policy     *staking.Policy
	repos      *repository.Repositories
	audit      *logger.AuditLogger
	logger     *logrus.Logger
}

// NewExecutor creates a paper trading executor
func NewExecutor(cfg config.PaperTradingConfig, clvEnabled bool, model *elo.Model, detector *edge.Detector, policy *staking.Policy, repos *repository.Repositories, audit *logger.AuditLogger, log *logrus.Logger) *Executor {
	return &Executor{
		cfg:        cfg,
		clvEnabled: clvEnabled,
		model:      model,
		detector:   detector,
		policy:     policy,
		repos:      repos,
		audit:      audit,
		logger:     log,
	}
}

// CycleResult summarizes one paper trading cycle
type CycleResult struct {
	BetsSettled    int     `json:"bets_settled"`
	RatingsApplied int     `json:"ratings_applied"`
	BetsPlaced     int     `json:"bets_placed"`
	Balance        float64 `json:"balance"`
}

// RunOnce executes a full cycle as of now
func (e *Executor) RunOnce(ctx context.Context, now time.Time) (CycleResult, error) {
	result := CycleResult{}

	settled, err := e.settlePending(ctx, now)
	if err != nil {
		return result, err
	}
	result.BetsSettled = settled

	applied, err := e.updateRatings(ctx, now)
	if err != nil {
		return result, err
	}
	result.RatingsApplied = applied

	placed, err := e.placeBets(ctx, now)
	if err != nil {
		return result, err
	}
	result.BetsPlaced = placed

	balance, _, err := e.currentBankroll(ctx)
	if err != nil {
		return result, err
	}
	result.Balance = balance

	e.logger.WithFields(logrus.Fields{
		"settled": result.BetsSettled,
		"ratings": result.RatingsApplied,
		"placed":  result.BetsPlaced,
		"balance": result.Balance,
	}).Info("Paper trading cycle complete")
	return result, nil
}

// settlePending settles bets whose games have gone final or void,
// recording closing odds first when CLV tracking is on.
func (e *Executor) settlePending(ctx context.Context, now time.Time) (int, error) {
	pending, err := e.repos.Bet.GetPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending bets: %w", err)
	}

	settled := 0
	for _, bet := range pending {
		game, err := e.repos.Game.GetByID(ctx, bet.GameID)
		if err != nil {
			return settled, fmt.Errorf("failed to load game %s: %w", bet.GameID, err)
		}
		if game.Status == models.GameStatusScheduled {
			continue
		}

		if e.clvEnabled {
			e.recordClosingOdds(ctx, bet, game)
		}

		pnl := bet.Settle(game, now)
		if !bet.IsSettled() {
			continue
		}
		if err := e.repos.Bet.Settle(ctx, bet); err != nil {
			return settled, fmt.Errorf("failed to persist settlement for bet %s: %w", bet.ID, err)
		}

		balance, err := e.applyBankrollChange(ctx, now, pnl, "bet_settled")
		if err != nil {
			return settled, err
		}

		e.audit.LogBetSettlement(bet, pnl, balance)
		metrics.RecordBetSettled(string(bet.Outcome))
		settled++
	}

	return settled, nil
}

// updateRatings folds newly final games into team ratings, at most once
// per game. A game is unapplied while its start time is ahead of either
// team's recorded last game.
func (e *Executor) updateRatings(ctx context.Context, now time.Time) (int, error) {
	finals, err := e.repos.Game.GetFinalBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to load final games: %w", err)
	}

	applied := 0
	for _, game := range finals {
		home, err := e.repos.Team.GetByID(ctx, game.HomeTeamID)
		if err != nil {
			return applied, err
		}
		away, err := e.repos.Team.GetByID(ctx, game.AwayTeamID)
		if err != nil {
			return applied, err
		}
		if ratingApplied(home, game) || ratingApplied(away, game) {
			continue
		}

		homeRest := home.RestDays(game.StartTime, restDefault)
		awayRest := away.RestDays(game.StartTime, restDefault)
		update, ok := e.model.Process(game, home.CurrentRating, away.CurrentRating, homeRest, awayRest)
		if !ok {
			continue
		}

		if err := e.repos.Team.UpdateRating(ctx, home.ID, home.CurrentRating+update.HomeDelta, game.StartTime); err != nil {
			return applied, err
		}
		if err := e.repos.Team.UpdateRating(ctx, away.ID, away.CurrentRating+update.AwayDelta, game.StartTime); err != nil {
			return applied, err
		}
		applied++
	}

	return applied, nil
}

// placeBets evaluates games tipping off within the next day
func (e *Executor) placeBets(ctx context.Context, now time.Time) (int, error) {
	upcoming, err := e.repos.Game.GetScheduled(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("failed to load upcoming games: %w", err)
	}

	placed := 0
	for _, game := range upcoming {
		quotes, err := e.repos.Odds.GetLatestBefore(ctx, game.ID, now)
		if err != nil {
			return placed, fmt.Errorf("failed to load quotes for game %s: %w", game.ID, err)
		}

		signal, err := e.evaluate(ctx, game, quotes, now)
		if err != nil {
			return placed, err
		}
		if signal == nil || signal.Decision != models.DecisionBet {
			continue
		}

		ok, err := e.placeBet(ctx, game, signal, now)
		if err != nil {
			return placed, err
		}
		if ok {
			placed++
		}
	}

	return placed, nil
}

func (e *Executor) evaluate(ctx context.Context, game *models.Game, quotes models.QuoteSeries, now time.Time) (*models.EdgeSignal, error) {
	consensus, err := e.detector.BuildConsensus(quotes, game.StartTime)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidOdds) {
			return nil, nil
		}
		return nil, err
	}

	home, err := e.repos.Team.GetByID(ctx, game.HomeTeamID)
	if err != nil {
		return nil, err
	}
	away, err := e.repos.Team.GetByID(ctx, game.AwayTeamID)
	if err != nil {
		return nil, err
	}

	pred := e.model.Predict(home.CurrentRating, away.CurrentRating,
		home.RestDays(game.StartTime, restDefault), away.RestDays(game.StartTime, restDefault))

	signal := e.detector.Detect(game, pred.HomeProb, consensus, now)
	metrics.RecordEdgeDecision(string(signal.Decision))
	if err := e.repos.Edge.Create(ctx, signal); err != nil {
		return nil, fmt.Errorf("failed to persist edge signal: %w", err)
	}
	return signal, nil
}

// placeBet sizes and durably records one bet. A bet exists only after
// write confirmation; a duplicate guard hit means a previous cycle
// already bet this game.
func (e *Executor) placeBet(ctx context.Context, game *models.Game, signal *models.EdgeSignal, now time.Time) (bool, error) {
	balance, _, err := e.currentBankroll(ctx)
	if err != nil {
		return false, err
	}

	stake, err := e.policy.Stake(balance, 1.0)
	if err != nil {
		if errors.Is(err, models.ErrBankrollExhausted) {
			e.logger.WithField("game", game.ID).Warn("Bankroll exhausted, skipping bet")
			return false, nil
		}
		return false, err
	}
	if stake <= 0 {
		return false, nil
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
		PlacedAt:   now,
	}

	if err := e.repos.Bet.Create(ctx, bet); err != nil {
		if errors.Is(err, models.ErrDuplicateBet) {
			e.logger.WithField("game", game.ID).Debug("Bet already placed, skipping")
			return false, nil
		}
		return false, fmt.Errorf("failed to place bet: %w", err)
	}

	if _, err := e.applyBankrollChange(ctx, now, 0, "bet_placed"); err != nil {
		return false, err
	}

	e.audit.LogBetPlacement(bet, balance, true)
	metrics.RecordBetPlaced(bet.Edge)
	return true, nil
}

// recordClosingOdds captures the last pre-start price for the bet's
// book and side.
func (e *Executor) recordClosingOdds(ctx context.Context, bet *models.Bet, game *models.Game) {
	closing, err := e.repos.Odds.GetClosing(ctx, game.ID, bet.Book, game.StartTime)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			e.logger.WithField("bet", bet.ID).WithError(err).Warn("Failed to load closing quote")
		}
		return
	}

	price := closing.DecimalFor(bet.Side)
	if err := e.repos.Bet.SetClosingOdds(ctx, bet.ID, price); err != nil {
		e.logger.WithField("bet", bet.ID).WithError(err).Warn("Failed to record closing odds")
		return
	}
	bet.ClosingOdds = &price
}

// currentBankroll returns the latest ledger balance and peak, seeding
// the configured initial bankroll on first use.
func (e *Executor) currentBankroll(ctx context.Context) (float64, float64, error) {
	latest, err := e.repos.Bankroll.GetLatest(ctx)
	if err == nil {
		return latest.Balance, latest.Peak, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return 0, 0, fmt.Errorf("failed to load bankroll: %w", err)
	}
	return e.cfg.InitialBankroll, e.cfg.InitialBankroll, nil
}

// applyBankrollChange appends a ledger entry and refreshes gauges
func (e *Executor) applyBankrollChange(ctx context.Context, at time.Time, change float64, reason string) (float64, error) {
	balance, peak, err := e.currentBankroll(ctx)
	if err != nil {
		return 0, err
	}

	balance += change
	if balance > peak {
		peak = balance
	}
	drawdown := 0.0
	if peak > 0 && balance < peak {
		drawdown = (peak - balance) / peak
	}

	state := &models.BankrollState{
		Time:     at,
		Balance:  balance,
		Peak:     peak,
		Drawdown: drawdown,
		Change:   change,
		Reason:   reason,
	}
	if err := e.repos.Bankroll.Record(ctx, state); err != nil {
		return 0, fmt.Errorf("failed to record bankroll state: %w", err)
	}

	e.audit.LogBankrollChange(*state)
	metrics.UpdateBankroll(balance, drawdown)
	return balance, nil
}

func ratingApplied(team *models.Team, game *models.Game) bool {
	return team.LastGameAt != nil && !game.StartTime.After(*team.LastGameAt)
}
