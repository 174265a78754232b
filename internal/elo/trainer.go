package elo

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/models"
)

// defaultRestDays is assumed for a team with no prior game on record
const defaultRestDays = 3

// Trainer replays historical final games in chronological order to
// produce a trained rating book. Games near the training horizon can be
// weighted more heavily so the book reflects current form.
type Trainer struct {
	model         *Model
	useRecency    bool
	recencyDays   int
	recencyWeight float64
	logger        *logrus.Logger
}

// NewTrainer builds a Trainer around a rating model
func NewTrainer(model *Model, cfg config.EloConfig, logger *logrus.Logger) *Trainer {
	return &Trainer{
		model:         model,
		useRecency:    cfg.UseRecency,
		recencyDays:   cfg.RecencyDays,
		recencyWeight: cfg.RecencyWeight,
		logger:        logger,
	}
}

// TrainResult summarizes a training run
type TrainResult struct {
	GamesProcessed int       `json:"games_processed"`
	GamesSkipped   int       `json:"games_skipped"`
	TeamsRated     int       `json:"teams_rated"`
	Horizon        time.Time `json:"horizon"`
}

// Train replays final games up to horizon into the book. Games are
// sorted by (start time, id) so replays are deterministic. Non-final
// and post-horizon games are skipped. Games within the recency window
// of the horizon apply the recency multiplier to K.
func (t *Trainer) Train(book *Ratings, games []*models.Game, horizon time.Time) (TrainResult, error) {
	if book == nil {
		return TrainResult{}, fmt.Errorf("train: nil rating book")
	}

	ordered := make([]*models.Game, len(games))
	copy(ordered, games)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].StartTime.Equal(ordered[j].StartTime) {
			return ordered[i].StartTime.Before(ordered[j].StartTime)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	recencyCutoff := horizon.AddDate(0, 0, -t.recencyDays)
	result := TrainResult{Horizon: horizon}

	for _, game := range ordered {
		if !game.IsFinal() || game.StartTime.After(horizon) {
			result.GamesSkipped++
			continue
		}

		homeRating := book.Get(game.HomeTeamID)
		awayRating := book.Get(game.AwayTeamID)
		homeRest := book.RestDays(game.HomeTeamID, game.StartTime, defaultRestDays)
		awayRest := book.RestDays(game.AwayTeamID, game.StartTime, defaultRestDays)

		update, ok := t.model.Process(game, homeRating, awayRating, homeRest, awayRest)
		if !ok {
			result.GamesSkipped++
			continue
		}

		weight := 1.0
		if t.useRecency && !game.StartTime.Before(recencyCutoff) {
			weight = t.recencyWeight
		}

		book.Apply(game.HomeTeamID, update.HomeDelta*weight, game.StartTime)
		book.Apply(game.AwayTeamID, update.AwayDelta*weight, game.StartTime)
		result.GamesProcessed++
	}

	result.TeamsRated = book.Len()
	t.logger.WithFields(logrus.Fields{
		"games_processed": result.GamesProcessed,
		"games_skipped":   result.GamesSkipped,
		"teams_rated":     result.TeamsRated,
		"horizon":         horizon.Format(time.RFC3339),
	}).Info("Rating training complete")

	return result, nil
}

// WarmStart seeds the book from a name-keyed ratings map, typically the
// closing ratings of the previous season. Names missing from resolve are
// reported but do not fail the seed.
func (t *Trainer) WarmStart(book *Ratings, seed map[string]float64, resolve func(name string) (uuid.UUID, bool)) int {
	seeded := 0
	for name, rating := range seed {
		id, ok := resolve(name)
		if !ok {
			t.logger.WithField("team", name).Warn("Warm-start team not found, skipping")
			continue
		}
		book.Set(id, rating)
		seeded++
	}
	t.logger.WithField("teams_seeded", seeded).Info("Warm-start ratings applied")
	return seeded
}
