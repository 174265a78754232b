// Package elo implements the team rating model used to produce win
// probabilities for moneyline markets.
package elo

import (
	"math"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/models"
)

const (
	// maxMOVMultiplier caps the margin-of-victory K scaling
	maxMOVMultiplier = 2.0
)

// Prediction is the model's pre-game view of a matchup
type Prediction struct {
	HomeProb     float64 `json:"home_prob"`
	AwayProb     float64 `json:"away_prob"`
	HomeRating   float64 `json:"home_rating"`
	AwayRating   float64 `json:"away_rating"`
	AdjustedHome float64 `json:"adjusted_home"`
	AdjustedAway float64 `json:"adjusted_away"`
	RatingGap    float64 `json:"rating_gap"`
	HomeRestDays int     `json:"home_rest_days"`
	AwayRestDays int     `json:"away_rest_days"`
}

// Update describes the rating movement settled from one final game
type Update struct {
	HomeDelta     float64 `json:"home_delta"`
	AwayDelta     float64 `json:"away_delta"`
	MOVMultiplier float64 `json:"mov_multiplier"`
	KFactor       float64 `json:"k_factor"`
}

// Model maps team ratings to win probabilities and folds game results
// back into ratings. All adjustments are applied to a copy of the
// rating at predict time; only Process mutates stored ratings.
type Model struct {
	kFactor       float64
	homeAdvantage float64
	initialRating float64
	useMOVWeight  bool
	useRestDays   bool
	restPenalty   float64
}

// NewModel builds a Model from configuration
func NewModel(cfg config.EloConfig) *Model {
	return &Model{
		kFactor:       cfg.KFactor,
		homeAdvantage: cfg.HomeAdvantage,
		useMOVWeight:  cfg.UseMOVWeight,
		useRestDays:   cfg.UseRestDays,
		restPenalty:   cfg.RestPenalty,
		initialRating: cfg.InitialRating,
	}
}

// InitialRating is the rating assigned to a team never seen before
func (m *Model) InitialRating() float64 {
	return m.initialRating
}

// expectedScore is the logistic win expectation of a rated side against
// an opponent, on the standard 400-point scale.
func expectedScore(rating, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-rating)/400.0))
}

// Predict returns win probabilities for a matchup. Home advantage is
// added to the home rating; short rest subtracts the configured penalty
// from whichever side is on exactly one day of rest.
func (m *Model) Predict(homeRating, awayRating float64, homeRest, awayRest int) Prediction {
	adjHome := homeRating + m.homeAdvantage
	adjAway := awayRating
	if m.useRestDays {
		adjHome -= m.restAdjustment(homeRest)
		adjAway -= m.restAdjustment(awayRest)
	}

	homeProb := expectedScore(adjHome, adjAway)
	return Prediction{
		HomeProb:     homeProb,
		AwayProb:     1.0 - homeProb,
		HomeRating:   homeRating,
		AwayRating:   awayRating,
		AdjustedHome: adjHome,
		AdjustedAway: adjAway,
		RatingGap:    adjHome - adjAway,
		HomeRestDays: homeRest,
		AwayRestDays: awayRest,
	}
}

// restAdjustment penalizes exactly one rest day. Back-to-backs are
// already priced into season-long ratings and two or more days carry no
// penalty.
func (m *Model) restAdjustment(restDays int) float64 {
	if restDays == 1 {
		return m.restPenalty
	}
	return 0
}

// Process settles a final game into both ratings. Updates are zero-sum:
// the home delta and away delta always cancel exactly. The optional MOV
// multiplier scales K by the victory margin, dampened for large
// pre-game favorites so expected blowouts do not inflate ratings.
func (m *Model) Process(game *models.Game, homeRating, awayRating float64, homeRest, awayRest int) (Update, bool) {
	homeWon, decided := game.HomeWon()
	if !decided {
		return Update{}, false
	}

	pred := m.Predict(homeRating, awayRating, homeRest, awayRest)
	actual := 0.0
	if homeWon {
		actual = 1.0
	}

	k := m.kFactor
	mov := 1.0
	if m.useMOVWeight {
		mov = m.movMultiplier(game.Margin(), pred.RatingGap, homeWon)
		k *= mov
	}

	delta := k * (actual - pred.HomeProb)
	return Update{
		HomeDelta:     delta,
		AwayDelta:     -delta,
		MOVMultiplier: mov,
		KFactor:       k,
	}, true
}

// movMultiplier grows logarithmically with the absolute margin and is
// scaled down when the winner was the pre-game rating favorite, so that
// routine favorite blowouts move ratings less than upsets do.
func (m *Model) movMultiplier(margin int, ratingGap float64, homeWon bool) float64 {
	abs := math.Abs(float64(margin))
	mult := 1.0 + math.Log(1.0+abs/10.0)/2.0

	winnerGap := ratingGap
	if !homeWon {
		winnerGap = -ratingGap
	}
	if winnerGap > 0 {
		// Winner was the favorite; dampen in proportion to how
		// expected the result was.
		mult = 1.0 + (mult-1.0)/(1.0+winnerGap/400.0)
	}
	if mult > maxMOVMultiplier {
		mult = maxMOVMultiplier
	}
	return mult
}
