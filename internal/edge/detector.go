// Package edge compares model probabilities against de-vigged market
// consensus and decides whether a game offers a bettable edge.
package edge

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/devig"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
)

// Consensus is the market view assembled from each book's latest quote
type Consensus struct {
	HomeProb     float64 `json:"home_prob"`
	AwayProb     float64 `json:"away_prob"`
	BestHomeDec  float64 `json:"best_home_dec"`
	BestHomeBook string  `json:"best_home_book"`
	BestAwayDec  float64 `json:"best_away_dec"`
	BestAwayBook string  `json:"best_away_book"`
	Books        int     `json:"books"`
}

// Detector turns a game's quote history into at most one edge signal
type Detector struct {
	devigger  *devig.DeVigger
	minEdge   float64
	shrinkage float64
	logger    *logrus.Logger
}

// NewDetector builds a Detector from configuration
func NewDetector(cfg config.EdgeConfig, devigger *devig.DeVigger, logger *logrus.Logger) *Detector {
	return &Detector{
		devigger:  devigger,
		minEdge:   cfg.MinEdge,
		shrinkage: cfg.Shrinkage,
		logger:    logger,
	}
}

// BuildConsensus de-vigs each book's latest valid quote strictly before
// cutoff and averages the fair probabilities. Best prices per side are
// tracked across the same quotes. Returns models.ErrNotFound when no
// book has a usable quote.
func (d *Detector) BuildConsensus(quotes models.QuoteSeries, cutoff time.Time) (Consensus, error) {
	latest := quotes.LatestPerBook(cutoff)
	if len(latest) == 0 {
		return Consensus{}, fmt.Errorf("consensus: no quotes before %s: %w", cutoff.Format(time.RFC3339), models.ErrNotFound)
	}

	var c Consensus
	var homeSum, awaySum float64
	for _, q := range latest {
		fair, err := d.devigger.DeVig(q.HomeDecimal, q.AwayDecimal)
		if err != nil {
			d.logger.WithFields(logrus.Fields{
				"book":  q.Book,
				"quote": q.ID,
			}).WithError(err).Warn("Skipping unpriceable quote")
			continue
		}
		if fair.Fallback {
			d.logger.WithFields(logrus.Fields{
				"book":   q.Book,
				"method": fair.Method,
			}).Warn("De-vig did not converge, used multiplicative fallback")
			metrics.RecordDevigFallback()
		}
		homeSum += fair.HomeProb
		awaySum += fair.AwayProb
		c.Books++

		if q.HomeDecimal > c.BestHomeDec {
			c.BestHomeDec = q.HomeDecimal
			c.BestHomeBook = q.Book
		}
		if q.AwayDecimal > c.BestAwayDec {
			c.BestAwayDec = q.AwayDecimal
			c.BestAwayBook = q.Book
		}
	}
	if c.Books == 0 {
		return Consensus{}, fmt.Errorf("consensus: all quotes invalid: %w", models.ErrInvalidOdds)
	}

	c.HomeProb = homeSum / float64(c.Books)
	c.AwayProb = awaySum / float64(c.Books)
	return c, nil
}

// Detect evaluates both sides of a game and returns at most one signal.
// The model probability is shrunk toward market consensus before the
// edge is measured; a side qualifies when the shrunk edge meets the
// threshold and the expected value at best available odds is positive.
// When both sides qualify the larger edge wins; an exact tie produces
// no bet.
func (d *Detector) Detect(game *models.Game, modelHomeProb float64, consensus Consensus, at time.Time) *models.EdgeSignal {
	home := d.evaluateSide(models.SideHome, modelHomeProb, consensus.HomeProb, consensus.BestHomeDec, consensus.BestHomeBook)
	away := d.evaluateSide(models.SideAway, 1.0-modelHomeProb, consensus.AwayProb, consensus.BestAwayDec, consensus.BestAwayBook)

	var pick *sideEval
	switch {
	case home.qualifies && away.qualifies:
		if home.edge > away.edge {
			pick = &home
		} else if away.edge > home.edge {
			pick = &away
		}
		// Equal edges on both sides means the signal is noise
	case home.qualifies:
		pick = &home
	case away.qualifies:
		pick = &away
	}

	signal := &models.EdgeSignal{
		ID:         uuid.New(),
		GameID:     game.ID,
		Decision:   models.DecisionNoBet,
		DetectedAt: at,
	}
	if pick == nil {
		return signal
	}

	signal.Side = pick.side
	signal.ModelProb = pick.shrunkProb
	signal.MarketProb = pick.marketProb
	signal.Edge = pick.edge
	signal.EV = pick.ev
	signal.Odds = pick.odds
	signal.Book = pick.book
	signal.Decision = models.DecisionBet
	return signal
}

type sideEval struct {
	side       models.Side
	shrunkProb float64
	marketProb float64
	edge       float64
	ev         float64
	odds       float64
	book       string
	qualifies  bool
}

// evaluateSide applies shrinkage and the edge and EV gates to one side
func (d *Detector) evaluateSide(side models.Side, modelProb, marketProb, odds float64, book string) sideEval {
	shrunk := marketProb + (1.0-d.shrinkage)*(modelProb-marketProb)
	edge := shrunk - marketProb
	ev := shrunk*(odds-1.0) - (1.0 - shrunk)

	return sideEval{
		side:       side,
		shrunkProb: shrunk,
		marketProb: marketProb,
		edge:       edge,
		ev:         ev,
		odds:       odds,
		book:       book,
		qualifies:  odds > 1.0 && edge >= d.minEdge && ev > 0,
	}
}
