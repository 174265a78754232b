package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// OddsQuote is a point-in-time capture of a book's moneyline prices for a
// game. Quotes are append-only: a new capture never overwrites an old one.
type OddsQuote struct {
	ID          uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	GameID      uuid.UUID `db:"game_id" json:"game_id" validate:"required,uuid4"`
	Book        string    `db:"book" json:"book" validate:"required"`
	HomeDecimal float64   `db:"home_decimal" json:"home_decimal" validate:"required,gt=1"`
	AwayDecimal float64   `db:"away_decimal" json:"away_decimal" validate:"required,gt=1"`
	CapturedAt  time.Time `db:"captured_at" json:"captured_at" validate:"required"`
}

// Valid reports whether both prices are finite and above 1.0
func (q *OddsQuote) Valid() bool {
	return validDecimal(q.HomeDecimal) && validDecimal(q.AwayDecimal)
}

// DecimalFor returns the price quoted for the given side
func (q *OddsQuote) DecimalFor(side Side) float64 {
	if side == SideHome {
		return q.HomeDecimal
	}
	return q.AwayDecimal
}

// ImpliedFor returns the raw (vigged) implied probability for a side
func (q *OddsQuote) ImpliedFor(side Side) float64 {
	dec := q.DecimalFor(side)
	if dec <= 0 {
		return 0
	}
	return 1.0 / dec
}

func validDecimal(dec float64) bool {
	return dec > 1.0 && !math.IsInf(dec, 0) && !math.IsNaN(dec)
}

// QuoteSeries is a slice of quotes for one game ordered by capture time
type QuoteSeries []*OddsQuote

// LatestPerBook collapses the series to the most recent valid quote per
// book, keeping only quotes captured strictly before cutoff.
func (s QuoteSeries) LatestPerBook(cutoff time.Time) []*OddsQuote {
	latest := make(map[string]*OddsQuote)
	order := make([]string, 0, 4)
	for _, q := range s {
		if !q.CapturedAt.Before(cutoff) || !q.Valid() {
			continue
		}
		existing, ok := latest[q.Book]
		if !ok {
			order = append(order, q.Book)
			latest[q.Book] = q
			continue
		}
		if q.CapturedAt.After(existing.CapturedAt) {
			latest[q.Book] = q
		}
	}
	out := make([]*OddsQuote, 0, len(latest))
	for _, book := range order {
		out = append(out, latest[book])
	}
	return out
}
