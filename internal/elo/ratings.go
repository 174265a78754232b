package elo

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Ratings is an in-memory rating book keyed by team ID. It also tracks
// each team's most recent final game so rest days can be derived. Not
// safe for concurrent use; callers own synchronization.
type Ratings struct {
	initial  float64
	ratings  map[uuid.UUID]float64
	lastGame map[uuid.UUID]time.Time
}

// NewRatings creates an empty book with the given initial rating
func NewRatings(initial float64) *Ratings {
	return &Ratings{
		initial:  initial,
		ratings:  make(map[uuid.UUID]float64),
		lastGame: make(map[uuid.UUID]time.Time),
	}
}

// Get returns the team's rating, seeding the initial rating on first
// sight.
func (r *Ratings) Get(teamID uuid.UUID) float64 {
	if rating, ok := r.ratings[teamID]; ok {
		return rating
	}
	r.ratings[teamID] = r.initial
	return r.initial
}

// Set overwrites a team's rating
func (r *Ratings) Set(teamID uuid.UUID, rating float64) {
	r.ratings[teamID] = rating
}

// Apply moves a team's rating by delta and records the game time as the
// team's most recent appearance.
func (r *Ratings) Apply(teamID uuid.UUID, delta float64, gameTime time.Time) {
	r.ratings[teamID] = r.Get(teamID) + delta
	if last, ok := r.lastGame[teamID]; !ok || gameTime.After(last) {
		r.lastGame[teamID] = gameTime
	}
}

// RestDays returns full days between the team's last game and gameTime.
// Teams with no recorded game get defaultRest, treated as fully rested.
func (r *Ratings) RestDays(teamID uuid.UUID, gameTime time.Time, defaultRest int) int {
	last, ok := r.lastGame[teamID]
	if !ok || !gameTime.After(last) {
		return defaultRest
	}
	days := int(gameTime.Sub(last).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// LastGame returns the team's most recent recorded game time
func (r *Ratings) LastGame(teamID uuid.UUID) (time.Time, bool) {
	last, ok := r.lastGame[teamID]
	return last, ok
}

// Len returns the number of rated teams
func (r *Ratings) Len() int {
	return len(r.ratings)
}

// Snapshot returns team IDs and ratings in a deterministic order for
// reporting and persistence.
func (r *Ratings) Snapshot() []TeamRating {
	out := make([]TeamRating, 0, len(r.ratings))
	for id, rating := range r.ratings {
		out = append(out, TeamRating{TeamID: id, Rating: rating})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TeamID.String() < out[j].TeamID.String()
	})
	return out
}

// TeamRating pairs a team with its current rating
type TeamRating struct {
	TeamID uuid.UUID `json:"team_id"`
	Rating float64   `json:"rating"`
}
