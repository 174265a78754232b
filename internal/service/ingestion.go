// Package service coordinates data providers with the persistence layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
)

// gameNamespace seeds deterministic game IDs so repeated ingestion of
// the same matchup upserts instead of duplicating.
var gameNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// IngestionService pulls schedules, results, and odds from providers
// into the database.
type IngestionService struct {
	repos          *repository.Repositories
	scheduleSource datasource.ScheduleSource
	oddsSource     datasource.OddsSource
	logger         *logrus.Logger
}

// NewIngestionService creates the ingestion service
func NewIngestionService(repos *repository.Repositories, scheduleSource datasource.ScheduleSource, oddsSource datasource.OddsSource, logger *logrus.Logger) *IngestionService {
	return &IngestionService{
		repos:          repos,
		scheduleSource: scheduleSource,
		oddsSource:     oddsSource,
		logger:         logger,
	}
}

// IngestMetrics summarizes one ingestion run
type IngestMetrics struct {
	GamesUpserted  int
	QuotesInserted int
	Skipped        int
	Duration       time.Duration
}

func (m IngestMetrics) String() string {
	return fmt.Sprintf("games=%d quotes=%d skipped=%d duration=%s",
		m.GamesUpserted, m.QuotesInserted, m.Skipped, m.Duration)
}

// SyncGames ingests schedules and results for the date range. Teams are
// created on first sight; finished games carry their scores.
func (s *IngestionService) SyncGames(ctx context.Context, startDate, endDate time.Time) (IngestMetrics, error) {
	began := time.Now()
	result := IngestMetrics{}

	if s.scheduleSource == nil || !s.scheduleSource.IsEnabled() {
		return result, fmt.Errorf("schedule source is not available")
	}

	games, err := s.scheduleSource.FetchGames(ctx, startDate, endDate)
	if err != nil {
		metrics.RecordIngestionError(s.scheduleSource.Name())
		return result, fmt.Errorf("failed to fetch games: %w", err)
	}

	for _, data := range games {
		if err := s.upsertGame(ctx, data); err != nil {
			s.logger.WithFields(logrus.Fields{
				"source_id": data.SourceID,
				"home":      data.HomeTeam,
				"away":      data.AwayTeam,
			}).WithError(err).Warn("Failed to upsert game")
			result.Skipped++
			continue
		}
		result.GamesUpserted++
	}

	result.Duration = time.Since(began)
	metrics.IngestionDuration.WithLabelValues(s.scheduleSource.Name()).Observe(result.Duration.Seconds())
	s.logger.WithField("metrics", result.String()).Info("Game sync complete")
	return result, nil
}

// SyncOdds ingests current moneyline quotes for upcoming games. Quotes
// for games not yet in the schedule are skipped and counted; the next
// schedule sync picks the games up.
func (s *IngestionService) SyncOdds(ctx context.Context) (IngestMetrics, error) {
	began := time.Now()
	result := IngestMetrics{}

	if s.oddsSource == nil || !s.oddsSource.IsEnabled() {
		return result, fmt.Errorf("odds source is not available")
	}

	games, err := s.oddsSource.FetchOdds(ctx)
	if err != nil {
		metrics.RecordIngestionError(s.oddsSource.Name())
		return result, fmt.Errorf("failed to fetch odds: %w", err)
	}

	for _, data := range games {
		inserted, err := s.insertQuotes(ctx, data)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				result.Skipped++
				continue
			}
			s.logger.WithField("source_id", data.SourceID).WithError(err).Warn("Failed to insert quotes")
			result.Skipped++
			continue
		}
		result.QuotesInserted += inserted
	}

	result.Duration = time.Since(began)
	metrics.RecordQuotesIngested(s.oddsSource.Name(), result.QuotesInserted)
	metrics.IngestionDuration.WithLabelValues(s.oddsSource.Name()).Observe(result.Duration.Seconds())
	s.logger.WithField("metrics", result.String()).Info("Odds sync complete")
	return result, nil
}

// GameID derives the deterministic ID for a matchup on a calendar day
func GameID(homeTeam, awayTeam string, startTime time.Time) uuid.UUID {
	key := fmt.Sprintf("%s|%s|%s",
		NormalizeTeamName(homeTeam), NormalizeTeamName(awayTeam), startTime.UTC().Format("2006-01-02"))
	return uuid.NewSHA1(gameNamespace, []byte(key))
}

func (s *IngestionService) upsertGame(ctx context.Context, data datasource.GameData) error {
	homeID, err := s.resolveTeam(ctx, data.HomeTeam)
	if err != nil {
		return err
	}
	awayID, err := s.resolveTeam(ctx, data.AwayTeam)
	if err != nil {
		return err
	}

	game := &models.Game{
		ID:         GameID(data.HomeTeam, data.AwayTeam, data.StartTime),
		StartTime:  data.StartTime,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Status:     models.GameStatusScheduled,
		HomeScore:  data.HomeScore,
		AwayScore:  data.AwayScore,
	}
	if data.Status == "final" {
		game.Status = models.GameStatusFinal
	}

	return s.repos.Game.Upsert(ctx, game)
}

func (s *IngestionService) insertQuotes(ctx context.Context, data datasource.GameOddsData) (int, error) {
	gameID := GameID(data.HomeTeam, data.AwayTeam, data.StartTime)
	if _, err := s.repos.Game.GetByID(ctx, gameID); err != nil {
		return 0, err
	}

	quotes := make([]*models.OddsQuote, 0, len(data.Quotes))
	for _, book := range data.Quotes {
		home, _ := book.HomeDecimal.Float64()
		away, _ := book.AwayDecimal.Float64()
		quote := &models.OddsQuote{
			ID:          uuid.New(),
			GameID:      gameID,
			Book:        book.Book,
			HomeDecimal: home,
			AwayDecimal: away,
			CapturedAt:  book.CapturedAt,
		}
		if !quote.Valid() {
			s.logger.WithFields(logrus.Fields{
				"game": gameID,
				"book": book.Book,
				"home": book.HomeDecimal.String(),
				"away": book.AwayDecimal.String(),
			}).Warn("Dropping invalid quote")
			continue
		}
		quotes = append(quotes, quote)
	}

	if err := s.repos.Odds.CreateBatch(ctx, quotes); err != nil {
		return 0, err
	}
	return len(quotes), nil
}

// LoadCSV ingests a historical odds export, creating teams and games as
// needed. Rows carrying scores finalize their games.
func (s *IngestionService) LoadCSV(ctx context.Context, path string) (IngestMetrics, error) {
	began := time.Now()
	result := IngestMetrics{}

	rows, err := datasource.ReadOddsCSV(path)
	if err != nil {
		return result, err
	}

	seenGames := make(map[uuid.UUID]bool)
	for _, row := range rows {
		gameID := GameID(row.HomeTeam, row.AwayTeam, row.GameDate)

		if !seenGames[gameID] {
			if err := s.upsertGame(ctx, datasource.GameData{
				SourceID:  gameID.String(),
				HomeTeam:  row.HomeTeam,
				AwayTeam:  row.AwayTeam,
				StartTime: row.GameDate,
				Status:    csvStatus(row),
				HomeScore: row.HomeScore,
				AwayScore: row.AwayScore,
				FetchedAt: began,
			}); err != nil {
				return result, fmt.Errorf("failed to upsert game %s at %s: %w", gameID, row.GameDate, err)
			}
			seenGames[gameID] = true
			result.GamesUpserted++
		}

		home, _ := row.HomeDecimal.Float64()
		away, _ := row.AwayDecimal.Float64()
		quote := &models.OddsQuote{
			ID:          uuid.New(),
			GameID:      gameID,
			Book:        row.Book,
			HomeDecimal: home,
			AwayDecimal: away,
			CapturedAt:  row.CapturedAt,
		}
		if !quote.Valid() {
			result.Skipped++
			continue
		}
		if err := s.repos.Odds.Create(ctx, quote); err != nil {
			return result, fmt.Errorf("failed to insert quote for game %s: %w", gameID, err)
		}
		result.QuotesInserted++
	}

	result.Duration = time.Since(began)
	s.logger.WithField("metrics", result.String()).Info("CSV load complete")
	return result, nil
}

func csvStatus(row datasource.CSVRow) string {
	if row.HomeScore != nil && row.AwayScore != nil {
		return "final"
	}
	return "scheduled"
}

// bootstrapRating seeds newly discovered teams until training runs
const bootstrapRating = 1500.0

// resolveTeam looks a team up by canonical name, creating it on first
// sight.
func (s *IngestionService) resolveTeam(ctx context.Context, name string) (uuid.UUID, error) {
	canonical := NormalizeTeamName(name)
	team, err := s.repos.Team.GetByName(ctx, canonical)
	if err == nil {
		return team.ID, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return uuid.Nil, err
	}

	created := &models.Team{
		ID:            uuid.New(),
		Name:          canonical,
		CurrentRating: bootstrapRating,
	}
	if err := s.repos.Team.Create(ctx, created); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create team %q: %w", canonical, err)
	}
	s.logger.WithField("team", canonical).Info("Created team")
	return created.ID, nil
}
