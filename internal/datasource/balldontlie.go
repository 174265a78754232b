package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
)

// BallDontLieSource fetches NBA schedules and results from the
// balldontlie API, paging through the games endpoint.
type BallDontLieSource struct {
	baseURL string
	apiKey  string
	client  *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewBallDontLieSource creates a schedule provider from ingestion config
func NewBallDontLieSource(cfg config.DataIngestionConfig, logger *logrus.Logger) *BallDontLieSource {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.RateLimit = cfg.RequestsPerSecond
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second

	return &BallDontLieSource{
		baseURL: cfg.ScheduleAPIURL,
		apiKey:  cfg.ScheduleAPIKey,
		client:  NewRateLimitedHTTPClient(httpCfg, logger),
		logger:  logger,
	}
}

// Name returns the name of the data source
func (s *BallDontLieSource) Name() string {
	return "balldontlie"
}

// IsEnabled returns whether this data source is currently enabled
func (s *BallDontLieSource) IsEnabled() bool {
	return s.baseURL != ""
}

type ballDontLieGame struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
	// Datetime is RFC3339 when the provider knows tip-off, empty otherwise
	Datetime  string `json:"datetime"`
	Date      string `json:"date"`
	HomeScore int    `json:"home_team_score"`
	AwayScore int    `json:"visitor_team_score"`
	HomeTeam  struct {
		FullName string `json:"full_name"`
	} `json:"home_team"`
	AwayTeam struct {
		FullName string `json:"full_name"`
	} `json:"visitor_team"`
}

type ballDontLiePage struct {
	Data []ballDontLieGame `json:"data"`
	Meta struct {
		NextCursor *int `json:"next_cursor"`
	} `json:"meta"`
}

// FetchGames retrieves games scheduled within the date range
func (s *BallDontLieSource) FetchGames(ctx context.Context, startDate, endDate time.Time) ([]GameData, error) {
	fetchedAt := time.Now().UTC()
	var games []GameData
	cursor := 0

	for {
		endpoint := fmt.Sprintf("%s?start_date=%s&end_date=%s&per_page=100",
			s.baseURL, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
		if cursor > 0 {
			endpoint += fmt.Sprintf("&cursor=%d", cursor)
		}

		body, err := s.getAuthorized(ctx, endpoint)
		if err != nil {
			return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "failed to fetch games", err)
		}

		var page ballDontLiePage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, NewSourceError(s.Name(), ErrCodeInvalidData, "failed to parse games payload", err)
		}

		for _, raw := range page.Data {
			game, err := s.normalize(raw, fetchedAt)
			if err != nil {
				s.logger.WithField("game", raw.ID).WithError(err).Warn("Skipping malformed game")
				continue
			}
			games = append(games, game)
		}

		if page.Meta.NextCursor == nil {
			break
		}
		cursor = *page.Meta.NextCursor
	}

	return games, nil
}

func (s *BallDontLieSource) normalize(raw ballDontLieGame, fetchedAt time.Time) (GameData, error) {
	startTime, err := parseGameTime(raw.Datetime, raw.Date)
	if err != nil {
		return GameData{}, err
	}

	game := GameData{
		SourceID:  fmt.Sprintf("%d", raw.ID),
		HomeTeam:  raw.HomeTeam.FullName,
		AwayTeam:  raw.AwayTeam.FullName,
		StartTime: startTime,
		Status:    "scheduled",
		FetchedAt: fetchedAt,
	}

	if strings.EqualFold(raw.Status, "Final") {
		game.Status = "final"
		home, away := raw.HomeScore, raw.AwayScore
		game.HomeScore = &home
		game.AwayScore = &away
	}

	return game, nil
}

// parseGameTime prefers the exact tip-off datetime and falls back to
// the calendar date at midnight UTC.
func parseGameTime(datetime, date string) (time.Time, error) {
	if datetime != "" {
		if t, err := time.Parse(time.RFC3339, datetime); err == nil {
			return t.UTC(), nil
		}
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable game date %q: %w", date, err)
	}
	return t.UTC(), nil
}

func (s *BallDontLieSource) getAuthorized(ctx context.Context, endpoint string) ([]byte, error) {
	// The free tier works without a key
	if s.apiKey != "" {
		endpoint += "&api_key=" + s.apiKey
	}
	return s.client.GetBody(ctx, endpoint)
}

// Close releases the underlying HTTP client
func (s *BallDontLieSource) Close() error {
	return s.client.Close()
}
