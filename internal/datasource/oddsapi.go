package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
)

// OddsAPISource fetches NBA moneyline odds from The Odds API
type OddsAPISource struct {
	baseURL string
	apiKey  string
	client  *RateLimitedHTTPClient
	logger  *logrus.Logger
}

// NewOddsAPISource creates an odds provider from ingestion config
func NewOddsAPISource(cfg config.DataIngestionConfig, logger *logrus.Logger) *OddsAPISource {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.RateLimit = cfg.RequestsPerSecond
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second

	return &OddsAPISource{
		baseURL: cfg.OddsAPIURL,
		apiKey:  cfg.OddsAPIKey,
		client:  NewRateLimitedHTTPClient(httpCfg, logger),
		logger:  logger,
	}
}

// Name returns the name of the data source
func (s *OddsAPISource) Name() string {
	return "oddsapi"
}

// IsEnabled returns whether this data source is currently enabled
func (s *OddsAPISource) IsEnabled() bool {
	return s.apiKey != ""
}

// oddsAPIEvent mirrors the provider's event payload
type oddsAPIEvent struct {
	ID           string    `json:"id"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   []struct {
		Key        string    `json:"key"`
		LastUpdate time.Time `json:"last_update"`
		Markets    []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string          `json:"name"`
				Price decimal.Decimal `json:"price"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// FetchOdds retrieves current moneyline odds for upcoming games
func (s *OddsAPISource) FetchOdds(ctx context.Context) ([]GameOddsData, error) {
	endpoint := fmt.Sprintf("%s?apiKey=%s&regions=us&markets=h2h&oddsFormat=decimal",
		s.baseURL, url.QueryEscape(s.apiKey))

	body, err := s.client.GetBody(ctx, endpoint)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "failed to fetch odds", err)
	}

	var events []oddsAPIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, "failed to parse odds payload", err)
	}

	fetchedAt := time.Now().UTC()
	games := make([]GameOddsData, 0, len(events))
	for _, event := range events {
		game := GameOddsData{
			SourceID:  event.ID,
			HomeTeam:  event.HomeTeam,
			AwayTeam:  event.AwayTeam,
			StartTime: event.CommenceTime,
			FetchedAt: fetchedAt,
		}

		for _, book := range event.Bookmakers {
			quote, ok := extractMoneyline(event, book.Key, book.LastUpdate)
			if !ok {
				s.logger.WithFields(logrus.Fields{
					"event": event.ID,
					"book":  book.Key,
				}).Debug("Book carries no usable moneyline, skipping")
				continue
			}
			game.Quotes = append(game.Quotes, quote)
		}

		if len(game.Quotes) > 0 {
			games = append(games, game)
		}
	}

	return games, nil
}

// extractMoneyline pulls the h2h market for one book, matching outcomes
// to the event's home and away team names.
func extractMoneyline(event oddsAPIEvent, bookKey string, lastUpdate time.Time) (BookOddsData, bool) {
	for _, book := range event.Bookmakers {
		if book.Key != bookKey {
			continue
		}
		for _, market := range book.Markets {
			if market.Key != "h2h" {
				continue
			}
			quote := BookOddsData{Book: bookKey, CapturedAt: lastUpdate}
			var haveHome, haveAway bool
			for _, outcome := range market.Outcomes {
				switch outcome.Name {
				case event.HomeTeam:
					quote.HomeDecimal = outcome.Price
					haveHome = true
				case event.AwayTeam:
					quote.AwayDecimal = outcome.Price
					haveAway = true
				}
			}
			if haveHome && haveAway {
				return quote, true
			}
		}
	}
	return BookOddsData{}, false
}

// Close releases the underlying HTTP client
func (s *OddsAPISource) Close() error {
	return s.client.Close()
}
