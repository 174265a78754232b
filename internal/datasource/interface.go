package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleSource defines the interface for fetching game schedules and
// results from external providers.
type ScheduleSource interface {
	// FetchGames retrieves games scheduled within the date range
	FetchGames(ctx context.Context, startDate, endDate time.Time) ([]GameData, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// OddsSource defines the interface for fetching moneyline odds
type OddsSource interface {
	// FetchOdds retrieves current moneyline odds for upcoming games
	FetchOdds(ctx context.Context) ([]GameOddsData, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// GameData represents normalized game data from any provider
type GameData struct {
	SourceID  string    `json:"source_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`
	Status    string    `json:"status"`
	HomeScore *int      `json:"home_score"`
	AwayScore *int      `json:"away_score"`
	FetchedAt time.Time `json:"fetched_at"`
}

// GameOddsData represents one provider game with per-book moneylines
type GameOddsData struct {
	SourceID  string         `json:"source_id"`
	HomeTeam  string         `json:"home_team"`
	AwayTeam  string         `json:"away_team"`
	StartTime time.Time      `json:"start_time"`
	Quotes    []BookOddsData `json:"quotes"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// BookOddsData is one book's moneyline pair. Prices are carried as
// decimals until validated so malformed provider values round-trip
// exactly in error reports.
type BookOddsData struct {
	Book        string          `json:"book"`
	HomeDecimal decimal.Decimal `json:"home_decimal"`
	AwayDecimal decimal.Decimal `json:"away_decimal"`
	CapturedAt  time.Time       `json:"captured_at"`
}

// SourceError represents errors from data source operations
type SourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
