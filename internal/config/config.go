// Package config provides configuration management for the Courtside engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	Elo           EloConfig           `mapstructure:"elo" validate:"required"`
	Devig         DevigConfig         `mapstructure:"devig" validate:"required"`
	Edge          EdgeConfig          `mapstructure:"edge" validate:"required"`
	Staking       StakingConfig       `mapstructure:"staking" validate:"required"`
	Backtest      BacktestConfig      `mapstructure:"backtest" validate:"required"`
	PaperTrading  PaperTradingConfig  `mapstructure:"paper_trading" validate:"required"`
	DataIngestion DataIngestionConfig `mapstructure:"data_ingestion" validate:"required"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
	Features      FeaturesConfig      `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// EloConfig represents rating model parameters
type EloConfig struct {
	KFactor        float64 `mapstructure:"k_factor" validate:"required,gt=0"`
	HomeAdvantage  float64 `mapstructure:"home_advantage" validate:"gte=0"`
	InitialRating  float64 `mapstructure:"initial_rating" validate:"required,gt=0"`
	UseMOVWeight   bool    `mapstructure:"use_mov_weighting"`
	UseRestDays    bool    `mapstructure:"use_rest_days"`
	RestPenalty    float64 `mapstructure:"rest_penalty" validate:"gte=0"`
	UseRecency     bool    `mapstructure:"use_recency"`
	RecencyDays    int     `mapstructure:"recency_days" validate:"gte=0"`
	RecencyWeight  float64 `mapstructure:"recency_weight" validate:"gte=0"`
	WarmStart      bool    `mapstructure:"warm_start"`
	// WarmStartRatings maps team name to its season-opening rating.
	WarmStartRatings map[string]float64 `mapstructure:"warm_start_ratings"`
}

// DevigConfig selects and parameterizes the vig-removal method
type DevigConfig struct {
	Method        string  `mapstructure:"method" validate:"required,devigmethod"`
	PowerExponent float64 `mapstructure:"power_exponent" validate:"gt=0"`
	MaxIterations int     `mapstructure:"max_iterations" validate:"gt=0"`
	Tolerance     float64 `mapstructure:"tolerance" validate:"gt=0"`
}

// EdgeConfig represents edge detection parameters
type EdgeConfig struct {
	MinEdge   float64 `mapstructure:"min_edge" validate:"gte=0,lte=1"`
	Shrinkage float64 `mapstructure:"shrinkage" validate:"gte=0,lte=1"`
}

// StakingConfig represents bet sizing parameters
type StakingConfig struct {
	BaseFraction float64 `mapstructure:"base_fraction" validate:"required,gt=0,lte=1"`
	MaxFraction  float64 `mapstructure:"max_fraction" validate:"required,gt=0,lte=1"`
	// ExhaustionPolicy controls behavior when the stake would exceed the
	// available balance: "clamp" bets the remainder, "skip" places no bet.
	ExhaustionPolicy string `mapstructure:"exhaustion_policy" validate:"required,oneof=clamp skip"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate       string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	InitialBankroll float64 `mapstructure:"initial_bankroll" validate:"required,gt=0"`
	OutputPath      string  `mapstructure:"output_path" validate:"required"`
}

// PaperTradingConfig represents the periodic paper trading job
type PaperTradingConfig struct {
	Schedule        string  `mapstructure:"schedule" validate:"required"`
	InitialBankroll float64 `mapstructure:"initial_bankroll" validate:"required,gt=0"`
	AuditLogPath    string  `mapstructure:"audit_log_path"`
}

// DataIngestionConfig represents upstream provider configuration
type DataIngestionConfig struct {
	OddsAPIKey         string  `mapstructure:"odds_api_key"`
	OddsAPIURL         string  `mapstructure:"odds_api_url" validate:"required,url"`
	ScheduleAPIKey     string  `mapstructure:"schedule_api_key"`
	ScheduleAPIURL     string  `mapstructure:"schedule_api_url" validate:"required,url"`
	OddsPollSchedule   string  `mapstructure:"odds_poll_schedule" validate:"required"`
	RequestsPerSecond  float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	PaperTradingEnabled bool `mapstructure:"paper_trading_enabled"`
	CLVTrackingEnabled  bool `mapstructure:"clv_tracking_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
