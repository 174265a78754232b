// Package config provides configuration management for the Courtside engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment
// variables. Environment variable placeholders in the YAML file (${VAR})
// are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("COURTSIDE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields; a missing config file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("COURTSIDE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "courtside")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("elo.k_factor", 20.0)
	v.SetDefault("elo.home_advantage", 100.0)
	v.SetDefault("elo.initial_rating", 1500.0)
	v.SetDefault("elo.use_mov_weighting", true)
	v.SetDefault("elo.use_rest_days", true)
	v.SetDefault("elo.rest_penalty", 25.0)
	v.SetDefault("elo.use_recency", true)
	v.SetDefault("elo.recency_days", 14)
	v.SetDefault("elo.recency_weight", 1.5)

	v.SetDefault("devig.method", "multiplicative")
	v.SetDefault("devig.power_exponent", 2.0)
	v.SetDefault("devig.max_iterations", 100)
	v.SetDefault("devig.tolerance", 1e-9)

	v.SetDefault("edge.min_edge", 0.04)
	v.SetDefault("edge.shrinkage", 0.0)

	v.SetDefault("staking.base_fraction", 0.005)
	v.SetDefault("staking.max_fraction", 0.01)
	v.SetDefault("staking.exhaustion_policy", "clamp")

	v.SetDefault("backtest.initial_bankroll", 10000.0)
	v.SetDefault("backtest.output_path", "./output/backtest_results.csv")

	v.SetDefault("paper_trading.schedule", "0 11 * * *")
	v.SetDefault("paper_trading.initial_bankroll", 10000.0)

	v.SetDefault("data_ingestion.odds_api_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("data_ingestion.schedule_api_url", "https://api.balldontlie.io/v1")
	v.SetDefault("data_ingestion.odds_poll_schedule", "*/30 * * * *")
	v.SetDefault("data_ingestion.requests_per_second", 5.0)
	v.SetDefault("data_ingestion.max_retries", 3)
	v.SetDefault("data_ingestion.timeout_seconds", 30)
	v.SetDefault("data_ingestion.cache_ttl_seconds", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("features.paper_trading_enabled", true)
	v.SetDefault("features.clv_tracking_enabled", true)
}
