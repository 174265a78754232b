package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/courtside/internal/config"
)

// SimConfig extends core config with simulation-specific settings
type SimConfig struct {
	StartDate       time.Time
	EndDate         time.Time
	InitialBankroll float64
	OutputPath      string
}

// FromConfig converts app config to simulation config
func FromConfig(cfg *config.BacktestConfig) (SimConfig, error) {
	if cfg == nil {
		return SimConfig{}, fmt.Errorf("backtest config is required")
	}
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return SimConfig{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.EndDate)
	if err != nil {
		return SimConfig{}, fmt.Errorf("invalid end date: %w", err)
	}

	sim := SimConfig{
		StartDate:       start,
		EndDate:         end.Add(24*time.Hour - time.Nanosecond),
		InitialBankroll: cfg.InitialBankroll,
		OutputPath:      cfg.OutputPath,
	}

	return sim, sim.Validate()
}

// Validate validates simulation config parameters
func (s SimConfig) Validate() error {
	if s.StartDate.After(s.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if s.InitialBankroll <= 0 {
		return fmt.Errorf("initial bankroll must be positive")
	}
	return nil
}
