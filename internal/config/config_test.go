package config

import (
	"os"
	"strings"
	"testing"
)

const validConfigPath = "testdata/valid_config.yaml"

func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "courtside" {
		t.Errorf("expected app name 'courtside', got '%s'", cfg.App.Name)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected database port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Elo.KFactor != 20.0 {
		t.Errorf("expected k_factor 20, got %v", cfg.Elo.KFactor)
	}
	if cfg.Devig.Method != "multiplicative" {
		t.Errorf("expected devig method 'multiplicative', got '%s'", cfg.Devig.Method)
	}
	if cfg.Staking.ExhaustionPolicy != "clamp" {
		t.Errorf("expected exhaustion policy 'clamp', got '%s'", cfg.Staking.ExhaustionPolicy)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	if _, err := Load("testdata/nonexistent_config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigEnvironmentExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load("testdata/expansion_config.yaml")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Database.Password != "expanded_secret" {
		t.Errorf("expected password from environment expansion, got '%s'", cfg.Database.Password)
	}
}

func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

func TestValidateInvalidDevigMethod(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.Devig.Method = "balanced-book"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for unknown devig method")
	}
	if !strings.Contains(err.Error(), "multiplicative, power, shin") {
		t.Errorf("expected method list in error, got: %v", err)
	}
}

func TestValidateBaseAboveMax(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.Staking.BaseFraction = 0.05
	cfg.Staking.MaxFraction = 0.01
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when base_fraction exceeds max_fraction")
	}
}

func TestValidateInvertedBacktestDates(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.Backtest.StartDate = "2025-04-13"
	cfg.Backtest.EndDate = "2024-11-01"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for inverted backtest dates")
	}
}

func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	cfg.App.Environment = "production"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for disabled SSL in production")
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Errorf("expected DSN to start with 'postgres://', got '%s'", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected sslmode in DSN, got '%s'", dsn)
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: "development"}}
	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}
	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults("testdata/nonexistent_config.yaml")
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got %v", err)
	}
	if cfg.App.Name != "courtside" {
		t.Errorf("expected default app name, got '%s'", cfg.App.Name)
	}
	if cfg.Elo.InitialRating != 1500.0 {
		t.Errorf("expected default initial rating, got %v", cfg.Elo.InitialRating)
	}
	if cfg.Devig.Method != "multiplicative" {
		t.Errorf("expected default devig method, got '%s'", cfg.Devig.Method)
	}
}
