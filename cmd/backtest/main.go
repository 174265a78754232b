// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/backtest"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/devig"
	"github.com/yourusername/courtside/internal/edge"
	"github.com/yourusername/courtside/internal/elo"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/staking"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		output     = flag.String("output", "", "Override output directory for reports")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := loadConfigWithSecrets(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)

	if *startDate != "" {
		cfg.Backtest.StartDate = *startDate
	}
	if *endDate != "" {
		cfg.Backtest.EndDate = *endDate
	}
	if *output != "" {
		cfg.Backtest.OutputPath = *output
	}

	simConfig, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		log.Fatalf("Invalid backtest config: %v", err)
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to build repositories: %v", err)
	}

	engine, err := buildEngine(cfg, simConfig, repos, log)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	began := time.Now()
	state, simMetrics, err := engine.Run(ctx)
	metrics.BacktestDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		// A failed run still carries a partial ledger worth writing out
		if state != nil && simConfig.OutputPath != "" {
			if writeErr := backtest.WriteReports(simMetrics, state, simConfig.OutputPath); writeErr != nil {
				log.WithError(writeErr).Error("Failed to write partial reports")
			}
		}
		log.Fatalf("Backtest failed: %v", err)
	}

	fmt.Print(backtest.GenerateConsoleReport(simMetrics))
	if simConfig.OutputPath != "" {
		if err := backtest.WriteReports(simMetrics, state, simConfig.OutputPath); err != nil {
			log.Fatalf("Failed to write reports: %v", err)
		}
		log.WithField("path", simConfig.OutputPath).Info("Reports written")
	}
}

func buildEngine(cfg *config.Config, simConfig backtest.SimConfig, repos *repository.Repositories, log *logrus.Logger) (*backtest.Engine, error) {
	model := elo.NewModel(cfg.Elo)
	trainer := elo.NewTrainer(model, cfg.Elo, log)
	devigger := devig.New(devig.Method(cfg.Devig.Method),
		devig.WithPowerExponent(cfg.Devig.PowerExponent),
		devig.WithConvergence(cfg.Devig.MaxIterations, cfg.Devig.Tolerance),
	)
	detector := edge.NewDetector(cfg.Edge, devigger, log)
	policy, err := staking.NewPolicy(cfg.Staking)
	if err != nil {
		return nil, err
	}

	return backtest.NewEngine(simConfig, model, trainer, detector, policy, repos, log)
}

func loadConfigWithSecrets(path string) *config.Config {
	bootstrap := logrus.New()

	cfg, err := config.Load(path)
	if err != nil {
		bootstrap.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			bootstrap.Fatalf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			bootstrap.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		bootstrap.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}
