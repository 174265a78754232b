// Package main provides the entry point for the data ingestion CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		mode       = flag.String("mode", "games", "Ingestion mode: games, odds, csv")
		startDate  = flag.String("start-date", "", "Start date for game sync (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "End date for game sync (YYYY-MM-DD)")
		csvPath    = flag.String("csv", "", "Path to historical odds CSV for csv mode")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		return
	}
	log := logger.NewLogger(cfg.App.LogLevel)

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to build repositories: %v", err)
	}

	scheduleSource := datasource.NewBallDontLieSource(cfg.DataIngestion, log)
	oddsSource := datasource.NewOddsAPISource(cfg.DataIngestion, log)
	svc := service.NewIngestionService(repos, scheduleSource, oddsSource, log)

	switch *mode {
	case "games":
		start, end, err := parseRange(*startDate, *endDate)
		if err != nil {
			log.Fatalf("Invalid date range: %v", err)
		}
		result, err := svc.SyncGames(ctx, start, end)
		if err != nil {
			log.Fatalf("Game sync failed: %v", err)
		}
		fmt.Println(result.String())

	case "odds":
		result, err := svc.SyncOdds(ctx)
		if err != nil {
			log.Fatalf("Odds sync failed: %v", err)
		}
		fmt.Println(result.String())

	case "csv":
		if *csvPath == "" {
			log.Fatal("csv mode requires -csv")
		}
		result, err := svc.LoadCSV(ctx, *csvPath)
		if err != nil {
			log.Fatalf("CSV load failed: %v", err)
		}
		fmt.Println(result.String())

	default:
		log.Fatalf("Unknown mode %q", *mode)
	}
}

// parseRange defaults to the trailing week when dates are omitted
func parseRange(startArg, endArg string) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)

	if startArg != "" {
		parsed, err := time.Parse("2006-01-02", startArg)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad start date: %w", err)
		}
		start = parsed
	}
	if endArg != "" {
		parsed, err := time.Parse("2006-01-02", endArg)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad end date: %w", err)
		}
		end = parsed
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start after end")
	}
	return start, end, nil
}
