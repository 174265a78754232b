package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/elo"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
)

var (
	configFile string
	horizonArg string
	dryRun     bool
	appLogger  *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&horizonArg, "horizon", "", "Train on games up to this date (YYYY-MM-DD, default today)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print trained ratings without persisting them")
}

var rootCmd = &cobra.Command{
	Use:   "train",
	Short: "Train team ratings from historical results",
	Long:  `Replays final games in chronological order into the rating model and persists the trained ratings, optionally seeding from the configured warm-start snapshot.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: runTraining,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runTraining(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	horizon := time.Now().UTC()
	if horizonArg != "" {
		parsed, err := time.Parse("2006-01-02", horizonArg)
		if err != nil {
			return fmt.Errorf("invalid horizon: %w", err)
		}
		horizon = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	model := elo.NewModel(cfg.Elo)
	trainer := elo.NewTrainer(model, cfg.Elo, appLogger)
	book := elo.NewRatings(model.InitialRating())

	teams, err := repos.Team.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}
	byName := make(map[string]uuid.UUID, len(teams))
	byID := make(map[uuid.UUID]*models.Team, len(teams))
	for _, team := range teams {
		byName[team.Name] = team.ID
		byID[team.ID] = team
	}

	if cfg.Elo.WarmStart && len(cfg.Elo.WarmStartRatings) > 0 {
		trainer.WarmStart(book, cfg.Elo.WarmStartRatings, func(name string) (uuid.UUID, bool) {
			id, ok := byName[name]
			return id, ok
		})
	}

	games, err := repos.Game.GetFinalBefore(ctx, horizon)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}

	result, err := trainer.Train(book, games, horizon)
	if err != nil {
		return err
	}
	metrics.RatedTeams.Set(float64(result.TeamsRated))

	for _, entry := range book.Snapshot() {
		team, ok := byID[entry.TeamID]
		if !ok {
			continue
		}
		fmt.Printf("%-28s %8.1f\n", team.Name, entry.Rating)
		if dryRun {
			continue
		}
		lastGame, ok := book.LastGame(entry.TeamID)
		if !ok {
			if team.LastGameAt != nil {
				lastGame = *team.LastGameAt
			} else {
				lastGame = horizon
			}
		}
		if err := repos.Team.UpdateRating(ctx, entry.TeamID, entry.Rating, lastGame); err != nil {
			return fmt.Errorf("failed to persist rating for %s: %w", team.Name, err)
		}
	}

	fmt.Printf("trained %d games, %d teams\n", result.GamesProcessed, result.TeamsRated)
	return nil
}

func loadConfig() error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func setupDependencies(ctx context.Context) error {
	appLogger = logger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	return err
}
