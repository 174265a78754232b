package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/devig"
	"github.com/yourusername/courtside/internal/edge"
	"github.com/yourusername/courtside/internal/elo"
	"github.com/yourusername/courtside/internal/logger"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/papertrade"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/scheduler"
	"github.com/yourusername/courtside/internal/service"
	"github.com/yourusername/courtside/internal/staking"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLogger  *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
	executor   *papertrade.Executor
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "Run the paper trading pipeline",
	Long:  `Settles pending paper bets, updates team ratings from final games, and places bets on upcoming games with a detected edge.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
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
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single paper trading cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := executor.RunOnce(cmd.Context(), time.Now().UTC())
		if err != nil {
			return err
		}
		fmt.Printf("settled=%d ratings=%d placed=%d balance=%.2f\n",
			result.BetsSettled, result.RatingsApplied, result.BetsPlaced, result.Balance)
		return nil
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run odds polling and daily trading cycles until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		oddsSource := datasource.NewOddsAPISource(cfg.DataIngestion, appLogger)
		scheduleSource := datasource.NewBallDontLieSource(cfg.DataIngestion, appLogger)
		ingestionSvc := service.NewIngestionService(repos, scheduleSource, oddsSource, appLogger)

		sched := scheduler.NewScheduler(ingestionSvc, executor, appLogger)
		if err := sched.ScheduleOddsPolling(cfg.DataIngestion.OddsPollSchedule); err != nil {
			return err
		}
		if err := sched.SchedulePaperTrading(cfg.PaperTrading.Schedule); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}

		var metricsServer *metrics.Server
		if cfg.Metrics.Enabled {
			metricsServer = metrics.NewServer(cfg.Metrics, appLogger)
			go func() {
				if err := metricsServer.Start(); err != nil {
					appLogger.WithError(err).Error("Metrics server stopped")
				}
			}()
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		appLogger.Info("Shutting down")
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				appLogger.WithError(err).Warn("Metrics server shutdown failed")
			}
		}
		return sched.Stop()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("papertrade %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(loaded, region, secretName); err != nil {
			return err
		}
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
	if err != nil {
		return err
	}

	model := elo.NewModel(cfg.Elo)
	devigger := devig.New(devig.Method(cfg.Devig.Method),
		devig.WithPowerExponent(cfg.Devig.PowerExponent),
		devig.WithConvergence(cfg.Devig.MaxIterations, cfg.Devig.Tolerance),
	)
	detector := edge.NewDetector(cfg.Edge, devigger, appLogger)
	policy, err := staking.NewPolicy(cfg.Staking)
	if err != nil {
		return err
	}
	audit := logger.NewAuditLogger(appLogger)
	if cfg.PaperTrading.AuditLogPath != "" {
		audit, err = logger.NewFileAuditLogger(cfg.PaperTrading.AuditLogPath)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	executor = papertrade.NewExecutor(cfg.PaperTrading, cfg.Features.CLVTrackingEnabled,
		model, detector, policy, repos, audit, appLogger)
	return nil
}
