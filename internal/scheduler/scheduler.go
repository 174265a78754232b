// Package scheduler drives the recurring ingestion and paper trading
// jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/papertrade"
	"github.com/yourusername/courtside/internal/service"
)

// Scheduler manages the odds polling and paper trading cron jobs
type Scheduler struct {
	cron            *cron.Cron
	ingestionSvc    *service.IngestionService
	executor        *papertrade.Executor
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	cycleRunning    bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(ingestionSvc *service.IngestionService, executor *papertrade.Executor, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc:    ingestionSvc,
		executor:        executor,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleOddsPolling schedules recurring odds ingestion
func (s *Scheduler) ScheduleOddsPolling(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := s.ingestionSvc.SyncOdds(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled odds poll failed")
			return
		}
		s.logger.WithField("metrics", result.String()).Debug("Scheduled odds poll complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add odds polling job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled odds polling")
	return nil
}

// SchedulePaperTrading schedules the daily paper trading cycle. An
// overlap guard skips a tick if the previous cycle is still running.
func (s *Scheduler) SchedulePaperTrading(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		if !s.beginCycle() {
			s.logger.Warn("Previous paper trading cycle still running, skipping tick")
			return
		}
		defer s.endCycle()

		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		result, err := s.executor.RunOnce(ctx, time.Now().UTC())
		if err != nil {
			s.logger.WithError(err).Error("Scheduled paper trading cycle failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"settled": result.BetsSettled,
			"placed":  result.BetsPlaced,
			"balance": result.Balance,
		}).Info("Scheduled paper trading cycle complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add paper trading job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled paper trading")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for in-flight jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out waiting for jobs")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

func (s *Scheduler) beginCycle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cycleRunning {
		return false
	}
	s.cycleRunning = true
	return true
}

func (s *Scheduler) endCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycleRunning = false
}
