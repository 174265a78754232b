package scheduler

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestScheduleInvalidCronExpression(t *testing.T) {
	s := NewScheduler(nil, nil, quietLogger())

	if err := s.ScheduleOddsPolling("not a cron expr"); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if err := s.SchedulePaperTrading("61 * * * *"); err == nil {
		t.Fatal("expected error for out-of-range cron field")
	}
}

func TestStartWithoutJobs(t *testing.T) {
	s := NewScheduler(nil, nil, quietLogger())

	err := s.Start()
	if err == nil {
		t.Fatal("expected error when starting with no jobs")
	}
	if !strings.Contains(err.Error(), "no jobs scheduled") {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsRunning() {
		t.Fatal("scheduler should not be running after failed start")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	s := NewScheduler(nil, nil, quietLogger())
	s.gracefulTimeout = time.Second

	if err := s.SchedulePaperTrading("0 12 * * *"); err != nil {
		t.Fatalf("SchedulePaperTrading() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler should report running after start")
	}
	if err := s.Start(); err == nil {
		t.Fatal("expected error on second start")
	}
	if err := s.ScheduleOddsPolling("*/15 * * * *"); err == nil {
		t.Fatal("expected error scheduling while running")
	}
	if next := s.GetNextRun(); next.IsZero() {
		t.Fatal("expected a next run time while running")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.IsRunning() {
		t.Fatal("scheduler should not report running after stop")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() on stopped scheduler error = %v", err)
	}
}
