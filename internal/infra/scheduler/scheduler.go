// Package scheduler runs the daily billing jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 10 * time.Minute

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron engine whose specs carry a leading seconds field.
// Jobs never overlap with themselves; a run that is still going when the
// next tick fires is skipped.
type Scheduler struct {
	cron       *cron.Cron
	jobTimeout time.Duration
}

// New creates a scheduler evaluating specs in location.
func New(location *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		jobTimeout: defaultJobTimeout,
	}
}

// Add registers job under name. Errors from the job are logged, never propagated.
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s job with spec %q: %w", name, spec, err)
	}
	slog.Info("Scheduled job registered", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	started := time.Now()
	logger := slog.With("job", name)
	logger.Info("Scheduled job started")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Scheduled job panicked", "panic", r)
		}
	}()

	if err := job(ctx); err != nil {
		logger.Error("Scheduled job failed", "error", err, "duration", time.Since(started))
		return
	}
	logger.Info("Scheduled job completed", "duration", time.Since(started))
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("Scheduler stopped")
	case <-ctx.Done():
		slog.Warn("Scheduler stop timed out with jobs still running")
	}
}
