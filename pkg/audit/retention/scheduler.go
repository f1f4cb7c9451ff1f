package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// CleanupFunc runs one cleanup pass.
type CleanupFunc func(ctx context.Context) audit.CleanupResult

// Scheduler runs retention cleanup on a cron schedule
// (e.g., daily at 3 AM).
type Scheduler struct {
	schedule string
	run      CleanupFunc
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a new retention scheduler. An empty schedule
// disables scheduling.
func NewScheduler(schedule string, run CleanupFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default().With("component", "audit.scheduler")
	}
	return &Scheduler{
		schedule: schedule,
		run:      run,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins scheduled cleanup.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
//
// If the schedule is empty, Start does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("cleanup schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runCleanup(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runCleanup executes a single cleanup cycle.
func (s *Scheduler) runCleanup(ctx context.Context) {
	s.logger.Info("starting scheduled retention cleanup")

	result := s.run(ctx)
	if len(result.Errors) > 0 {
		s.logger.Warn("scheduled cleanup completed with errors",
			"files_removed", result.FilesRemoved,
			"errors", result.Errors,
		)
		return
	}

	s.logger.Info("scheduled cleanup completed",
		"files_removed", result.FilesRemoved,
		"space_freed", result.SpaceFreed,
	)
}

// Stop stops the scheduler and waits for a running cleanup to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled cleanup time, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
