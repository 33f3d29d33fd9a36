package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"shared-wallet-backend/internal/jobs"
	"shared-wallet-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner. It fails
// if any configured schedule cannot be parsed.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Get().Handler(), slog.LevelWarn))

	// UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	// Pending snapshots only exist in the server that failed to save them.
	if !s.jobs.Standalone() {
		if _, err := s.cron.AddFunc(cfg.RetryPendingSnapshots, s.jobs.RetryPendingSnapshots); err != nil {
			logger.Error("Failed to register RetryPendingSnapshots job", "schedule", cfg.RetryPendingSnapshots, "error", err)
			return err
		}
	}

	if _, err := s.cron.AddFunc(cfg.SendDebtReminders, s.jobs.SendDebtReminders); err != nil {
		logger.Error("Failed to register SendDebtReminders job", "schedule", cfg.SendDebtReminders, "error", err)
		return err
	}

	logger.Info("All cron jobs registered successfully", "entries", len(s.cron.Entries()))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
