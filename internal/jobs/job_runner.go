package jobs

import (
	"context"
	"fmt"

	"shared-wallet-backend/internal/config"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Wallet service.WalletService
	Email  service.EmailService
	// Standalone runners don't share the server's wallets in memory, so they
	// reload them from the store before each read and have no pending snapshots
	// to retry.
	Standalone bool
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// Standalone reports whether the runner lives outside the server process.
func (jr *JobRunner) Standalone() bool {
	return jr.services.Standalone
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	started := logger.JobStarted(jobName)
	defer func() {
		if r := recover(); r != nil {
			logger.WithMethod("JobRunner.runWithRecovery").Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		logger.JobFinished(jobName, started, err)
	}()

	return jobFunc(context.Background())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	if !jr.Standalone() {
		jr.RetryPendingSnapshots()
	}
	jr.SendDebtReminders()
}
