package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"shared-wallet-backend/internal/config"
	"shared-wallet-backend/internal/jobs"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/repository"
	"shared-wallet-backend/internal/repository/postgres"
	"shared-wallet-backend/internal/scheduler"
	"shared-wallet-backend/internal/service"
	"shared-wallet-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-debt-reminders', 'all')")
	flag.Parse()

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Shared Wallet Cronjob Runner...", "log_level", cfg.Log.Level)

	walletRepo, closeStore, err := openWalletStore(cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	// Initialize Services
	emailService := service.NewEmailService(cfg.Email)
	// Jobs only read wallets here, so no activity publisher is needed.
	walletService := service.NewWalletService(walletRepo, nil)

	jobServices := &jobs.Services{
		Wallet:     walletService,
		Email:      emailService,
		Standalone: true,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-debt-reminders":
		jobRunner.SendDebtReminders()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-debt-reminders\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}

func openWalletStore(cfg *config.Config) (repository.WalletRepository, func(), error) {
	if cfg.Storage.Type == config.StorageTypeFile {
		logger.Info("Using file storage", "dir", cfg.Storage.Dir)
		store, err := storage.NewFileWalletStore(cfg.Storage.Dir)
		return store, func() {}, err
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Database connection established")
	return postgres.NewWalletRepository(db), func() { db.Close() }, nil
}
