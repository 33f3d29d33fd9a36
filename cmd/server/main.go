package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"shared-wallet-backend/internal/activity"
	grpcapi "shared-wallet-backend/internal/api/grpc"
	httpapi "shared-wallet-backend/internal/api/http"
	"shared-wallet-backend/internal/config"
	"shared-wallet-backend/internal/jobs"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/repository"
	"shared-wallet-backend/internal/repository/postgres"
	"shared-wallet-backend/internal/scheduler"
	"shared-wallet-backend/internal/security"
	"shared-wallet-backend/internal/service"
	"shared-wallet-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Shared Wallet Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())
	logger.Info("Storage configuration", "type", cfg.Storage.Type)
	logger.Info("Email configuration", "provider", cfg.Email.Provider)

	walletRepo, activityRepo, closeStore, err := openStores(cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email)
	hub := httpapi.NewHub()

	dispatcher := activity.NewDispatcher(cfg.Activity.BufferSize, cfg.ActivityDeliveryTimeout())
	dispatcher.Register("activity-feed", service.NewActivityRepositorySink(activityRepo))
	dispatcher.Register("websocket", hub)
	dispatcher.Register("email", service.NewEmailActivitySink(emailSvc))
	dispatcher.Start()

	walletSvc := service.NewWalletService(walletRepo, dispatcher)
	notificationSvc := service.NewNotificationService(activityRepo)

	ctx := context.Background()
	loaded, err := walletSvc.Load(ctx)
	if err != nil {
		logger.Error("Failed to load wallets", "error", err)
		log.Fatalf("Failed to load wallets: %v", err)
	}
	logger.Info("Wallets loaded", "count", loaded)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.AccessTokenTTL())

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := grpcapi.NewServer(tokenManager, walletSvc, notificationSvc)

	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	// Set up HTTP server
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(walletSvc, notificationSvc, hub, tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Get().Handler(), slog.LevelWarn),
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Scheduled jobs run in-process so they see the live pending-snapshot set.
	var cronScheduler *scheduler.Scheduler
	if !cfg.Scheduler.Disabled {
		jobRunner := jobs.NewJobRunner(&jobs.Services{Wallet: walletSvc, Email: emailSvc}, cfg)
		cronScheduler, err = scheduler.NewScheduler(jobRunner)
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		cronScheduler.Start()
	}

	grpcServer.SetServing(true)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down...")
	grpcServer.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	if cronScheduler != nil {
		cronScheduler.Stop()
	}

	// Last attempt at anything that failed to persist.
	if n, err := walletSvc.RetryPendingSnapshots(shutdownCtx); err != nil {
		logger.Warn("Some wallet snapshots could not be saved before exit", "saved", n, "pending", walletSvc.PendingSnapshots(), "error", err)
	}
	dispatcher.Shutdown()
	logger.Info("Shared Wallet Backend stopped. Goodbye!")
}

// openStores connects the wallet snapshot and activity stores selected by
// storage.type. The returned func releases them.
func openStores(cfg *config.Config) (repository.WalletRepository, repository.ActivityRepository, func(), error) {
	switch cfg.Storage.Type {
	case config.StorageTypeFile:
		logger.Info("Using file storage", "dir", cfg.Storage.Dir)
		wallets, err := storage.NewFileWalletStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, nil, err
		}
		activities, err := storage.NewFileActivityLog(filepath.Join(filepath.Dir(cfg.Storage.Dir), "activities"))
		if err != nil {
			return nil, nil, nil, err
		}
		return wallets, activities, func() {}, nil
	default:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logger.Info("Database connection established")
		store := postgres.NewStore(db)
		return store.WalletRepository, store.ActivityRepository, func() { db.Close() }, nil
	}
}
