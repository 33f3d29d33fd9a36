package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"shared-wallet-backend/internal/activity"
	"shared-wallet-backend/internal/config"
	"shared-wallet-backend/internal/ledger"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/repository"
	"shared-wallet-backend/internal/repository/postgres"
	"shared-wallet-backend/internal/service"
	"shared-wallet-backend/internal/storage"
)

func main() {
	seedFile := flag.String("file", "config/seed.example.yaml", "Path to the seed data file")
	configOverride := flag.String("config", "", "Path to configuration file (defaults to config_file in the seed data)")
	flag.Parse()

	_ = godotenv.Load()

	seed, err := readSeedFile(*seedFile)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	configPath := *configOverride
	if configPath == "" {
		configPath = resolveConfigPath(seed.ConfigFile)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	walletRepo, activityRepo, closeStore, err := openStores(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	dispatcher := activity.NewDispatcher(cfg.Activity.BufferSize, cfg.ActivityDeliveryTimeout())
	dispatcher.Register("activity-feed", service.NewActivityRepositorySink(activityRepo))
	dispatcher.Start()

	svc := service.NewWalletService(walletRepo, dispatcher)
	wallets, err := populate(context.Background(), svc, seed)
	dispatcher.Shutdown()
	if err != nil {
		log.Fatalf("Failed to populate data: %v", err)
	}

	for _, w := range wallets {
		log.Printf("Seeded wallet %s (%s): %d members, %d expenses, total %s",
			w.Name, w.ID, len(w.Members), len(w.Expenses), ledger.FormatAmount(w.TotalSpentCents))
	}
	if pending := svc.PendingSnapshots(); len(pending) > 0 {
		log.Fatalf("Some wallets were not saved: %v", pending)
	}
	log.Println("Seed data successfully populated")
}

func resolveConfigPath(configPath string) string {
	if configPath == "" {
		return "config/config.dev.yaml"
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// Try from project root
	fullPath := filepath.Join(findProjectRoot(), configPath)
	if _, err := os.Stat(fullPath); err == nil {
		return fullPath
	}
	return configPath
}

func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "."
}

func openStores(cfg *config.Config) (repository.WalletRepository, repository.ActivityRepository, func(), error) {
	if cfg.Storage.Type == config.StorageTypeFile {
		wallets, err := storage.NewFileWalletStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, nil, err
		}
		activities, err := storage.NewFileActivityLog(filepath.Join(filepath.Dir(cfg.Storage.Dir), "activities"))
		if err != nil {
			return nil, nil, nil, err
		}
		return wallets, activities, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	store := postgres.NewStore(db)
	return store.WalletRepository, store.ActivityRepository, func() { db.Close() }, nil
}
