package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/logger"
)

// FileWalletStore keeps one JSON snapshot per wallet on the local filesystem.
// Intended for development and single-node deployments without PostgreSQL.
type FileWalletStore struct {
	dir string
}

// NewFileWalletStore creates the snapshot directory if it doesn't exist.
func NewFileWalletStore(dir string) (*FileWalletStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileWalletStore{dir: dir}, nil
}

// Save writes the snapshot to a temp file in the same directory and renames it
// over the previous one, so readers never see a half-written file.
func (s *FileWalletStore) Save(ctx context.Context, w *domain.Wallet) error {
	logger.EnterMethod("FileWalletStore.Save", "walletID", w.ID)

	path, err := s.pathFor(w.ID)
	if err != nil {
		logger.ExitMethodWithError("FileWalletStore.Save", err, "walletID", w.ID)
		return err
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		logger.ExitMethodWithError("FileWalletStore.Save", err, "reason", "failed to marshal snapshot")
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+w.ID+"-*.tmp")
	if err != nil {
		logger.ExitMethodWithError("FileWalletStore.Save", err, "walletID", w.ID)
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		logger.ExitMethodWithError("FileWalletStore.Save", err, "walletID", w.ID)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		logger.ExitMethodWithError("FileWalletStore.Save", err, "walletID", w.ID)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	logger.ExitMethod("FileWalletStore.Save", "walletID", w.ID, "path", path)
	return nil
}

func (s *FileWalletStore) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: wallet %q", domain.ErrNotFound, id)
		}
		return nil, err
	}

	var w domain.Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode wallet snapshot %s: %w", path, err)
	}
	return &w, nil
}

// List returns every stored wallet ordered by id. Stray temp files are ignored.
func (s *FileWalletStore) List(ctx context.Context) ([]domain.Wallet, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)

	wallets := make([]domain.Wallet, 0, len(ids))
	for _, id := range ids {
		w, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	return wallets, nil
}

func (s *FileWalletStore) pathFor(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: unusable wallet id %q", domain.ErrInvalidInput, id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}
