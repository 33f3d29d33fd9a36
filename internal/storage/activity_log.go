package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/logger"
)

// FileActivityLog appends activities to one JSON-lines file per wallet.
type FileActivityLog struct {
	dir string
	mu  sync.Mutex
}

func NewFileActivityLog(dir string) (*FileActivityLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create activity directory: %w", err)
	}
	return &FileActivityLog{dir: dir}, nil
}

func (l *FileActivityLog) Create(ctx context.Context, a *domain.Activity) error {
	path, err := l.pathFor(a.WalletID)
	if err != nil {
		return err
	}

	line, err := json.Marshal(a)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		logger.Error("Failed to open activity log", "path", path, "error", err)
		return err
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return f.Close()
}

// ListByWallet reads the whole log; feeds are small enough for that.
func (l *FileActivityLog) ListByWallet(ctx context.Context, walletID string, types []domain.ActivityType, limit, offset int32) ([]domain.Activity, int32, error) {
	path, err := l.pathFor(walletID)
	if err != nil {
		return nil, 0, err
	}

	l.mu.Lock()
	activities, err := readActivities(path)
	l.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}

	filtered := activities[:0]
	for _, a := range activities {
		if len(types) == 0 || slices.Contains(types, a.Type) {
			filtered = append(filtered, a)
		}
	}

	// newest first; file order breaks ties
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int32(len(filtered))
	if offset >= total {
		return []domain.Activity{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return filtered[offset:end], total, nil
}

func readActivities(path string) ([]domain.Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var activities []domain.Activity
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var a domain.Activity
		if err := json.Unmarshal(scanner.Bytes(), &a); err != nil {
			return nil, fmt.Errorf("decode activity in %s: %w", path, err)
		}
		activities = append(activities, a)
	}
	return activities, scanner.Err()
}

func (l *FileActivityLog) pathFor(walletID string) (string, error) {
	if walletID == "" || filepath.Base(walletID) != walletID || walletID[0] == '.' {
		return "", fmt.Errorf("%w: unusable wallet id %q", domain.ErrInvalidInput, walletID)
	}
	return filepath.Join(l.dir, walletID+".jsonl"), nil
}
