package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/repository"
)

type walletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Save(ctx context.Context, w *domain.Wallet) error {
	logger.EnterMethod("walletRepository.Save", "walletID", w.ID, "status", w.Status)

	snapshot, err := json.Marshal(w)
	if err != nil {
		logger.ExitMethodWithError("walletRepository.Save", err, "reason", "failed to marshal snapshot")
		return err
	}

	query := `INSERT INTO wallet_snapshots (id, name, status, snapshot, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO UPDATE
	          SET name = EXCLUDED.name, status = EXCLUDED.status, snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`
	logger.DatabaseCall("UPSERT", "wallet_snapshots", "walletID", w.ID, "bytes", len(snapshot))

	result, err := r.db.ExecContext(ctx, query, w.ID, w.Name, string(w.Status), snapshot, w.UpdatedAt.UTC())
	var rows int64
	if err == nil {
		rows, _ = result.RowsAffected()
	}
	logger.DatabaseResult("UPSERT", rows, err, "walletID", w.ID)

	if err != nil {
		logger.ExitMethodWithError("walletRepository.Save", err, "walletID", w.ID)
		return err
	}
	logger.ExitMethod("walletRepository.Save", "walletID", w.ID)
	return nil
}

func (r *walletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	query := `SELECT snapshot FROM wallet_snapshots WHERE id = $1`
	logger.DatabaseCall("SELECT", "wallet_snapshots", "walletID", id)

	var snapshot []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("SELECT", 0, nil, "walletID", id)
		return nil, fmt.Errorf("%w: wallet %q", domain.ErrNotFound, id)
	}
	logger.DatabaseResult("SELECT", 1, err, "walletID", id)
	if err != nil {
		return nil, err
	}

	return decodeSnapshot(snapshot)
}

func (r *walletRepository) List(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT snapshot FROM wallet_snapshots ORDER BY id`
	logger.DatabaseCall("SELECT", "wallet_snapshots")

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, err
		}
		w, err := decodeSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.DatabaseResult("SELECT", int64(len(wallets)), nil)
	return wallets, nil
}

func decodeSnapshot(snapshot []byte) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := json.Unmarshal(snapshot, &w); err != nil {
		return nil, fmt.Errorf("decode wallet snapshot: %w", err)
	}
	return &w, nil
}
