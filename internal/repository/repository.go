package repository

import (
	"context"

	"shared-wallet-backend/internal/domain"
)

// WalletRepository persists whole-wallet snapshots. Save is an upsert.
type WalletRepository interface {
	Save(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	// ListByWallet returns the newest activities first. An empty types slice means all types.
	ListByWallet(ctx context.Context, walletID string, types []domain.ActivityType, limit, offset int32) ([]domain.Activity, int32, error)
}
