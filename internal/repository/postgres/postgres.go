package postgres

import (
	"database/sql"

	"shared-wallet-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.WalletRepository
	repository.ActivityRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		WalletRepository:   NewWalletRepository(db),
		ActivityRepository: NewActivityRepository(db),
	}
}
