package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/repository/postgres"
)

func sampleWallet() *domain.Wallet {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	return &domain.Wallet{
		ID:   "w1",
		Name: "Flat 4B",
		Members: []domain.Member{
			{ID: "A", Name: "Alex", Status: domain.MemberStatusActive, TotalOwedToCents: 4000, JoinedAt: now},
			{ID: "B", Name: "Blair", Status: domain.MemberStatusActive, TotalOwedCents: 4000, JoinedAt: now},
		},
		Expenses: []domain.Expense{{
			ID: "e1", AmountCents: 8000, Category: domain.CategoryGroceries, PayerID: "A",
			ParticipantIDs: []string{"A", "B"}, Policy: domain.SplitPolicyEqual, CreatedAt: now,
		}},
		Settlements:     []domain.Settlement{},
		TotalSpentCents: 8000,
		Status:          domain.WalletStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestWalletRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWalletRepository(db)
	ctx := context.Background()
	w := sampleWallet()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO wallet_snapshots .* ON CONFLICT \\(id\\) DO UPDATE").
			WithArgs("w1", "Flat 4B", "ACTIVE", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Save(ctx, w))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO wallet_snapshots").
			WillReturnError(errors.New("connection refused"))

		assert.Error(t, repo.Save(ctx, w))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWalletRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		snapshot, err := json.Marshal(sampleWallet())
		require.NoError(t, err)

		mock.ExpectQuery("SELECT snapshot FROM wallet_snapshots WHERE id = \\$1").
			WithArgs("w1").
			WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(snapshot))

		w, err := repo.GetByID(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, sampleWallet(), w)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT snapshot FROM wallet_snapshots WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"snapshot"}))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("CorruptSnapshot", func(t *testing.T) {
		mock.ExpectQuery("SELECT snapshot FROM wallet_snapshots").
			WithArgs("w2").
			WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow([]byte("{not json")))

		_, err := repo.GetByID(ctx, "w2")
		assert.Error(t, err)
	})
}

func TestWalletRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWalletRepository(db)

	first := sampleWallet()
	second := sampleWallet()
	second.ID = "w2"
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)

	mock.ExpectQuery("SELECT snapshot FROM wallet_snapshots ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(a).AddRow(b))

	wallets, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "w1", wallets[0].ID)
	assert.Equal(t, "w2", wallets[1].ID)
	assert.Equal(t, int64(4000), wallets[1].Members[1].TotalOwedCents)
}
