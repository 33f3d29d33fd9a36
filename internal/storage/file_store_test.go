package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/repository"
)

var _ repository.WalletRepository = (*FileWalletStore)(nil)

func testWallet(id string) *domain.Wallet {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	return &domain.Wallet{
		ID:          id,
		Name:        "Trip " + id,
		Members:     []domain.Member{{ID: "A", Name: "Alex", Status: domain.MemberStatusActive, JoinedAt: now}},
		Expenses:    []domain.Expense{},
		Settlements: []domain.Settlement{},
		Status:      domain.WalletStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestFileWalletStore_SaveAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "wallets")
	store, err := NewFileWalletStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	w := testWallet("w1")
	require.NoError(t, store.Save(ctx, w))

	got, err := store.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, w, got)

	// overwrite in place
	w.Name = "Renamed"
	require.NoError(t, store.Save(ctx, w))
	got, err = store.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileWalletStore_GetByID_NotFound(t *testing.T) {
	store, err := NewFileWalletStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileWalletStore_RejectsPathLikeIDs(t *testing.T) {
	store, err := NewFileWalletStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "../escape", ".hidden", `a\b`} {
		err := store.Save(context.Background(), testWallet(id))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, id)
	}
}

func TestFileWalletStore_List(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileWalletStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testWallet("b")))
	require.NoError(t, store.Save(ctx, testWallet("a")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".a-123.tmp"), []byte("partial"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644))

	wallets, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "a", wallets[0].ID)
	assert.Equal(t, "b", wallets[1].ID)
}
