package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"shared-wallet-backend/internal/domain"
)

// MockWalletRepo
type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) Save(ctx context.Context, w *domain.Wallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}
func (m *MockWalletRepo) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}
func (m *MockWalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

// MockActivityRepo
type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockActivityRepo) ListByWallet(ctx context.Context, walletID string, types []domain.ActivityType, limit, offset int32) ([]domain.Activity, int32, error) {
	args := m.Called(ctx, walletID, types, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Activity), args.Get(1).(int32), args.Error(2)
}

// recordingPublisher keeps every published activity in order.
type recordingPublisher struct {
	mu         sync.Mutex
	activities []domain.Activity
}

func (p *recordingPublisher) Publish(a domain.Activity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activities = append(p.activities, a)
}

func (p *recordingPublisher) types() []domain.ActivityType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.ActivityType
	for _, a := range p.activities {
		out = append(out, a.Type)
	}
	return out
}

func (p *recordingPublisher) last() domain.Activity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activities[len(p.activities)-1]
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
