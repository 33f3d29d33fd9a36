package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/ledger"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/repository"
)

// walletEntry pairs a wallet with the lock that makes its owner the single writer.
type walletEntry struct {
	mu     sync.Mutex
	wallet *domain.Wallet
}

type walletService struct {
	repo      repository.WalletRepository
	publisher ActivityPublisher
	newID     func() string
	now       func() time.Time

	mu      sync.RWMutex
	wallets map[string]*walletEntry

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

type Option func(*walletService)

// WithIDGenerator replaces uuid.NewString for wallet, member, expense,
// settlement and activity ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *walletService) { s.newID = newID }
}

func WithClock(now func() time.Time) Option {
	return func(s *walletService) { s.now = now }
}

func NewWalletService(repo repository.WalletRepository, publisher ActivityPublisher, opts ...Option) WalletService {
	s := &walletService{
		repo:      repo,
		publisher: publisher,
		newID:     uuid.NewString,
		now:       time.Now,
		wallets:   make(map[string]*walletEntry),
		pending:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *walletService) CreateWallet(ctx context.Context, name, description, founderName, founderContact string) (*domain.Wallet, error) {
	logger.EnterMethod("walletService.CreateWallet", "name", name)

	now := s.clock()
	founder := domain.Member{ID: s.newID(), Name: founderName, Contact: founderContact}
	w, err := ledger.NewWallet(s.newID(), name, description, founder, now)
	if err != nil {
		logger.ExitMethodWithError("walletService.CreateWallet", err, "name", name)
		return nil, err
	}

	entry := &walletEntry{wallet: w}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	s.mu.Lock()
	s.wallets[w.ID] = entry
	s.mu.Unlock()

	s.persist(ctx, w)
	s.publish(w, domain.Activity{
		Type:          domain.ActivityTypeWalletCreated,
		ActorMemberID: w.Members[0].ID,
		Message:       fmt.Sprintf("%s created wallet %q", w.Members[0].Name, w.Name),
	}, now)

	logger.ExitMethod("walletService.CreateWallet", "walletID", w.ID)
	return w.Clone(), nil
}

func (s *walletService) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.read(walletID, func(w *domain.Wallet) {
		out = w.Clone()
	})
	return out, err
}

// ListWallets returns copies of every wallet, ordered by creation time.
func (s *walletService) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	s.mu.RLock()
	entries := make([]*walletEntry, 0, len(s.wallets))
	for _, e := range s.wallets {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	wallets := make([]domain.Wallet, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		wallets = append(wallets, *e.wallet.Clone())
		e.mu.Unlock()
	}

	sort.Slice(wallets, func(i, j int) bool {
		if !wallets[i].CreatedAt.Equal(wallets[j].CreatedAt) {
			return wallets[i].CreatedAt.Before(wallets[j].CreatedAt)
		}
		return wallets[i].ID < wallets[j].ID
	})
	return wallets, nil
}

func (s *walletService) DeactivateWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.mutate(ctx, walletID, "walletService.DeactivateWallet", func(w *domain.Wallet, now time.Time) (*domain.Activity, error) {
		changed := ledger.DeactivateWallet(w, now)
		out = w.Clone()
		if !changed {
			return nil, nil
		}
		return &domain.Activity{
			Type:    domain.ActivityTypeWalletDeactivated,
			Message: fmt.Sprintf("Wallet %q was deactivated", w.Name),
		}, nil
	})
	return out, err
}

func (s *walletService) AddMember(ctx context.Context, walletID, name, contact string) (*domain.Member, error) {
	var out domain.Member
	err := s.mutate(ctx, walletID, "walletService.AddMember", func(w *domain.Wallet, now time.Time) (*domain.Activity, error) {
		m, err := ledger.AddMember(w, s.newID(), name, contact, now)
		if err != nil {
			return nil, err
		}
		out = *m
		return &domain.Activity{
			Type:       domain.ActivityTypeMemberAdded,
			Message:    fmt.Sprintf("%s joined %q", m.Name, w.Name),
			Attributes: map[string]string{"member_id": m.ID},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *walletService) DeactivateMember(ctx context.Context, walletID, memberID string) (*domain.Member, error) {
	var out domain.Member
	err := s.mutate(ctx, walletID, "walletService.DeactivateMember", func(w *domain.Wallet, now time.Time) (*domain.Activity, error) {
		m, changed, err := ledger.DeactivateMember(w, memberID, now)
		if err != nil {
			return nil, err
		}
		out = *m
		out.DeactivatedAt = cloneTime(m.DeactivatedAt)
		if !changed {
			return nil, nil
		}
		return &domain.Activity{
			Type:       domain.ActivityTypeMemberDeactivated,
			Message:    fmt.Sprintf("%s left %q with a net balance of %s", m.Name, w.Name, ledger.FormatAmount(m.NetBalanceCents())),
			Attributes: map[string]string{"member_id": m.ID},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *walletService) GetMember(ctx context.Context, walletID, memberID string) (*domain.Member, error) {
	var out *domain.Member
	err := s.read(walletID, func(w *domain.Wallet) {
		if m := w.Member(memberID); m != nil {
			c := *m
			c.DeactivatedAt = cloneTime(m.DeactivatedAt)
			out = &c
		}
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: member %q", domain.ErrNotFound, memberID)
	}
	return out, nil
}

func (s *walletService) AddExpense(ctx context.Context, walletID string, in ledger.ExpenseInput) (*domain.Expense, error) {
	var out *domain.Expense
	err := s.mutate(ctx, walletID, "walletService.AddExpense", func(w *domain.Wallet, now time.Time) (*domain.Activity, error) {
		if in.ID == "" {
			in.ID = s.newID()
		}
		e, err := ledger.AddExpense(w, in, now)
		if err != nil {
			return nil, err
		}
		out = cloneExpense(e)
		return &domain.Activity{
			Type:          domain.ActivityTypeExpenseAdded,
			ActorMemberID: e.PayerID,
			Message:       fmt.Sprintf("%s added a %s expense %q", memberName(w, e.PayerID), ledger.FormatAmount(e.AmountCents), e.Description),
			Attributes: map[string]string{
				"expense_id": e.ID,
				"amount":     ledger.DecimalAmount(e.AmountCents),
				"category":   string(e.Category),
				"policy":     string(e.Policy),
			},
		}, nil
	})
	return out, err
}

func (s *walletService) SettleExpense(ctx context.Context, walletID, expenseID string) (*domain.Expense, error) {
	var out *domain.Expense
	err := s.mutate(ctx, walletID, "walletService.SettleExpense", func(w *domain.Wallet, now time.Time) (*domain.Activity, error) {
		e, changed, err := ledger.SettleExpense(w, expenseID, now)
		if err != nil {
			return nil, err
		}
		out = cloneExpense(e)
		if !changed {
			return nil, nil
		}
		return &domain.Activity{
			Type:       domain.ActivityTypeExpenseSettled,
			Message:    fmt.Sprintf("Expense %q (%s) was marked as settled", e.Description, ledger.FormatAmount(e.AmountCents)),
			Attributes: map[string]string{"expense_id": e.ID},
		}, nil
	})
	return out, err
}

func (s *walletService) AddSettlement(ctx context.Context, walletID string, in ledger.SettlementInput) (*domain.Settlement, error) {
	var out *domain.Settlement
	err := s.mutate(ctx, walletID, "walletService.AddSettlement", func(w *domain.Wallet, now time.Time) (*domain.Activity, error) {
		if in.ID == "" {
			in.ID = s.newID()
		}
		st, err := ledger.AddSettlement(w, in, now)
		if err != nil {
			return nil, err
		}
		out = cloneSettlement(st)
		return &domain.Activity{
			Type:          domain.ActivityTypeSettlementAdded,
			ActorMemberID: st.FromMemberID,
			Message:       fmt.Sprintf("%s paid %s %s", memberName(w, st.FromMemberID), memberName(w, st.ToMemberID), ledger.FormatAmount(st.AmountCents)),
			Attributes:    settlementAttributes(st),
			Recipients:    recipients(w, st.ToMemberID),
		}, nil
	})
	return out, err
}

func (s *walletService) ConfirmSettlement(ctx context.Context, walletID, settlementID string) (*domain.Settlement, error) {
	var out *domain.Settlement
	err := s.mutate(ctx, walletID, "walletService.ConfirmSettlement", func(w *domain.Wallet, now time.Time) (*domain.Activity, error) {
		st, changed, err := ledger.ConfirmSettlement(w, settlementID, now)
		if err != nil {
			return nil, err
		}
		out = cloneSettlement(st)
		if !changed {
			return nil, nil
		}
		return &domain.Activity{
			Type:          domain.ActivityTypeSettlementConfirmed,
			ActorMemberID: st.ToMemberID,
			Message:       fmt.Sprintf("%s confirmed %s from %s", memberName(w, st.ToMemberID), ledger.FormatAmount(st.AmountCents), memberName(w, st.FromMemberID)),
			Attributes:    settlementAttributes(st),
			Recipients:    recipients(w, st.FromMemberID),
		}, nil
	})
	return out, err
}

func (s *walletService) GetSimplifiedDebts(ctx context.Context, walletID string) ([]domain.Debt, error) {
	var debts []domain.Debt
	err := s.read(walletID, func(w *domain.Wallet) {
		debts = ledger.SimplifiedDebts(ledger.BuildDebtMatrix(w))
	})
	return debts, err
}

func (s *walletService) SuggestSettlements(ctx context.Context, walletID string) ([]domain.Debt, error) {
	var debts []domain.Debt
	err := s.read(walletID, func(w *domain.Wallet) {
		debts = ledger.MinimizeTransfers(w)
	})
	return debts, err
}

func (s *walletService) GetDebtReport(ctx context.Context, walletID string, minimized bool) (*DebtReport, error) {
	var report *DebtReport
	err := s.read(walletID, func(w *domain.Wallet) {
		report = &DebtReport{WalletID: w.ID, MemberNames: make(map[string]string, len(w.Members))}
		if minimized {
			report.Debts = ledger.MinimizeTransfers(w)
		} else {
			report.Debts = ledger.SimplifiedDebts(ledger.BuildDebtMatrix(w))
		}
		for _, d := range report.Debts {
			report.MemberNames[d.FromMemberID] = memberName(w, d.FromMemberID)
			report.MemberNames[d.ToMemberID] = memberName(w, d.ToMemberID)
		}
	})
	return report, err
}

func (s *walletService) GetCategoryTotals(ctx context.Context, walletID string) (map[domain.Category]int64, error) {
	var totals map[domain.Category]int64
	err := s.read(walletID, func(w *domain.Wallet) {
		totals = ledger.CategoryTotals(w)
	})
	return totals, err
}

func (s *walletService) GetMonthlyTotals(ctx context.Context, walletID string) ([]domain.MonthlyTotal, error) {
	var totals []domain.MonthlyTotal
	err := s.read(walletID, func(w *domain.Wallet) {
		totals = ledger.MonthlyTotals(w)
	})
	return totals, err
}

func (s *walletService) Load(ctx context.Context) (int, error) {
	logger.EnterMethod("walletService.Load")

	stored, err := s.repo.List(ctx)
	if err != nil {
		logger.ExitMethodWithError("walletService.Load", err)
		return 0, fmt.Errorf("failed to load wallets: %w", err)
	}

	loaded := make(map[string]*walletEntry, len(stored))
	for i := range stored {
		w := stored[i].Clone()
		// Derived balances in the snapshot are never trusted.
		ledger.Recompute(w)
		loaded[w.ID] = &walletEntry{wallet: w}
	}

	s.mu.Lock()
	s.wallets = loaded
	s.mu.Unlock()

	logger.ExitMethod("walletService.Load", "wallets", len(loaded))
	return len(loaded), nil
}

func (s *walletService) RetryPendingSnapshots(ctx context.Context) (int, error) {
	logger.EnterMethod("walletService.RetryPendingSnapshots")

	var saved int
	var errs []error
	for _, id := range s.PendingSnapshots() {
		s.mu.RLock()
		entry, ok := s.wallets[id]
		s.mu.RUnlock()
		if !ok {
			s.clearPending(id)
			continue
		}

		entry.mu.Lock()
		err := s.persist(ctx, entry.wallet)
		entry.mu.Unlock()

		if err != nil {
			errs = append(errs, fmt.Errorf("wallet %s: %w", id, err))
			continue
		}
		saved++
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.ExitMethodWithError("walletService.RetryPendingSnapshots", err, "saved", saved)
	} else {
		logger.ExitMethod("walletService.RetryPendingSnapshots", "saved", saved)
	}
	return saved, err
}

// PendingSnapshots lists wallet ids whose latest state is not yet durable, sorted.
func (s *walletService) PendingSnapshots() []string {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *walletService) clock() time.Time {
	return s.now().UTC()
}

func (s *walletService) entry(walletID string) (*walletEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.wallets[walletID]
	if !ok {
		return nil, fmt.Errorf("%w: wallet %q", domain.ErrNotFound, walletID)
	}
	return e, nil
}

func (s *walletService) read(walletID string, fn func(w *domain.Wallet)) error {
	e, err := s.entry(walletID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.wallet)
	return nil
}

// mutate runs fn as the wallet's only writer. A nil activity means nothing changed,
// so there is nothing to save or announce.
func (s *walletService) mutate(ctx context.Context, walletID, method string, fn func(w *domain.Wallet, now time.Time) (*domain.Activity, error)) error {
	logger.EnterMethod(method, "walletID", walletID)

	e, err := s.entry(walletID)
	if err != nil {
		logger.ExitMethodWithError(method, err, "walletID", walletID)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.clock()
	activity, err := fn(e.wallet, now)
	if err != nil {
		logger.ExitMethodWithError(method, err, "walletID", walletID)
		return err
	}
	if activity == nil {
		logger.ExitMethod(method, "walletID", walletID, "changed", false)
		return nil
	}

	s.persist(ctx, e.wallet)
	s.publish(e.wallet, *activity, now)

	logger.ExitMethod(method, "walletID", walletID, "activity", activity.Type)
	return nil
}

// persist saves a snapshot. Failure is logged and remembered; the in-memory state
// stands either way. Callers hold the wallet's lock.
func (s *walletService) persist(ctx context.Context, w *domain.Wallet) error {
	syncedAt := s.clock()
	snapshot := w.Clone()
	snapshot.LastSyncedAt = &syncedAt

	if err := s.repo.Save(ctx, snapshot); err != nil {
		logger.WithWallet(w.ID).Error("Failed to persist wallet snapshot", "error", err)
		s.pendingMu.Lock()
		s.pending[w.ID] = struct{}{}
		s.pendingMu.Unlock()
		return err
	}

	w.LastSyncedAt = &syncedAt
	s.clearPending(w.ID)
	return nil
}

func (s *walletService) clearPending(walletID string) {
	s.pendingMu.Lock()
	delete(s.pending, walletID)
	s.pendingMu.Unlock()
}

func (s *walletService) publish(w *domain.Wallet, a domain.Activity, now time.Time) {
	if s.publisher == nil {
		return
	}
	a.ID = s.newID()
	a.WalletID = w.ID
	a.WalletName = w.Name
	a.CreatedAt = now
	s.publisher.Publish(a)
}

func memberName(w *domain.Wallet, memberID string) string {
	if m := w.Member(memberID); m != nil {
		return m.Name
	}
	return memberID
}

func recipients(w *domain.Wallet, memberIDs ...string) []domain.Recipient {
	var out []domain.Recipient
	for _, id := range memberIDs {
		if m := w.Member(id); m != nil && m.Contact != "" {
			out = append(out, domain.Recipient{MemberID: m.ID, Name: m.Name, Contact: m.Contact})
		}
	}
	return out
}

func settlementAttributes(st *domain.Settlement) map[string]string {
	return map[string]string{
		"settlement_id":  st.ID,
		"from_member_id": st.FromMemberID,
		"to_member_id":   st.ToMemberID,
		"amount":         ledger.DecimalAmount(st.AmountCents),
		"method":         string(st.Method),
	}
}

func cloneExpense(e *domain.Expense) *domain.Expense {
	w := domain.Wallet{Expenses: []domain.Expense{*e}}
	return &w.Clone().Expenses[0]
}

func cloneSettlement(st *domain.Settlement) *domain.Settlement {
	c := *st
	c.ConfirmedAt = cloneTime(st.ConfirmedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
