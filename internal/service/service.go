package service

import (
	"context"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/ledger"
)

// WalletService coordinates every wallet operation: it serializes writers per wallet,
// persists snapshots and emits activities. Returned values are copies.
type WalletService interface {
	CreateWallet(ctx context.Context, name, description, founderName, founderContact string) (*domain.Wallet, error)
	GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error)
	ListWallets(ctx context.Context) ([]domain.Wallet, error)
	DeactivateWallet(ctx context.Context, walletID string) (*domain.Wallet, error)

	AddMember(ctx context.Context, walletID, name, contact string) (*domain.Member, error)
	DeactivateMember(ctx context.Context, walletID, memberID string) (*domain.Member, error)
	GetMember(ctx context.Context, walletID, memberID string) (*domain.Member, error)

	AddExpense(ctx context.Context, walletID string, in ledger.ExpenseInput) (*domain.Expense, error)
	SettleExpense(ctx context.Context, walletID, expenseID string) (*domain.Expense, error)

	AddSettlement(ctx context.Context, walletID string, in ledger.SettlementInput) (*domain.Settlement, error)
	ConfirmSettlement(ctx context.Context, walletID, settlementID string) (*domain.Settlement, error)

	GetSimplifiedDebts(ctx context.Context, walletID string) ([]domain.Debt, error)
	SuggestSettlements(ctx context.Context, walletID string) ([]domain.Debt, error)
	// GetDebtReport returns the simplified debts, or the fewest-transfers plan when
	// minimized is set, named from the same wallet state.
	GetDebtReport(ctx context.Context, walletID string, minimized bool) (*DebtReport, error)
	GetCategoryTotals(ctx context.Context, walletID string) (map[domain.Category]int64, error)
	GetMonthlyTotals(ctx context.Context, walletID string) ([]domain.MonthlyTotal, error)

	// Load replaces the in-memory wallets with what the repository holds.
	Load(ctx context.Context) (int, error)
	// RetryPendingSnapshots re-saves wallets whose last save failed.
	RetryPendingSnapshots(ctx context.Context) (int, error)
	PendingSnapshots() []string
}

// DebtReport pairs debts with the names of the members they mention.
type DebtReport struct {
	WalletID    string
	Debts       []domain.Debt
	MemberNames map[string]string
}

// Name falls back to the member id for members the wallet does not know.
func (r *DebtReport) Name(memberID string) string {
	if name, ok := r.MemberNames[memberID]; ok {
		return name
	}
	return memberID
}

type NotificationService interface {
	ListActivities(ctx context.Context, walletID string, types []domain.ActivityType, page, pageSize int32) ([]domain.Activity, int32, error)
}

// DebtLine is one "you owe X" row of a reminder email.
type DebtLine struct {
	CreditorName string
	AmountCents  int64
}

type EmailService interface {
	SendSettlementRecorded(ctx context.Context, to domain.Recipient, walletName, message string) error
	SendSettlementConfirmed(ctx context.Context, to domain.Recipient, walletName, message string) error
	SendDebtReminder(ctx context.Context, to domain.Recipient, walletName string, debts []DebtLine) error
}

// ActivityPublisher hands activities off without blocking the caller.
type ActivityPublisher interface {
	Publish(a domain.Activity)
}
