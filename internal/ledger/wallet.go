package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shared-wallet-backend/internal/domain"
)

// ExpenseInput carries the caller-supplied fields of a new expense. Split tables
// may list ids outside ParticipantIDs; those entries are dropped.
type ExpenseInput struct {
	ID             string
	AmountCents    int64
	Description    string
	Category       domain.Category
	PayerID        string
	ParticipantIDs []string
	Policy         domain.SplitPolicy
	CustomAmounts  map[string]int64
	Percentages    map[string]decimal.Decimal
}

type SettlementInput struct {
	ID           string
	FromMemberID string
	ToMemberID   string
	AmountCents  int64
	Method       domain.PaymentMethod
	Note         string
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", domain.ErrNotFound, kind, id)
}

// NewWallet creates an active wallet with exactly one founding member.
func NewWallet(id, name, description string, founder domain.Member, now time.Time) (*domain.Wallet, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("wallet name can't be empty")
	}
	if strings.TrimSpace(founder.Name) == "" {
		return nil, invalid("member name can't be empty")
	}

	founder.Status = domain.MemberStatusActive
	founder.TotalOwedCents = 0
	founder.TotalOwedToCents = 0
	founder.JoinedAt = now
	founder.DeactivatedAt = nil

	w := &domain.Wallet{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: description,
		Members:     []domain.Member{founder},
		Expenses:    []domain.Expense{},
		Settlements: []domain.Settlement{},
		Status:      domain.WalletStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	Recompute(w)
	return w, nil
}

// AddMember appends an active member with zeroed balances. Contacts are not unique.
func AddMember(w *domain.Wallet, id, name, contact string, now time.Time) (*domain.Member, error) {
	if !w.IsActive() {
		return nil, domain.ErrInactiveWallet
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalid("member name can't be empty")
	}
	if w.Member(id) != nil {
		return nil, invalid("member id %q already exists", id)
	}

	w.Members = append(w.Members, domain.Member{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Contact:  strings.TrimSpace(contact),
		Status:   domain.MemberStatusActive,
		JoinedAt: now,
	})
	w.UpdatedAt = now
	Recompute(w)
	return w.Member(id), nil
}

// DeactivateMember soft-removes a member. Historical expenses and settlements keep
// the id, so any outstanding balance stays in the debt matrix.
func DeactivateMember(w *domain.Wallet, memberID string, now time.Time) (*domain.Member, bool, error) {
	m := w.Member(memberID)
	if m == nil {
		return nil, false, notFound("member", memberID)
	}
	if !m.IsActive() {
		return m, false, nil
	}

	m.Status = domain.MemberStatusDeactivated
	deactivatedAt := now
	m.DeactivatedAt = &deactivatedAt
	w.UpdatedAt = now
	Recompute(w)
	return w.Member(memberID), true, nil
}

// AddExpense validates the whole input before touching the wallet, then appends the
// expense and adds its amount to the wallet total.
func AddExpense(w *domain.Wallet, in ExpenseInput, now time.Time) (*domain.Expense, error) {
	if !w.IsActive() {
		return nil, domain.ErrInactiveWallet
	}
	if in.AmountCents <= 0 {
		return nil, invalid("amount must be positive")
	}
	if in.AmountCents > math.MaxInt64-w.TotalSpentCents {
		return nil, invalid("amount would overflow the wallet total")
	}
	if len(in.ParticipantIDs) == 0 {
		return nil, invalid("expense needs at least one participant")
	}
	if !in.Policy.IsValid() {
		return nil, invalid("unsupported split policy %q", in.Policy)
	}
	category, ok := domain.ParseCategory(string(in.Category))
	if !ok {
		return nil, invalid("unknown category %q", in.Category)
	}
	if w.Expense(in.ID) != nil {
		return nil, invalid("expense id %q already exists", in.ID)
	}

	payer := w.Member(in.PayerID)
	if payer == nil {
		return nil, notFound("member", in.PayerID)
	}
	if !payer.IsActive() {
		return nil, fmt.Errorf("%w: payer %q", domain.ErrInactiveMember, in.PayerID)
	}

	seen := make(map[string]bool, len(in.ParticipantIDs))
	for _, id := range in.ParticipantIDs {
		if seen[id] {
			return nil, invalid("participant %q listed twice", id)
		}
		seen[id] = true

		p := w.Member(id)
		if p == nil {
			return nil, notFound("member", id)
		}
		if !p.IsActive() {
			return nil, fmt.Errorf("%w: participant %q", domain.ErrInactiveMember, id)
		}
	}

	e := domain.Expense{
		ID:             in.ID,
		AmountCents:    in.AmountCents,
		Description:    strings.TrimSpace(in.Description),
		Category:       category,
		PayerID:        in.PayerID,
		ParticipantIDs: append([]string(nil), in.ParticipantIDs...),
		Policy:         in.Policy,
		CreatedAt:      now,
	}

	switch in.Policy {
	case domain.SplitPolicyCustom:
		e.CustomAmounts = make(map[string]int64, len(in.ParticipantIDs))
		for _, id := range in.ParticipantIDs {
			amount, ok := in.CustomAmounts[id]
			if !ok {
				return nil, invalid("custom split is missing participant %q", id)
			}
			if amount < 0 {
				return nil, invalid("custom split for %q is negative", id)
			}
			e.CustomAmounts[id] = amount
		}

	case domain.SplitPolicyPercentage:
		one := decimal.NewFromInt(1)
		e.Percentages = make(map[string]decimal.Decimal, len(in.ParticipantIDs))
		for _, id := range in.ParticipantIDs {
			f, ok := in.Percentages[id]
			if !ok {
				return nil, invalid("percentage split is missing participant %q", id)
			}
			if f.IsNegative() || f.GreaterThan(one) {
				return nil, invalid("percentage for %q must be between 0 and 1", id)
			}
			e.Percentages[id] = f
		}
	}

	w.Expenses = append(w.Expenses, e)
	w.TotalSpentCents += e.AmountCents
	w.UpdatedAt = now
	Recompute(w)
	return w.Expense(e.ID), nil
}

// SettleExpense marks an expense as squared outside the ledger. It drops out of the
// debt matrix but stays in TotalSpentCents.
func SettleExpense(w *domain.Wallet, expenseID string, now time.Time) (*domain.Expense, bool, error) {
	e := w.Expense(expenseID)
	if e == nil {
		return nil, false, notFound("expense", expenseID)
	}
	if e.IsSettled {
		return e, false, nil
	}

	e.IsSettled = true
	settledAt := now
	e.SettledAt = &settledAt
	w.UpdatedAt = now
	Recompute(w)
	return w.Expense(expenseID), true, nil
}

// AddSettlement records an unconfirmed payment. Deactivated members may still settle
// so historical debts can be cleared, and so may members of a deactivated wallet.
func AddSettlement(w *domain.Wallet, in SettlementInput, now time.Time) (*domain.Settlement, error) {
	if in.AmountCents <= 0 {
		return nil, invalid("amount must be positive")
	}
	if in.FromMemberID == in.ToMemberID {
		return nil, invalid("payer and payee must differ")
	}
	if w.Member(in.FromMemberID) == nil {
		return nil, notFound("member", in.FromMemberID)
	}
	if w.Member(in.ToMemberID) == nil {
		return nil, notFound("member", in.ToMemberID)
	}
	if w.Settlement(in.ID) != nil {
		return nil, invalid("settlement id %q already exists", in.ID)
	}

	method := in.Method
	if method == "" {
		method = domain.PaymentMethodOther
	}

	w.Settlements = append(w.Settlements, domain.Settlement{
		ID:           in.ID,
		FromMemberID: in.FromMemberID,
		ToMemberID:   in.ToMemberID,
		AmountCents:  in.AmountCents,
		Method:       method,
		Note:         strings.TrimSpace(in.Note),
		CreatedAt:    now,
	})
	w.UpdatedAt = now
	Recompute(w)
	return w.Settlement(in.ID), nil
}

// ConfirmSettlement nets the settlement into the debt matrix. Confirming twice is a
// no-op and reports changed=false.
func ConfirmSettlement(w *domain.Wallet, settlementID string, now time.Time) (*domain.Settlement, bool, error) {
	s := w.Settlement(settlementID)
	if s == nil {
		return nil, false, notFound("settlement", settlementID)
	}
	if s.IsConfirmed {
		return s, false, nil
	}

	s.IsConfirmed = true
	confirmedAt := now
	s.ConfirmedAt = &confirmedAt
	w.UpdatedAt = now
	Recompute(w)
	return w.Settlement(settlementID), true, nil
}

// DeactivateWallet soft-deactivates the wallet. Balances are left as they are.
func DeactivateWallet(w *domain.Wallet, now time.Time) bool {
	if !w.IsActive() {
		return false
	}
	w.Status = domain.WalletStatusDeactivated
	w.UpdatedAt = now
	Recompute(w)
	return true
}
