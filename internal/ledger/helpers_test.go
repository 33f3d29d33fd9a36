package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shared-wallet-backend/internal/domain"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// newABCWallet returns a wallet founded by A with members B and C.
func newABCWallet(t *testing.T) *domain.Wallet {
	t.Helper()
	w, err := NewWallet("w1", "Flat 4B", "", domain.Member{ID: "A", Name: "Alex", Contact: "alex@example.com"}, testNow)
	require.NoError(t, err)
	_, err = AddMember(w, "B", "Blair", "blair@example.com", testNow)
	require.NoError(t, err)
	_, err = AddMember(w, "C", "Casey", "casey@example.com", testNow)
	require.NoError(t, err)
	return w
}

func equalExpense(id string, cents int64, payer string, participants ...string) ExpenseInput {
	return ExpenseInput{
		ID:             id,
		AmountCents:    cents,
		Description:    "expense " + id,
		Category:       domain.CategoryGroceries,
		PayerID:        payer,
		ParticipantIDs: participants,
		Policy:         domain.SplitPolicyEqual,
	}
}

func fraction(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumOwed(w *domain.Wallet) (owed, owedTo int64) {
	for _, m := range w.Members {
		owed += m.TotalOwedCents
		owedTo += m.TotalOwedToCents
	}
	return owed, owedTo
}
