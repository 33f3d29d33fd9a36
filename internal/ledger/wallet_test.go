package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shared-wallet-backend/internal/domain"
)

func TestNewWallet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		w, err := NewWallet("w1", "  Trip  ", "Lisbon", domain.Member{ID: "A", Name: "Alex"}, testNow)
		require.NoError(t, err)
		assert.Equal(t, "Trip", w.Name)
		assert.Equal(t, domain.WalletStatusActive, w.Status)
		require.Len(t, w.Members, 1)
		assert.True(t, w.Members[0].IsActive())
		assert.Equal(t, testNow, w.Members[0].JoinedAt)
		assert.Zero(t, w.TotalSpentCents)
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := NewWallet("w1", " ", "", domain.Member{ID: "A", Name: "Alex"}, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("EmptyFounderName", func(t *testing.T) {
		_, err := NewWallet("w1", "Trip", "", domain.Member{ID: "A"}, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestAddMember(t *testing.T) {
	w := newABCWallet(t)

	_, err := AddMember(w, "D", "", "", testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = AddMember(w, "B", "Other", "", testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// contacts may repeat
	m, err := AddMember(w, "D", "Dana", "alex@example.com", testNow)
	require.NoError(t, err)
	assert.Equal(t, "Dana", m.Name)
	assert.Len(t, w.Members, 4)

	DeactivateWallet(w, testNow)
	_, err = AddMember(w, "E", "Eli", "", testNow)
	assert.ErrorIs(t, err, domain.ErrInactiveWallet)
}

func TestDeactivateMember(t *testing.T) {
	w := newABCWallet(t)

	_, _, err := DeactivateMember(w, "Z", testNow)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	later := testNow.Add(time.Hour)
	m, changed, err := DeactivateMember(w, "B", later)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, m.DeactivatedAt)
	assert.Equal(t, later, *m.DeactivatedAt)

	_, changed, err = DeactivateMember(w, "B", later)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, w.Members, 3)
}

func TestAddExpense_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *ExpenseInput)
		wantErr error
	}{
		{"ZeroAmount", func(in *ExpenseInput) { in.AmountCents = 0 }, domain.ErrInvalidInput},
		{"NegativeAmount", func(in *ExpenseInput) { in.AmountCents = -100 }, domain.ErrInvalidInput},
		{"NoParticipants", func(in *ExpenseInput) { in.ParticipantIDs = nil }, domain.ErrInvalidInput},
		{"BadPolicy", func(in *ExpenseInput) { in.Policy = "RANDOM" }, domain.ErrInvalidInput},
		{"BadCategory", func(in *ExpenseInput) { in.Category = "FOOD" }, domain.ErrInvalidInput},
		{"DuplicateParticipant", func(in *ExpenseInput) { in.ParticipantIDs = []string{"A", "B", "A"} }, domain.ErrInvalidInput},
		{"UnknownPayer", func(in *ExpenseInput) { in.PayerID = "Z" }, domain.ErrNotFound},
		{"UnknownParticipant", func(in *ExpenseInput) { in.ParticipantIDs = []string{"A", "Z"} }, domain.ErrNotFound},
		{"CustomMissingEntry", func(in *ExpenseInput) {
			in.Policy = domain.SplitPolicyCustom
			in.CustomAmounts = map[string]int64{"A": 100, "B": 100}
		}, domain.ErrInvalidInput},
		{"CustomNegative", func(in *ExpenseInput) {
			in.Policy = domain.SplitPolicyCustom
			in.CustomAmounts = map[string]int64{"A": 100, "B": -1, "C": 100}
		}, domain.ErrInvalidInput},
		{"PercentageOutOfRange", func(in *ExpenseInput) {
			in.Policy = domain.SplitPolicyPercentage
			in.Percentages = map[string]decimal.Decimal{"A": fraction("1.5"), "B": fraction("0"), "C": fraction("0")}
		}, domain.ErrInvalidInput},
		{"PercentageMissingEntry", func(in *ExpenseInput) {
			in.Policy = domain.SplitPolicyPercentage
			in.Percentages = map[string]decimal.Decimal{"A": fraction("0.5")}
		}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newABCWallet(t)
			before := w.Clone()

			in := equalExpense("e1", 3000, "A", "A", "B", "C")
			tt.mutate(&in)

			_, err := AddExpense(w, in, testNow)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, w, "a rejected expense must leave the wallet untouched")
		})
	}
}

func TestAddExpense_TotalOverflow(t *testing.T) {
	w := newABCWallet(t)
	_, err := AddExpense(w, equalExpense("e1", math.MaxInt64, "A", "A"), testNow)
	require.NoError(t, err)
	before := w.Clone()

	_, err = AddExpense(w, equalExpense("e2", math.MaxInt64, "B", "B"), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, before, w)
	assert.Equal(t, int64(math.MaxInt64), w.TotalSpentCents)

	_, err = AddExpense(w, equalExpense("e3", 1, "B", "B"), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, w.Expenses, 1)
}

func TestAddExpense_InactiveMembers(t *testing.T) {
	w := newABCWallet(t)
	_, _, err := DeactivateMember(w, "C", testNow)
	require.NoError(t, err)

	_, err = AddExpense(w, equalExpense("e1", 3000, "C", "A", "B"), testNow)
	assert.ErrorIs(t, err, domain.ErrInactiveMember)

	_, err = AddExpense(w, equalExpense("e1", 3000, "A", "A", "C"), testNow)
	assert.ErrorIs(t, err, domain.ErrInactiveMember)

	assert.Empty(t, w.Expenses)
}

func TestAddExpense_DuplicateID(t *testing.T) {
	w := newABCWallet(t)
	_, err := AddExpense(w, equalExpense("e1", 3000, "A", "A", "B"), testNow)
	require.NoError(t, err)

	_, err = AddExpense(w, equalExpense("e1", 500, "B", "A", "B"), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(3000), w.TotalSpentCents)
}

func TestAddExpense_DefaultsCategory(t *testing.T) {
	w := newABCWallet(t)
	in := equalExpense("e1", 3000, "A", "A", "B")
	in.Category = ""

	e, err := AddExpense(w, in, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOther, e.Category)
}

func TestAddExpense_InactiveWallet(t *testing.T) {
	w := newABCWallet(t)
	assert.True(t, DeactivateWallet(w, testNow))
	assert.False(t, DeactivateWallet(w, testNow))

	_, err := AddExpense(w, equalExpense("e1", 3000, "A", "A", "B"), testNow)
	assert.ErrorIs(t, err, domain.ErrInactiveWallet)
}

func TestAddSettlement(t *testing.T) {
	t.Run("Validation", func(t *testing.T) {
		w := newABCWallet(t)

		_, err := AddSettlement(w, SettlementInput{ID: "s1", FromMemberID: "B", ToMemberID: "A", AmountCents: 0}, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = AddSettlement(w, SettlementInput{ID: "s1", FromMemberID: "A", ToMemberID: "A", AmountCents: 100}, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = AddSettlement(w, SettlementInput{ID: "s1", FromMemberID: "Z", ToMemberID: "A", AmountCents: 100}, testNow)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.Empty(t, w.Settlements)
	})

	t.Run("DefaultsMethod", func(t *testing.T) {
		w := newABCWallet(t)
		s, err := AddSettlement(w, SettlementInput{ID: "s1", FromMemberID: "B", ToMemberID: "A", AmountCents: 100}, testNow)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentMethodOther, s.Method)
		assert.False(t, s.IsConfirmed)
	})

	t.Run("DeactivatedMemberCanSettle", func(t *testing.T) {
		w := newABCWallet(t)
		_, err := AddExpense(w, equalExpense("e1", 3000, "A", "A", "B", "C"), testNow)
		require.NoError(t, err)
		_, _, err = DeactivateMember(w, "C", testNow)
		require.NoError(t, err)
		DeactivateWallet(w, testNow)

		_, err = AddSettlement(w, SettlementInput{ID: "s1", FromMemberID: "C", ToMemberID: "A", AmountCents: 1000, Method: domain.PaymentMethodCash}, testNow)
		require.NoError(t, err)
		_, _, err = ConfirmSettlement(w, "s1", testNow)
		require.NoError(t, err)

		assert.Equal(t, int64(0), BuildDebtMatrix(w).Owed("C", "A"))
	})

	t.Run("UnknownConfirm", func(t *testing.T) {
		w := newABCWallet(t)
		_, _, err := ConfirmSettlement(w, "nope", testNow)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSettleExpense(t *testing.T) {
	w := newABCWallet(t)
	_, err := AddExpense(w, equalExpense("e1", 3000, "A", "A", "B"), testNow)
	require.NoError(t, err)

	_, _, err = SettleExpense(w, "missing", testNow)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	e, changed, err := SettleExpense(w, "e1", testNow)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, e.IsSettled)
	require.NotNil(t, e.SettledAt)

	_, changed, err = SettleExpense(w, "e1", testNow)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMinimizeTransfers(t *testing.T) {
	t.Run("CollapsesCycle", func(t *testing.T) {
		w := newABCWallet(t)
		// A->B, B->C, C->A each 1000; nets cancel entirely
		_, err := AddExpense(w, equalExpense("e1", 2000, "B", "A", "B"), testNow)
		require.NoError(t, err)
		_, err = AddExpense(w, equalExpense("e2", 2000, "C", "B", "C"), testNow)
		require.NoError(t, err)
		_, err = AddExpense(w, equalExpense("e3", 2000, "A", "C", "A"), testNow)
		require.NoError(t, err)

		assert.Len(t, SimplifiedDebts(BuildDebtMatrix(w)), 3)
		assert.Empty(t, MinimizeTransfers(w))
	})

	t.Run("PreservesNetPositions", func(t *testing.T) {
		w := newABCWallet(t)
		_, err := AddMember(w, "D", "Dana", "", testNow)
		require.NoError(t, err)
		_, err = AddExpense(w, equalExpense("e1", 12000, "A", "A", "B", "C", "D"), testNow)
		require.NoError(t, err)
		_, err = AddExpense(w, equalExpense("e2", 4000, "B", "C", "D"), testNow)
		require.NoError(t, err)

		want := make(map[string]int64)
		for _, d := range SimplifiedDebts(BuildDebtMatrix(w)) {
			want[d.FromMemberID] -= d.AmountCents
			want[d.ToMemberID] += d.AmountCents
		}

		got := make(map[string]int64)
		transfers := MinimizeTransfers(w)
		for _, d := range transfers {
			assert.Positive(t, d.AmountCents)
			got[d.FromMemberID] -= d.AmountCents
			got[d.ToMemberID] += d.AmountCents
		}

		assert.Equal(t, want, got)
		assert.LessOrEqual(t, len(transfers), len(w.Members)-1)
	})
}

func TestSummaries(t *testing.T) {
	w := newABCWallet(t)

	march := testNow
	april := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)

	_, err := AddExpense(w, equalExpense("e1", 3000, "A", "A", "B"), march)
	require.NoError(t, err)

	rent := equalExpense("e2", 90000, "B", "A", "B", "C")
	rent.Category = domain.CategoryRent
	_, err = AddExpense(w, rent, april)
	require.NoError(t, err)

	_, err = AddExpense(w, equalExpense("e3", 1500, "C", "C", "A"), april)
	require.NoError(t, err)
	_, _, err = SettleExpense(w, "e3", april)
	require.NoError(t, err)

	assert.Equal(t, map[domain.Category]int64{
		domain.CategoryGroceries: 4500,
		domain.CategoryRent:      90000,
	}, CategoryTotals(w))

	assert.Equal(t, []domain.MonthlyTotal{
		{Month: "2024-03", AmountCents: 3000},
		{Month: "2024-04", AmountCents: 91500},
	}, MonthlyTotals(w))
}
