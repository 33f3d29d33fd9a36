package ledger

import (
	"sort"

	"shared-wallet-backend/internal/domain"
)

// Matrix is the directed pairwise debt accumulator: m[from][to] is what from owes to.
// Entries may go negative after settlement netting; opposite directions are tracked
// independently and never merged.
type Matrix map[string]map[string]int64

func (m Matrix) add(from, to string, cents int64) {
	row, ok := m[from]
	if !ok {
		row = make(map[string]int64)
		m[from] = row
	}
	row[to] += cents
}

// Owed returns m[from][to], zero when the pair never appeared.
func (m Matrix) Owed(from, to string) int64 {
	return m[from][to]
}

// BuildDebtMatrix accumulates every unsettled expense share owed to its payer and
// then subtracts every confirmed settlement from its directed edge.
func BuildDebtMatrix(w *domain.Wallet) Matrix {
	m := make(Matrix)

	for i := range w.Expenses {
		e := &w.Expenses[i]
		if e.IsSettled {
			continue
		}
		for _, id := range e.ParticipantIDs {
			if id == e.PayerID {
				continue
			}
			m.add(id, e.PayerID, AmountForMember(e, id))
		}
	}

	for _, s := range w.Settlements {
		if !s.IsConfirmed {
			continue
		}
		m.add(s.FromMemberID, s.ToMemberID, -s.AmountCents)
	}

	return m
}

// ProjectBalances writes TotalOwedCents and TotalOwedToCents onto every member,
// deactivated ones included. Negative edges count with their sign.
func ProjectBalances(w *domain.Wallet, m Matrix) {
	owed := make(map[string]int64)
	owedTo := make(map[string]int64)
	for from, row := range m {
		for to, cents := range row {
			owed[from] += cents
			owedTo[to] += cents
		}
	}

	for i := range w.Members {
		w.Members[i].TotalOwedCents = owed[w.Members[i].ID]
		w.Members[i].TotalOwedToCents = owedTo[w.Members[i].ID]
	}
}

// Recompute rebuilds the matrix from scratch and projects member balances.
// It runs after every mutation; there is no incremental path.
func Recompute(w *domain.Wallet) Matrix {
	m := BuildDebtMatrix(w)
	ProjectBalances(w, m)
	return m
}

// SimplifiedDebts reads out every directed pair owing at least one cent, largest
// first. It does not collapse cycles; see MinimizeTransfers for that.
func SimplifiedDebts(m Matrix) []domain.Debt {
	debts := make([]domain.Debt, 0)
	for from, row := range m {
		for to, cents := range row {
			if cents > 0 {
				debts = append(debts, domain.Debt{FromMemberID: from, ToMemberID: to, AmountCents: cents})
			}
		}
	}

	sortDebts(debts)
	return debts
}

func sortDebts(debts []domain.Debt) {
	sort.Slice(debts, func(i, j int) bool {
		if debts[i].AmountCents != debts[j].AmountCents {
			return debts[i].AmountCents > debts[j].AmountCents
		}
		if debts[i].FromMemberID != debts[j].FromMemberID {
			return debts[i].FromMemberID < debts[j].FromMemberID
		}
		return debts[i].ToMemberID < debts[j].ToMemberID
	})
}
