package ledger

import "shared-wallet-backend/internal/domain"

type netBalance struct {
	memberID string
	cents    int64
}

// MinimizeTransfers suggests a settlement plan with as few transfers as the greedy
// heuristic finds: repeatedly match the largest debtor with the largest creditor and
// move the smaller of the two amounts. Every member's net position is preserved.
// This is a suggestion list only; it does not change the debt matrix.
func MinimizeTransfers(w *domain.Wallet) []domain.Debt {
	m := BuildDebtMatrix(w)

	net := make(map[string]int64)
	for from, row := range m {
		for to, cents := range row {
			net[from] -= cents
			net[to] += cents
		}
	}

	// Walk members in wallet order so ties resolve deterministically.
	var debtors, creditors []netBalance
	for _, member := range w.Members {
		switch balance := net[member.ID]; {
		case balance < 0:
			debtors = append(debtors, netBalance{member.ID, -balance}) // store as positive amount owed
		case balance > 0:
			creditors = append(creditors, netBalance{member.ID, balance})
		}
	}

	transfers := make([]domain.Debt, 0)
	for len(debtors) > 0 && len(creditors) > 0 {
		di := largest(debtors)
		ci := largest(creditors)
		debtor := &debtors[di]
		creditor := &creditors[ci]

		amount := debtor.cents
		if creditor.cents < amount {
			amount = creditor.cents
		}

		transfers = append(transfers, domain.Debt{
			FromMemberID: debtor.memberID,
			ToMemberID:   creditor.memberID,
			AmountCents:  amount,
		})

		debtor.cents -= amount
		creditor.cents -= amount

		if debtor.cents == 0 {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
		if creditor.cents == 0 {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
	}

	sortDebts(transfers)
	return transfers
}

func largest(balances []netBalance) int {
	idx := 0
	for i := 1; i < len(balances); i++ {
		if balances[i].cents > balances[idx].cents {
			idx = i
		}
	}
	return idx
}
