package ledger

import (
	"sort"

	"shared-wallet-backend/internal/domain"
)

// CategoryTotals sums expense amounts per category, settled expenses included.
func CategoryTotals(w *domain.Wallet) map[domain.Category]int64 {
	totals := make(map[domain.Category]int64)
	for _, e := range w.Expenses {
		totals[e.Category] += e.AmountCents
	}
	return totals
}

// MonthlyTotals sums expense amounts per UTC calendar month, oldest month first.
func MonthlyTotals(w *domain.Wallet) []domain.MonthlyTotal {
	byMonth := make(map[string]int64)
	for _, e := range w.Expenses {
		byMonth[e.CreatedAt.UTC().Format("2006-01")] += e.AmountCents
	}

	totals := make([]domain.MonthlyTotal, 0, len(byMonth))
	for month, cents := range byMonth {
		totals = append(totals, domain.MonthlyTotal{Month: month, AmountCents: cents})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Month < totals[j].Month
	})
	return totals
}
