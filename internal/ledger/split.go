package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"shared-wallet-backend/internal/domain"
)

// AmountForMember returns the member's share of the expense in cents. Members who
// are not participants owe nothing.
func AmountForMember(e *domain.Expense, memberID string) int64 {
	return Shares(e)[memberID]
}

// Shares resolves the expense's split policy into a per-participant share.
//
// EQUAL uses largest-remainder allocation: every participant gets amount/n and the
// first amount%n participants (in participant order) get one extra cent, so the
// shares always sum to the amount. CUSTOM returns the listed entries as-is, with
// no requirement that they add up to the amount.
func Shares(e *domain.Expense) map[string]int64 {
	shares := make(map[string]int64, len(e.ParticipantIDs))
	if len(e.ParticipantIDs) == 0 {
		return shares
	}

	switch e.Policy {
	case domain.SplitPolicyEqual:
		n := int64(len(e.ParticipantIDs))
		base := e.AmountCents / n
		remainder := e.AmountCents % n
		for i, id := range e.ParticipantIDs {
			share := base
			if int64(i) < remainder {
				share++
			}
			shares[id] = share
		}

	case domain.SplitPolicyCustom:
		for _, id := range e.ParticipantIDs {
			shares[id] = e.CustomAmounts[id]
		}

	case domain.SplitPolicyPercentage:
		percentageShares(e, shares)
	}

	return shares
}

// percentageShares floors amount*fraction for every participant and hands the
// leftover cents to the largest fractional remainders until the total reaches
// round(amount * sum(fractions)). Fractions summing to 1 therefore split the
// amount exactly.
func percentageShares(e *domain.Expense, shares map[string]int64) {
	type remainder struct {
		id    string
		index int
		frac  decimal.Decimal
	}

	amount := decimal.NewFromInt(e.AmountCents)
	sum := decimal.Zero
	var floored int64
	remainders := make([]remainder, 0, len(e.ParticipantIDs))

	for i, id := range e.ParticipantIDs {
		f := e.Percentages[id]
		sum = sum.Add(f)

		raw := amount.Mul(f)
		floor := raw.Floor()
		shares[id] = floor.IntPart()
		floored += floor.IntPart()
		remainders = append(remainders, remainder{id: id, index: i, frac: raw.Sub(floor)})
	}

	left := amount.Mul(sum).Round(0).IntPart() - floored
	if left <= 0 {
		return
	}

	sort.SliceStable(remainders, func(i, j int) bool {
		if c := remainders[i].frac.Cmp(remainders[j].frac); c != 0 {
			return c > 0
		}
		return remainders[i].index < remainders[j].index
	})
	for i := int64(0); i < left && int(i) < len(remainders); i++ {
		shares[remainders[i].id]++
	}
}
