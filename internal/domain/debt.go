package domain

// Debt says FromMemberID owes ToMemberID AmountCents.
type Debt struct {
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	AmountCents  int64  `json:"amount_cents"`
}

type MonthlyTotal struct {
	Month       string `json:"month"` // Format: 'YYYY-MM'
	AmountCents int64  `json:"amount_cents"`
}
