package domain

import "time"

type MemberStatus string

const (
	MemberStatusActive      MemberStatus = "ACTIVE"
	MemberStatusDeactivated MemberStatus = "DEACTIVATED"
)

// Member is a participant in a wallet. Members are never removed: a deactivated
// member keeps its id on every historical expense and settlement.
type Member struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Contact          string       `json:"contact"`
	Status           MemberStatus `json:"status"`
	TotalOwedCents   int64        `json:"total_owed_cents"`    // derived: sum this member owes others
	TotalOwedToCents int64        `json:"total_owed_to_cents"` // derived: sum others owe this member
	JoinedAt         time.Time    `json:"joined_at"`
	DeactivatedAt    *time.Time   `json:"deactivated_at,omitempty"`
}

func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

// NetBalanceCents is positive when the member is owed money overall.
func (m *Member) NetBalanceCents() int64 {
	return m.TotalOwedToCents - m.TotalOwedCents
}
