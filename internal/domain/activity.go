package domain

import "time"

type ActivityType string

const (
	ActivityTypeWalletCreated       ActivityType = "WALLET_CREATED"
	ActivityTypeWalletDeactivated   ActivityType = "WALLET_DEACTIVATED"
	ActivityTypeMemberAdded         ActivityType = "MEMBER_ADDED"
	ActivityTypeMemberDeactivated   ActivityType = "MEMBER_DEACTIVATED"
	ActivityTypeExpenseAdded        ActivityType = "EXPENSE_ADDED"
	ActivityTypeExpenseSettled      ActivityType = "EXPENSE_SETTLED"
	ActivityTypeSettlementAdded     ActivityType = "SETTLEMENT_ADDED"
	ActivityTypeSettlementConfirmed ActivityType = "SETTLEMENT_CONFIRMED"
)

// Recipient is someone an activity should reach outside the wallet feed (e.g. by email).
type Recipient struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Contact  string `json:"contact"`
}

// Activity is a human-readable record of a wallet mutation. It has no effect on
// ledger state.
type Activity struct {
	ID            string            `json:"id"`
	WalletID      string            `json:"wallet_id"`
	WalletName    string            `json:"wallet_name"`
	Type          ActivityType      `json:"type"`
	ActorMemberID string            `json:"actor_member_id,omitempty"`
	Message       string            `json:"message"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	Recipients    []Recipient       `json:"-"`
	CreatedAt     time.Time         `json:"created_at"`
}
