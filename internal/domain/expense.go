package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type SplitPolicy string

const (
	SplitPolicyEqual      SplitPolicy = "EQUAL"
	SplitPolicyCustom     SplitPolicy = "CUSTOM"
	SplitPolicyPercentage SplitPolicy = "PERCENTAGE"
)

func (p SplitPolicy) IsValid() bool {
	switch p {
	case SplitPolicyEqual, SplitPolicyCustom, SplitPolicyPercentage:
		return true
	}
	return false
}

type Category string

const (
	CategoryRent           Category = "RENT"
	CategoryGroceries      Category = "GROCERIES"
	CategoryEntertainment  Category = "ENTERTAINMENT"
	CategoryUtilities      Category = "UTILITIES"
	CategoryTransportation Category = "TRANSPORTATION"
	CategorySubscriptions  Category = "SUBSCRIPTIONS"
	CategoryInsurance      Category = "INSURANCE"
	CategoryOther          Category = "OTHER"
)

var Categories = []Category{
	CategoryRent,
	CategoryGroceries,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryTransportation,
	CategorySubscriptions,
	CategoryInsurance,
	CategoryOther,
}

// ParseCategory maps a case-insensitive tag onto the closed category set.
// An empty tag is filed under OTHER.
func ParseCategory(s string) (Category, bool) {
	if strings.TrimSpace(s) == "" {
		return CategoryOther, true
	}
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Expense is a shared cost. Amount, policy and participants are fixed once recorded;
// only IsSettled may move from false to true.
type Expense struct {
	ID             string                     `json:"id"`
	AmountCents    int64                      `json:"amount_cents"`
	Description    string                     `json:"description"`
	Category       Category                   `json:"category"`
	PayerID        string                     `json:"payer_id"`
	ParticipantIDs []string                   `json:"participant_ids"`
	Policy         SplitPolicy                `json:"policy"`
	CustomAmounts  map[string]int64           `json:"custom_amounts_cents,omitempty"` // CUSTOM: absolute share per participant
	Percentages    map[string]decimal.Decimal `json:"percentages,omitempty"`          // PERCENTAGE: fraction 0-1 per participant
	IsSettled      bool                       `json:"is_settled"`
	CreatedAt      time.Time                  `json:"created_at"`
	SettledAt      *time.Time                 `json:"settled_at,omitempty"`
}

func (e *Expense) HasParticipant(memberID string) bool {
	for _, id := range e.ParticipantIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
