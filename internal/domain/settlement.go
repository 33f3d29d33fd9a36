package domain

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard          PaymentMethod = "CARD"
	PaymentMethodMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentMethodOther         PaymentMethod = "OTHER"
)

// ParsePaymentMethod normalizes a method tag. Unrecognized tags are kept as OTHER,
// the ledger does not interpret them.
func ParsePaymentMethod(s string) PaymentMethod {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodMobilePayment:
		return m
	}
	return PaymentMethodOther
}

// Settlement is a payment from one member to another. Only confirmed settlements
// are netted into the debt matrix.
type Settlement struct {
	ID           string        `json:"id"`
	FromMemberID string        `json:"from_member_id"`
	ToMemberID   string        `json:"to_member_id"`
	AmountCents  int64         `json:"amount_cents"`
	Method       PaymentMethod `json:"method"`
	Note         string        `json:"note,omitempty"`
	IsConfirmed  bool          `json:"is_confirmed"`
	CreatedAt    time.Time     `json:"created_at"`
	ConfirmedAt  *time.Time    `json:"confirmed_at,omitempty"`
}
