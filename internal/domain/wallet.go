package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletStatus string

const (
	WalletStatusActive      WalletStatus = "ACTIVE"
	WalletStatusDeactivated WalletStatus = "DEACTIVATED"
)

// Wallet exclusively owns its members, expenses and settlements. All three lists
// are append-only.
type Wallet struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Members         []Member     `json:"members"`
	Expenses        []Expense    `json:"expenses"`
	Settlements     []Settlement `json:"settlements"`
	TotalSpentCents int64        `json:"total_spent_cents"`
	Status          WalletStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	LastSyncedAt    *time.Time   `json:"last_synced_at,omitempty"`
}

func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}

func (w *Wallet) Member(id string) *Member {
	for i := range w.Members {
		if w.Members[i].ID == id {
			return &w.Members[i]
		}
	}
	return nil
}

func (w *Wallet) Expense(id string) *Expense {
	for i := range w.Expenses {
		if w.Expenses[i].ID == id {
			return &w.Expenses[i]
		}
	}
	return nil
}

func (w *Wallet) Settlement(id string) *Settlement {
	for i := range w.Settlements {
		if w.Settlements[i].ID == id {
			return &w.Settlements[i]
		}
	}
	return nil
}

// Clone returns a deep copy that shares no slices, maps or pointers with w.
func (w *Wallet) Clone() *Wallet {
	c := *w
	c.LastSyncedAt = cloneTime(w.LastSyncedAt)

	c.Members = make([]Member, len(w.Members))
	for i, m := range w.Members {
		m.DeactivatedAt = cloneTime(m.DeactivatedAt)
		c.Members[i] = m
	}

	c.Expenses = make([]Expense, len(w.Expenses))
	for i, e := range w.Expenses {
		e.ParticipantIDs = append([]string(nil), e.ParticipantIDs...)
		if e.CustomAmounts != nil {
			amounts := make(map[string]int64, len(e.CustomAmounts))
			for k, v := range e.CustomAmounts {
				amounts[k] = v
			}
			e.CustomAmounts = amounts
		}
		if e.Percentages != nil {
			fractions := make(map[string]decimal.Decimal, len(e.Percentages))
			for k, v := range e.Percentages {
				fractions[k] = v
			}
			e.Percentages = fractions
		}
		e.SettledAt = cloneTime(e.SettledAt)
		c.Expenses[i] = e
	}

	c.Settlements = make([]Settlement, len(w.Settlements))
	for i, s := range w.Settlements {
		s.ConfirmedAt = cloneTime(s.ConfirmedAt)
		c.Settlements[i] = s
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
