package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/ledger"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/service"
)

type SeedMember struct {
	Name    string `yaml:"name"`
	Contact string `yaml:"contact"`
}

// SeedExpense names members by display name; amounts are decimal strings.
type SeedExpense struct {
	Amount        string            `yaml:"amount"`
	Description   string            `yaml:"description"`
	Category      string            `yaml:"category"`
	Payer         string            `yaml:"payer"`
	Participants  []string          `yaml:"participants"`
	Policy        string            `yaml:"policy"`
	CustomAmounts map[string]string `yaml:"custom_amounts"`
	Percentages   map[string]string `yaml:"percentages"`
	Settled       bool              `yaml:"settled"`
}

type SeedSettlement struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Amount    string `yaml:"amount"`
	Method    string `yaml:"method"`
	Note      string `yaml:"note"`
	Confirmed bool   `yaml:"confirmed"`
}

type SeedWallet struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Founder     SeedMember       `yaml:"founder"`
	Members     []SeedMember     `yaml:"members"`
	Expenses    []SeedExpense    `yaml:"expenses"`
	Settlements []SeedSettlement `yaml:"settlements"`
	Leavers     []string         `yaml:"leavers"`
}

type SeedData struct {
	ConfigFile string       `yaml:"config_file"`
	Wallets    []SeedWallet `yaml:"wallets"`
}

func readSeedFile(filename string) (*SeedData, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

// populate replays every seed wallet through the wallet service, so seeded data
// passes the same validation as API traffic.
func populate(ctx context.Context, svc service.WalletService, data *SeedData) ([]*domain.Wallet, error) {
	var out []*domain.Wallet
	for _, sw := range data.Wallets {
		w, err := populateWallet(ctx, svc, sw)
		if err != nil {
			return out, fmt.Errorf("wallet %q: %w", sw.Name, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func populateWallet(ctx context.Context, svc service.WalletService, sw SeedWallet) (*domain.Wallet, error) {
	w, err := svc.CreateWallet(ctx, sw.Name, sw.Description, sw.Founder.Name, sw.Founder.Contact)
	if err != nil {
		return nil, err
	}
	logger.Info("Wallet created", "walletID", w.ID, "name", w.Name)

	ids := map[string]string{sw.Founder.Name: w.Members[0].ID}
	for _, sm := range sw.Members {
		m, err := svc.AddMember(ctx, w.ID, sm.Name, sm.Contact)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", sm.Name, err)
		}
		ids[sm.Name] = m.ID
	}
	lookup := func(name string) (string, error) {
		id, ok := ids[name]
		if !ok {
			return "", fmt.Errorf("%w: unknown member %q", domain.ErrInvalidInput, name)
		}
		return id, nil
	}

	for i, se := range sw.Expenses {
		in, err := se.toInput(lookup)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", i+1, err)
		}
		e, err := svc.AddExpense(ctx, w.ID, in)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", i+1, err)
		}
		if se.Settled {
			if _, err := svc.SettleExpense(ctx, w.ID, e.ID); err != nil {
				return nil, err
			}
		}
	}

	for i, ss := range sw.Settlements {
		from, err := lookup(ss.From)
		if err != nil {
			return nil, fmt.Errorf("settlement %d: %w", i+1, err)
		}
		to, err := lookup(ss.To)
		if err != nil {
			return nil, fmt.Errorf("settlement %d: %w", i+1, err)
		}
		amount, err := ledger.ParseAmount(ss.Amount)
		if err != nil {
			return nil, fmt.Errorf("settlement %d: %w", i+1, err)
		}
		st, err := svc.AddSettlement(ctx, w.ID, ledger.SettlementInput{
			FromMemberID: from,
			ToMemberID:   to,
			AmountCents:  amount,
			Method:       domain.ParsePaymentMethod(ss.Method),
			Note:         ss.Note,
		})
		if err != nil {
			return nil, fmt.Errorf("settlement %d: %w", i+1, err)
		}
		if ss.Confirmed {
			if _, err := svc.ConfirmSettlement(ctx, w.ID, st.ID); err != nil {
				return nil, err
			}
		}
	}

	for _, name := range sw.Leavers {
		id, err := lookup(name)
		if err != nil {
			return nil, err
		}
		if _, err := svc.DeactivateMember(ctx, w.ID, id); err != nil {
			return nil, err
		}
	}

	return svc.GetWallet(ctx, w.ID)
}

func (se SeedExpense) toInput(lookup func(string) (string, error)) (ledger.ExpenseInput, error) {
	amount, err := ledger.ParseAmount(se.Amount)
	if err != nil {
		return ledger.ExpenseInput{}, err
	}
	payer, err := lookup(se.Payer)
	if err != nil {
		return ledger.ExpenseInput{}, err
	}

	in := ledger.ExpenseInput{
		AmountCents: amount,
		Description: se.Description,
		Category:    domain.Category(se.Category),
		PayerID:     payer,
		Policy:      domain.SplitPolicy(strings.ToUpper(se.Policy)),
	}
	if in.Policy == "" {
		in.Policy = domain.SplitPolicyEqual
	}

	for _, name := range se.Participants {
		id, err := lookup(name)
		if err != nil {
			return ledger.ExpenseInput{}, err
		}
		in.ParticipantIDs = append(in.ParticipantIDs, id)
	}

	if len(se.CustomAmounts) > 0 {
		in.CustomAmounts = make(map[string]int64)
		for name, s := range se.CustomAmounts {
			id, err := lookup(name)
			if err != nil {
				return ledger.ExpenseInput{}, err
			}
			if in.CustomAmounts[id], err = ledger.ParseAmount(s); err != nil {
				return ledger.ExpenseInput{}, err
			}
		}
	}
	if len(se.Percentages) > 0 {
		in.Percentages = make(map[string]decimal.Decimal)
		for name, s := range se.Percentages {
			id, err := lookup(name)
			if err != nil {
				return ledger.ExpenseInput{}, err
			}
			if in.Percentages[id], err = ledger.ParseFraction(s); err != nil {
				return ledger.ExpenseInput{}, err
			}
		}
	}
	return in, nil
}
