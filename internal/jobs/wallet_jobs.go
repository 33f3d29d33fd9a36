package jobs

import (
	"context"
	"errors"
	"fmt"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/service"
)

// RetryPendingSnapshots re-saves wallets whose last snapshot save failed
func (jr *JobRunner) RetryPendingSnapshots() {
	_ = jr.runWithRecovery("RetryPendingSnapshots", func(ctx context.Context) error {
		pending := jr.services.Wallet.PendingSnapshots()
		if len(pending) == 0 {
			logger.Debug("No pending wallet snapshots")
			return nil
		}

		saved, err := jr.services.Wallet.RetryPendingSnapshots(ctx)
		logger.Info("Retried pending wallet snapshots", "pending", len(pending), "saved", saved)
		return err
	})
}

// SendDebtReminders emails every debtor in an active wallet the list of members they owe
func (jr *JobRunner) SendDebtReminders() {
	_ = jr.runWithRecovery("SendDebtReminders", func(ctx context.Context) error {
		sent, err := jr.sendDebtReminders(ctx)
		logger.Info("Debt reminders sent", "count", sent)
		return err
	})
}

func (jr *JobRunner) sendDebtReminders(ctx context.Context) (int, error) {
	if jr.services.Standalone {
		if _, err := jr.services.Wallet.Load(ctx); err != nil {
			return 0, err
		}
	}

	wallets, err := jr.services.Wallet.ListWallets(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list wallets: %w", err)
	}

	sent := 0
	var errs []error
	for i := range wallets {
		w := &wallets[i]
		if !w.IsActive() {
			continue
		}

		debts, err := jr.services.Wallet.GetSimplifiedDebts(ctx, w.ID)
		if err != nil {
			logger.WithWallet(w.ID).Error("Failed to get debts for wallet", "error", err)
			errs = append(errs, err)
			continue
		}

		for _, reminder := range groupByDebtor(w, debts) {
			if err := jr.services.Email.SendDebtReminder(ctx, reminder.to, w.Name, reminder.lines); err != nil {
				logger.WithWallet(w.ID).Error("Failed to send debt reminder",
					"memberID", reminder.to.MemberID,
					"error", err)
				errs = append(errs, err)
				continue
			}
			sent++
		}
	}

	return sent, errors.Join(errs...)
}

type reminder struct {
	to    domain.Recipient
	lines []service.DebtLine
}

// groupByDebtor keeps the debts' order (largest first) within and across debtors.
// Debtors without a contact are skipped.
func groupByDebtor(w *domain.Wallet, debts []domain.Debt) []reminder {
	index := make(map[string]int)
	var out []reminder
	for _, d := range debts {
		debtor := w.Member(d.FromMemberID)
		if debtor == nil || debtor.Contact == "" {
			continue
		}

		creditorName := d.ToMemberID
		if creditor := w.Member(d.ToMemberID); creditor != nil {
			creditorName = creditor.Name
		}

		i, ok := index[debtor.ID]
		if !ok {
			i = len(out)
			index[debtor.ID] = i
			out = append(out, reminder{
				to: domain.Recipient{MemberID: debtor.ID, Name: debtor.Name, Contact: debtor.Contact},
			})
		}
		out[i].lines = append(out[i].lines, service.DebtLine{CreditorName: creditorName, AmountCents: d.AmountCents})
	}
	return out
}
