package grpc

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/ledger"
	"shared-wallet-backend/internal/service"
)

// Amounts travel as decimal strings next to the raw cents; struct numbers are
// doubles and lose precision past 2^53.

type walletSummary struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Status      domain.WalletStatus `json:"status"`
	MemberCount int                 `json:"member_count"`
	TotalSpent  string              `json:"total_spent"`
}

type walletDetail struct {
	*domain.Wallet
	TotalSpent string `json:"total_spent"`
}

type debtLine struct {
	FromMemberID string `json:"from_member_id"`
	FromName     string `json:"from_name"`
	ToMemberID   string `json:"to_member_id"`
	ToName       string `json:"to_name"`
	Amount       string `json:"amount"`
	AmountCents  int64  `json:"amount_cents"`
}

func mapWalletSummary(w *domain.Wallet) walletSummary {
	return walletSummary{
		ID:          w.ID,
		Name:        w.Name,
		Status:      w.Status,
		MemberCount: len(w.Members),
		TotalSpent:  ledger.DecimalAmount(w.TotalSpentCents),
	}
}

func mapWalletDetail(w *domain.Wallet) walletDetail {
	return walletDetail{Wallet: w, TotalSpent: ledger.DecimalAmount(w.TotalSpentCents)}
}

func mapDebtLines(report *service.DebtReport) []debtLine {
	lines := make([]debtLine, len(report.Debts))
	for i, d := range report.Debts {
		lines[i] = debtLine{
			FromMemberID: d.FromMemberID,
			FromName:     report.Name(d.FromMemberID),
			ToMemberID:   d.ToMemberID,
			ToName:       report.Name(d.ToMemberID),
			Amount:       ledger.DecimalAmount(d.AmountCents),
			AmountCents:  d.AmountCents,
		}
	}
	return lines
}

// toStruct converts any JSON-tagged value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}
