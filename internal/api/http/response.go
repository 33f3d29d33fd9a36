package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/ledger"
	"shared-wallet-backend/internal/logger"
	"shared-wallet-backend/internal/service"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInactiveWallet), errors.Is(err, domain.ErrInactiveMember):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// money is how amounts leave the API: exact cents plus display strings.
type money struct {
	Cents     int64  `json:"cents"`
	Amount    string `json:"amount"`
	Formatted string `json:"formatted"`
}

func newMoney(cents int64) money {
	return money{Cents: cents, Amount: ledger.DecimalAmount(cents), Formatted: ledger.FormatAmount(cents)}
}

type memberView struct {
	*domain.Member
	NetBalance money `json:"net_balance"`
}

type walletView struct {
	*domain.Wallet
	Members    []memberView `json:"members"`
	TotalSpent money        `json:"total_spent"`
}

func newWalletView(w *domain.Wallet) walletView {
	members := make([]memberView, len(w.Members))
	for i := range w.Members {
		members[i] = newMemberView(&w.Members[i])
	}
	return walletView{Wallet: w, Members: members, TotalSpent: newMoney(w.TotalSpentCents)}
}

func newMemberView(m *domain.Member) memberView {
	return memberView{Member: m, NetBalance: newMoney(m.NetBalanceCents())}
}

type debtView struct {
	FromMemberID string `json:"from_member_id"`
	FromName     string `json:"from_name,omitempty"`
	ToMemberID   string `json:"to_member_id"`
	ToName       string `json:"to_name,omitempty"`
	Amount       money  `json:"amount"`
}

func newDebtViews(report *service.DebtReport) []debtView {
	views := make([]debtView, 0, len(report.Debts))
	for _, d := range report.Debts {
		views = append(views, debtView{
			FromMemberID: d.FromMemberID,
			FromName:     report.Name(d.FromMemberID),
			ToMemberID:   d.ToMemberID,
			ToName:       report.Name(d.ToMemberID),
			Amount:       newMoney(d.AmountCents),
		})
	}
	return views
}

type categoryTotalView struct {
	Category domain.Category `json:"category"`
	Total    money           `json:"total"`
}

type monthlyTotalView struct {
	Month string `json:"month"`
	Total money  `json:"total"`
}
