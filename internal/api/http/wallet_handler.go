package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/ledger"
	"shared-wallet-backend/internal/service"
)

const maxBodyBytes = 1 << 20

// WalletHandler exposes the wallet service as a JSON API
type WalletHandler struct {
	wallets       service.WalletService
	notifications service.NotificationService
	hub           *Hub
}

func NewWalletHandler(wallets service.WalletService, notifications service.NotificationService, hub *Hub) *WalletHandler {
	return &WalletHandler{wallets: wallets, notifications: notifications, hub: hub}
}

type createWalletRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	FounderName    string `json:"founder_name"`
	FounderContact string `json:"founder_contact"`
}

type addMemberRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type addExpenseRequest struct {
	Amount         string            `json:"amount"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	PayerID        string            `json:"payer_id"`
	ParticipantIDs []string          `json:"participant_ids"`
	Policy         string            `json:"policy"`
	CustomAmounts  map[string]string `json:"custom_amounts"`
	Percentages    map[string]string `json:"percentages"`
}

type addSettlementRequest struct {
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	Amount       string `json:"amount"`
	Method       string `json:"method"`
	Note         string `json:"note"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	wallet, err := h.wallets.CreateWallet(r.Context(), req.Name, req.Description, req.FounderName, req.FounderContact)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWalletView(wallet))
}

func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.wallets.ListWallets(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	views := make([]walletView, len(wallets))
	for i := range wallets {
		views[i] = newWalletView(&wallets[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallets": views})
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.GetWallet(r.Context(), mux.Vars(r)["walletID"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWalletView(wallet))
}

func (h *WalletHandler) DeactivateWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.DeactivateWallet(r.Context(), mux.Vars(r)["walletID"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWalletView(wallet))
}

func (h *WalletHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	m, err := h.wallets.AddMember(r.Context(), mux.Vars(r)["walletID"], req.Name, req.Contact)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMemberView(m))
}

func (h *WalletHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	m, err := h.wallets.GetMember(r.Context(), vars["walletID"], vars["memberID"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberView(m))
}

func (h *WalletHandler) DeactivateMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	m, err := h.wallets.DeactivateMember(r.Context(), vars["walletID"], vars["memberID"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberView(m))
}

func (h *WalletHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	e, err := h.wallets.AddExpense(r.Context(), mux.Vars(r)["walletID"], in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"expense": e, "amount": newMoney(e.AmountCents), "shares": shareViews(e)})
}

func (req addExpenseRequest) toInput() (ledger.ExpenseInput, error) {
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		return ledger.ExpenseInput{}, err
	}

	policy := domain.SplitPolicy(strings.ToUpper(strings.TrimSpace(req.Policy)))
	if policy == "" {
		policy = domain.SplitPolicyEqual
	}

	in := ledger.ExpenseInput{
		AmountCents:    amount,
		Description:    req.Description,
		Category:       domain.Category(strings.TrimSpace(req.Category)),
		PayerID:        req.PayerID,
		ParticipantIDs: req.ParticipantIDs,
		Policy:         policy,
	}

	if len(req.CustomAmounts) > 0 {
		in.CustomAmounts = make(map[string]int64, len(req.CustomAmounts))
		for id, s := range req.CustomAmounts {
			cents, err := ledger.ParseAmount(s)
			if err != nil {
				return ledger.ExpenseInput{}, err
			}
			in.CustomAmounts[id] = cents
		}
	}
	if len(req.Percentages) > 0 {
		in.Percentages = make(map[string]decimal.Decimal, len(req.Percentages))
		for id, s := range req.Percentages {
			f, err := ledger.ParseFraction(s)
			if err != nil {
				return ledger.ExpenseInput{}, err
			}
			in.Percentages[id] = f
		}
	}
	return in, nil
}

func shareViews(e *domain.Expense) map[string]money {
	shares := ledger.Shares(e)
	views := make(map[string]money, len(shares))
	for id, cents := range shares {
		views[id] = newMoney(cents)
	}
	return views
}

func (h *WalletHandler) SettleExpense(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	e, err := h.wallets.SettleExpense(r.Context(), vars["walletID"], vars["expenseID"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expense": e})
}

func (h *WalletHandler) AddSettlement(w http.ResponseWriter, r *http.Request) {
	var req addSettlementRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	st, err := h.wallets.AddSettlement(r.Context(), mux.Vars(r)["walletID"], ledger.SettlementInput{
		FromMemberID: req.FromMemberID,
		ToMemberID:   req.ToMemberID,
		AmountCents:  amount,
		Method:       domain.ParsePaymentMethod(req.Method),
		Note:         req.Note,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"settlement": st, "amount": newMoney(st.AmountCents)})
}

func (h *WalletHandler) ConfirmSettlement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	st, err := h.wallets.ConfirmSettlement(r.Context(), vars["walletID"], vars["settlementID"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlement": st, "amount": newMoney(st.AmountCents)})
}

// GetDebts returns the simplified pairwise debts, or with ?mode=minimized the
// suggested fewest-transfers plan.
func (h *WalletHandler) GetDebts(w http.ResponseWriter, r *http.Request) {
	walletID := mux.Vars(r)["walletID"]
	mode := r.URL.Query().Get("mode")

	var minimized bool
	switch mode {
	case "", "simplified":
		mode = "simplified"
	case "minimized":
		minimized = true
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q", mode))
		return
	}

	report, err := h.wallets.GetDebtReport(r.Context(), walletID, minimized)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "debts": newDebtViews(report)})
}

func (h *WalletHandler) GetCategoryTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.wallets.GetCategoryTotals(r.Context(), mux.Vars(r)["walletID"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	views := make([]categoryTotalView, 0, len(totals))
	for _, c := range domain.Categories {
		if cents, ok := totals[c]; ok {
			views = append(views, categoryTotalView{Category: c, Total: newMoney(cents)})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": views})
}

func (h *WalletHandler) GetMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.wallets.GetMonthlyTotals(r.Context(), mux.Vars(r)["walletID"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	views := make([]monthlyTotalView, len(totals))
	for i, t := range totals {
		views[i] = monthlyTotalView{Month: t.Month, Total: newMoney(t.AmountCents)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": views})
}

func (h *WalletHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	walletID := mux.Vars(r)["walletID"]
	if _, err := h.wallets.GetWallet(r.Context(), walletID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	page := queryInt32(q.Get("page"), 1)
	pageSize := queryInt32(q.Get("page_size"), 20)

	var types []domain.ActivityType
	for _, t := range q["type"] {
		types = append(types, domain.ActivityType(strings.ToUpper(t)))
	}

	activities, total, err := h.notifications.ListActivities(r.Context(), walletID, types, page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": activities, "total": total, "page": page})
}

func (h *WalletHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if _, err := h.wallets.GetWallet(r.Context(), mux.Vars(r)["walletID"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.hub.serveStream(w, r)
}

func queryInt32(s string, fallback int32) int32 {
	if s == "" {
		return fallback
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(n)
}
