package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"shared-wallet-backend/internal/security"
	"shared-wallet-backend/internal/service"
)

// NewRouter wires the wallet API. Everything under /api/v1 requires a bearer token.
func NewRouter(wallets service.WalletService, notifications service.NotificationService, hub *Hub, tm security.TokenManager) *mux.Router {
	h := NewWalletHandler(wallets, notifications, hub)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.Use(LoggingMiddleware)
	router.Use(AuthMiddleware(tm))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/wallets", h.CreateWallet).Methods(http.MethodPost)
	api.HandleFunc("/wallets", h.ListWallets).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{walletID}", h.GetWallet).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{walletID}", h.DeactivateWallet).Methods(http.MethodDelete)

	api.HandleFunc("/wallets/{walletID}/members", h.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/wallets/{walletID}/members/{memberID}", h.GetMember).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{walletID}/members/{memberID}", h.DeactivateMember).Methods(http.MethodDelete)

	api.HandleFunc("/wallets/{walletID}/expenses", h.AddExpense).Methods(http.MethodPost)
	api.HandleFunc("/wallets/{walletID}/expenses/{expenseID}/settle", h.SettleExpense).Methods(http.MethodPost)

	api.HandleFunc("/wallets/{walletID}/settlements", h.AddSettlement).Methods(http.MethodPost)
	api.HandleFunc("/wallets/{walletID}/settlements/{settlementID}/confirm", h.ConfirmSettlement).Methods(http.MethodPost)

	api.HandleFunc("/wallets/{walletID}/debts", h.GetDebts).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{walletID}/summary/categories", h.GetCategoryTotals).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{walletID}/summary/months", h.GetMonthlyTotals).Methods(http.MethodGet)

	api.HandleFunc("/wallets/{walletID}/activities", h.ListActivities).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{walletID}/stream", h.Stream).Methods(http.MethodGet)

	return router
}
