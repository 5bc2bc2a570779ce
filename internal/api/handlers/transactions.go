package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/api/middleware"
	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/ledger"
	"github.com/dvloznov/weekly-budget/internal/period"
)

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	ledger  *ledger.Service
	periods *period.Service
	log     zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(ledger *ledger.Service, periods *period.Service, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		ledger:  ledger,
		periods: periods,
		log:     log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	periodID := r.URL.Query().Get("periodId")
	if periodID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "periodId is required")
		return
	}

	txs, err := h.periods.FindTransactions(r.Context(), userID, periodID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactionsToJSON(txs),
		"count":        len(txs),
	})
}

type transactionRequest struct {
	PlanID      string          `json:"planId"`
	PeriodID    string          `json:"periodId"`
	CategoryID  string          `json:"categoryId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	IsPaid      bool            `json:"isPaid"`
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	in := ledger.CreateInput{
		PlanID:      req.PlanID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        domain.TransactionType(req.Type),
		Date:        date,
		IsPaid:      req.IsPaid,
	}
	if err := h.ledger.Create(r.Context(), userID, in); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{
		"status": "created",
	})
}

// CreateTransactionsBulk handles POST /api/transactions/bulk
func (h *TransactionsHandler) CreateTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var reqs []transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inputs := make([]ledger.CreateInput, 0, len(reqs))
	for _, req := range reqs {
		date, err := parseDate(req.Date)
		if err != nil {
			writeServiceError(w, h.log, err)
			return
		}
		inputs = append(inputs, ledger.CreateInput{
			PlanID:      req.PlanID,
			CategoryID:  req.CategoryID,
			Description: req.Description,
			Amount:      req.Amount,
			Type:        domain.TransactionType(req.Type),
			Date:        date,
			IsPaid:      req.IsPaid,
		})
	}
	if err := h.ledger.CreateMany(r.Context(), userID, inputs); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "created",
		"count":  len(inputs),
	})
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID := middleware.UserID(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PeriodID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "periodId is required")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	in := ledger.UpdateInput{
		PeriodID:    req.PeriodID,
		PlanID:      req.PlanID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        domain.TransactionType(req.Type),
		Date:        date,
		IsPaid:      req.IsPaid,
	}
	if err := h.ledger.Update(r.Context(), userID, transactionID, in); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "updated",
	})
}

// PayTransaction handles PATCH /api/transactions/{id}/pay
func (h *TransactionsHandler) PayTransaction(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID := middleware.UserID(r.Context())

	var req struct {
		PeriodID string `json:"periodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PeriodID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "periodId is required")
		return
	}

	if err := h.ledger.Pay(r.Context(), userID, req.PeriodID, transactionID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "paid",
	})
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, transactionID string) {
	userID := middleware.UserID(r.Context())

	periodID := r.URL.Query().Get("periodId")
	if periodID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "periodId is required")
		return
	}

	if err := h.ledger.Remove(r.Context(), userID, periodID, transactionID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
	})
}

// ListPendingTransactions handles GET /api/transactions/pending
func (h *TransactionsHandler) ListPendingTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	planID := r.URL.Query().Get("planId")
	if planID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "planId is required")
		return
	}

	txs, err := h.ledger.FindPendingDueSoon(r.Context(), userID, planID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactionsToJSON(txs),
		"count":        len(txs),
	})
}
