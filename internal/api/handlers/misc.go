package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/weekly-budget/internal/account"
	"github.com/dvloznov/weekly-budget/internal/api/middleware"
	"github.com/dvloznov/weekly-budget/internal/category"
	"github.com/dvloznov/weekly-budget/internal/plan"
)

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	categories *category.Service
	log        zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(categories *category.Service, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		categories: categories,
		log:        log,
	}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	categories, err := h.categories.FindAllByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	out := make([]categoryJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryToJSON(c))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": out,
		"count":      len(out),
	})
}

// SeedCategories handles POST /api/categories/defaults
func (h *CategoriesHandler) SeedCategories(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	if err := h.categories.SeedDefaults(r.Context(), userID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{
		"status": "seeded",
	})
}

// CurrenciesHandler handles the currency listing endpoint.
type CurrenciesHandler struct {
	log zerolog.Logger
}

// NewCurrenciesHandler creates a new currencies handler.
func NewCurrenciesHandler(log zerolog.Logger) *CurrenciesHandler {
	return &CurrenciesHandler{log: log}
}

// ListCurrencies handles GET /api/currencies
func (h *CurrenciesHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"currencies": plan.Currencies,
	})
}

// AccountHandler handles account lifecycle endpoints.
type AccountHandler struct {
	account *account.Service
	log     zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(account *account.Service, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		account: account,
		log:     log,
	}
}

// DeleteAccount handles DELETE /api/account
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	if err := h.account.DeleteAccount(r.Context(), userID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
	})
}
