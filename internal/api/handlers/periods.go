package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/weekly-budget/internal/api/middleware"
	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/period"
)

// PeriodsHandler handles period-related endpoints.
type PeriodsHandler struct {
	periods *period.Service
	log     zerolog.Logger
}

// NewPeriodsHandler creates a new periods handler.
func NewPeriodsHandler(periods *period.Service, log zerolog.Logger) *PeriodsHandler {
	return &PeriodsHandler{
		periods: periods,
		log:     log,
	}
}

// ListPeriods handles GET /api/periods
func (h *PeriodsHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	query := r.URL.Query()
	planID := query.Get("planId")
	if planID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "planId is required")
		return
	}

	var filters period.Filters
	if v := query.Get("startDate"); v != "" {
		start, err := parseDate(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid startDate format")
			return
		}
		filters.StartDate = start
	}
	if v := query.Get("endDate"); v != "" {
		end, err := parseDate(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid endDate format")
			return
		}
		filters.EndDate = end
	}
	switch query.Get("sortOrder") {
	case "":
	case "asc":
		filters.SortOrder = domain.SortAsc
	case "desc":
		filters.SortOrder = domain.SortDesc
	default:
		middleware.WriteError(w, http.StatusBadRequest, "sortOrder must be asc or desc")
		return
	}
	filters.IncludeTransactions = query.Get("includeTransactions") == "true"

	periods, err := h.periods.FindAllByUser(r.Context(), userID, planID, filters)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	out := make([]periodJSON, 0, len(periods))
	for _, p := range periods {
		out = append(out, periodToJSON(p))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"periods": out,
		"count":   len(out),
	})
}

// ListPeriodTransactions handles GET /api/periods/{id}/transactions
func (h *PeriodsHandler) ListPeriodTransactions(w http.ResponseWriter, r *http.Request, periodID string) {
	userID := middleware.UserID(r.Context())

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
