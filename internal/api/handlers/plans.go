package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/weekly-budget/internal/api/middleware"
	"github.com/dvloznov/weekly-budget/internal/plan"
)

// PlansHandler handles plan-related endpoints.
type PlansHandler struct {
	plans *plan.Service
	log   zerolog.Logger
}

// NewPlansHandler creates a new plans handler.
func NewPlansHandler(plans *plan.Service, log zerolog.Logger) *PlansHandler {
	return &PlansHandler{
		plans: plans,
		log:   log,
	}
}

// ListPlans handles GET /api/plans
func (h *PlansHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	plans, err := h.plans.FindAllByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	out := make([]planJSON, 0, len(plans))
	for _, p := range plans {
		out = append(out, planToJSON(p))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"plans": out,
		"count": len(out),
	})
}

// CreatePlan handles POST /api/plans
func (h *PlansHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req struct {
		Description string `json:"description"`
		Currency    string `json:"currency"`
		IsDefault   bool   `json:"isDefault"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.plans.Create(r.Context(), userID, plan.CreateInput{
		Description: req.Description,
		Currency:    req.Currency,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, planToJSON(created))
}

// UpdatePlan handles PUT /api/plans/{id}
func (h *PlansHandler) UpdatePlan(w http.ResponseWriter, r *http.Request, planID string) {
	userID := middleware.UserID(r.Context())

	var req struct {
		Description string `json:"description"`
		Currency    string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.plans.Update(r.Context(), userID, planID, req.Description, req.Currency); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "updated",
	})
}

// DeletePlan handles DELETE /api/plans/{id}
func (h *PlansHandler) DeletePlan(w http.ResponseWriter, r *http.Request, planID string) {
	userID := middleware.UserID(r.Context())

	if err := h.plans.Remove(r.Context(), userID, planID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
	})
}
