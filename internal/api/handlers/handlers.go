// Package handlers holds the HTTP handlers for the budget API. Routing is
// wired in cmd/api; handlers decode the request, call the service and map
// service errors onto the response.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/api/middleware"
	"github.com/dvloznov/weekly-budget/internal/domain"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Callers only ever learn the taxonomy; internal detail goes to the log.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrInvalidArgument):
		middleware.WriteError(w, http.StatusBadRequest, "Invalid argument")
	case errors.Is(err, domain.ErrConflict):
		middleware.WriteError(w, http.StatusConflict, "Conflict")
	default:
		log.Error().Err(err).Msg("Operation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Operation failed")
	}
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", domain.ErrInvalidArgument)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", domain.ErrInvalidArgument, value)
}

// transactionJSON is the wire shape of a transaction.
type transactionJSON struct {
	ID          string          `json:"id"`
	PlanID      string          `json:"planId"`
	PeriodID    string          `json:"periodId"`
	CategoryID  string          `json:"categoryId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        time.Time       `json:"date"`
	IsPaid      bool            `json:"isPaid"`
	DateCreated time.Time       `json:"dateCreated"`
}

func transactionToJSON(tx *domain.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		PlanID:      tx.PlanID,
		PeriodID:    tx.PeriodID,
		CategoryID:  tx.CategoryID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Date:        tx.Date,
		IsPaid:      tx.IsPaid,
		DateCreated: tx.DateCreated,
	}
}

func transactionsToJSON(txs []*domain.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionToJSON(tx))
	}
	return out
}

// periodJSON is the wire shape of a period.
type periodJSON struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"planId"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`

	PeriodBalance         decimal.Decimal `json:"periodBalance"`
	PeriodBalancePaidOnly decimal.Decimal `json:"periodBalancePaidOnly"`

	ExpectedAllTimeBalance         decimal.Decimal `json:"expectedAllTimeBalance"`
	ExpectedAllTimeBalancePaidOnly decimal.Decimal `json:"expectedAllTimeBalancePaidOnly"`

	Transactions []transactionJSON `json:"transactions,omitempty"`
}

func periodToJSON(p *domain.Period) periodJSON {
	out := periodJSON{
		ID:                             p.ID,
		PlanID:                         p.PlanID,
		PeriodStart:                    p.PeriodStart,
		PeriodEnd:                      p.PeriodEnd,
		PeriodBalance:                  p.PeriodBalance,
		PeriodBalancePaidOnly:          p.PeriodBalancePaidOnly,
		ExpectedAllTimeBalance:         p.ExpectedAllTimeBalance,
		ExpectedAllTimeBalancePaidOnly: p.ExpectedAllTimeBalancePaidOnly,
	}
	for i := range p.Transactions {
		out.Transactions = append(out.Transactions, transactionToJSON(&p.Transactions[i]))
	}
	return out
}

// planJSON is the wire shape of a plan.
type planJSON struct {
	ID              string          `json:"id"`
	Description     string          `json:"description"`
	Currency        string          `json:"currency"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	IsDefault       bool            `json:"isDefault"`
	DateOfCreation  time.Time       `json:"dateOfCreation"`
}

func planToJSON(p *domain.Plan) planJSON {
	return planJSON{
		ID:              p.ID,
		Description:     p.Description,
		Currency:        p.Currency,
		CurrentBalance:  p.CurrentBalance,
		ExpectedBalance: p.ExpectedBalance,
		IsDefault:       p.IsDefault,
		DateOfCreation:  p.DateOfCreation,
	}
}

// categoryJSON is the wire shape of a category.
type categoryJSON struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Type        string `json:"type"`
}

func categoryToJSON(c *domain.Category) categoryJSON {
	return categoryJSON{
		ID:          c.ID,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		Type:        string(c.Type),
	}
}
