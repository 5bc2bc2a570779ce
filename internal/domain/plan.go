package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a budgeting plan owned by one user. Exactly one plan per user is
// the default plan; the default plan cannot be removed or deactivated.
//
// CurrentBalance and ExpectedBalance are caches of the most recent period's
// paid-only and full running totals. They are owned by the balance engine's
// totals sink and must never be mutated by plan CRUD.
type Plan struct {
	ID     string
	UserID string

	Description string
	Currency    string

	CurrentBalance  decimal.Decimal
	ExpectedBalance decimal.Decimal

	Active    bool
	IsDefault bool

	DateOfCreation time.Time
}

// Category is user-scoped transaction metadata. It plays no part in the
// balance math beyond filtering and display.
type Category struct {
	ID     string
	UserID string

	Description string
	Icon        string
	Color       string
	Type        TransactionType
	Active      bool
}
