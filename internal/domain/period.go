package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the canonical weekly bucket of transactions for one (user, plan)
// pair. PeriodStart/PeriodEnd bound an ISO calendar week in UTC. At most one
// period exists per (user, plan, week).
//
// PeriodBalance and PeriodBalancePaidOnly are sums over this period's own
// transactions. ExpectedAllTimeBalance and ExpectedAllTimeBalancePaidOnly
// are running totals chained from all chronologically earlier periods of the
// same plan; they are derived state and are only ever written by the balance
// engine.
type Period struct {
	ID     string
	UserID string
	PlanID string

	PeriodStart time.Time
	PeriodEnd   time.Time

	PeriodBalance         decimal.Decimal
	PeriodBalancePaidOnly decimal.Decimal

	ExpectedAllTimeBalance         decimal.Decimal
	ExpectedAllTimeBalancePaidOnly decimal.Decimal

	// Transactions is populated on demand by the period read API; it is not
	// part of the persisted period row.
	Transactions []Transaction
}

// SortOrder orders period listings by periodStart.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)
