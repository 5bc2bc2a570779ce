// Package store defines the repository interfaces the services are written
// against. Concrete implementations live in store/inmemory (tests, local
// runs) and infra/bigquery (production).
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/domain"
)

// PeriodFilter narrows a period listing. StartFrom/EndUntil are inclusive
// window bounds (already widened to whole weeks by the caller).
type PeriodFilter struct {
	UserID string
	PlanID string

	StartFrom *time.Time
	EndUntil  *time.Time

	Order domain.SortOrder
}

// PlanRepository persists plans. UpdateTotals is intentionally a separate
// narrow write: it is the only path allowed to touch the cached balance
// fields.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) error

	// FindByIDAndUser returns domain.ErrNotFound when the plan does not
	// exist or belongs to a different user.
	FindByIDAndUser(ctx context.Context, userID, planID string) (*domain.Plan, error)
	FindActiveByUser(ctx context.Context, userID string) ([]*domain.Plan, error)

	// Update persists description, currency, active and default flags. It
	// must not write the balance fields.
	Update(ctx context.Context, plan *domain.Plan) error

	// UpdateTotals writes the cached summary balances.
	UpdateTotals(ctx context.Context, planID string, currentBalance, expectedBalance decimal.Decimal) error

	DeleteByUser(ctx context.Context, userID string) error
}

// PeriodRepository persists weekly periods.
type PeriodRepository interface {
	// Create inserts the period. When a period for the same
	// (user, plan, periodStart) already exists, implementations return the
	// existing row instead of inserting a duplicate.
	Create(ctx context.Context, period *domain.Period) (*domain.Period, error)

	// FindFirstByOwner returns domain.ErrNotFound when the period does not
	// exist or belongs to a different user.
	FindFirstByOwner(ctx context.Context, userID, periodID string) (*domain.Period, error)

	// FindByWeek returns the period whose window starts at weekStart, or
	// (nil, nil) when the week has no period yet.
	FindByWeek(ctx context.Context, userID, planID string, weekStart time.Time) (*domain.Period, error)

	// FindManyByIDs returns the user's periods with the given IDs, ordered
	// by periodStart ascending. Unknown IDs are skipped.
	FindManyByIDs(ctx context.Context, userID string, periodIDs []string) ([]*domain.Period, error)

	// FindFrom returns all periods of the plan with periodStart >= start,
	// ordered by periodStart ascending.
	FindFrom(ctx context.Context, userID, planID string, start time.Time) ([]*domain.Period, error)

	// FindLatestBefore returns the most recent period with
	// periodStart < start, or (nil, nil) when none exists.
	FindLatestBefore(ctx context.Context, userID, planID string, start time.Time) (*domain.Period, error)

	FindRange(ctx context.Context, filter PeriodFilter) ([]*domain.Period, error)

	// UpdateBalances persists the four balance fields of the period.
	UpdateBalances(ctx context.Context, period *domain.Period) error

	DeleteByUser(ctx context.Context, userID string) error
}

// TransactionRepository persists ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	CreateMany(ctx context.Context, txs []*domain.Transaction) error
	Update(ctx context.Context, tx *domain.Transaction) error

	// FindFirstByOwner returns domain.ErrNotFound when no transaction
	// matches (id, user, period).
	FindFirstByOwner(ctx context.Context, userID, transactionID, periodID string) (*domain.Transaction, error)

	// FindByPeriod returns the user's transactions in the period, ordered
	// by date ascending.
	FindByPeriod(ctx context.Context, userID, periodID string) ([]*domain.Transaction, error)

	// FindPendingDueBy returns unpaid transactions of the plan dated on or
	// before cutoff, ordered by date ascending.
	FindPendingDueBy(ctx context.Context, userID, planID string, cutoff time.Time) ([]*domain.Transaction, error)

	Delete(ctx context.Context, transactionID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// CategoryRepository persists per-user categories.
type CategoryRepository interface {
	CreateMany(ctx context.Context, categories []*domain.Category) error
	FindByUser(ctx context.Context, userID string) ([]*domain.Category, error)
	DeleteByUser(ctx context.Context, userID string) error
}
