package period

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// Resolver maps a transaction date to the canonical weekly period of a
// (user, plan) pair, creating the period on first use of its week.
type Resolver struct {
	periods store.PeriodRepository
	log     zerolog.Logger
}

// NewResolver creates a new period resolver.
func NewResolver(periods store.PeriodRepository, log zerolog.Logger) *Resolver {
	return &Resolver{
		periods: periods,
		log:     log,
	}
}

// Resolve returns the ID of the period whose ISO week contains date,
// creating it with zeroed balances when the week has no period yet.
//
// Callers must hold the (user, plan) mutation lock; together with the
// store's same-week short-circuit on Create this keeps concurrent resolves
// from producing two periods for one week.
func (r *Resolver) Resolve(ctx context.Context, userID, planID string, date time.Time) (string, error) {
	if date.IsZero() {
		return "", fmt.Errorf("%w: transaction date is required", domain.ErrInvalidArgument)
	}

	weekStart := StartOfWeek(date)

	existing, err := r.periods.FindByWeek(ctx, userID, planID, weekStart)
	if err != nil {
		return "", fmt.Errorf("resolve period: find week: %w", err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	created, err := r.periods.Create(ctx, &domain.Period{
		ID:          uuid.New().String(),
		UserID:      userID,
		PlanID:      planID,
		PeriodStart: weekStart,
		PeriodEnd:   EndOfWeek(date),

		PeriodBalance:                  decimal.Zero,
		PeriodBalancePaidOnly:          decimal.Zero,
		ExpectedAllTimeBalance:         decimal.Zero,
		ExpectedAllTimeBalancePaidOnly: decimal.Zero,
	})
	if err != nil {
		return "", fmt.Errorf("resolve period: create: %w", err)
	}

	r.log.Debug().
		Str("plan_id", planID).
		Time("period_start", created.PeriodStart).
		Msg("Created period for new week")

	return created.ID, nil
}
