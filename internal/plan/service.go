// Package plan holds plan CRUD plus the totals-writer capability consumed
// by the balance engine.
package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/period"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// Clock supplies the current time; injected so tests control the
// dateOfCreation stamp.
type Clock func() time.Time

// Service manages plans. Summary balance fields are never written by the
// CRUD paths here; only UpdateTotals touches them, and only the balance
// engine calls it.
type Service struct {
	plans store.PlanRepository
	now   Clock
	log   zerolog.Logger
}

// NewService creates a new plan service. now may be nil, in which case
// time.Now is used.
func NewService(plans store.PlanRepository, now Clock, log zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		plans: plans,
		now:   now,
		log:   log,
	}
}

// CreateInput carries the user-settable fields of a new plan.
type CreateInput struct {
	Description string
	Currency    string
	IsDefault   bool
}

// Create registers a new active plan with zeroed summary balances.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*domain.Plan, error) {
	if !SupportedCurrency(in.Currency) {
		return nil, fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidArgument, in.Currency)
	}

	p := &domain.Plan{
		ID:     uuid.New().String(),
		UserID: userID,

		Description: in.Description,
		Currency:    in.Currency,

		CurrentBalance:  decimal.Zero,
		ExpectedBalance: decimal.Zero,

		Active:    true,
		IsDefault: in.IsDefault,

		DateOfCreation: s.now().UTC(),
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return p, nil
}

// FindAllByUser lists the user's active plans.
func (s *Service) FindAllByUser(ctx context.Context, userID string) ([]*domain.Plan, error) {
	return s.plans.FindActiveByUser(ctx, userID)
}

// Update rewrites a plan's description and currency.
func (s *Service) Update(ctx context.Context, userID, planID, description, currency string) error {
	p, err := s.plans.FindByIDAndUser(ctx, userID, planID)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if !SupportedCurrency(currency) {
		return fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidArgument, currency)
	}

	p.Description = description
	p.Currency = currency
	if err := s.plans.Update(ctx, p); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// Remove deactivates a plan. The default plan cannot be removed.
func (s *Service) Remove(ctx context.Context, userID, planID string) error {
	p, err := s.plans.FindByIDAndUser(ctx, userID, planID)
	if err != nil {
		return fmt.Errorf("remove plan: %w", err)
	}
	if p.IsDefault {
		return fmt.Errorf("%w: the default plan cannot be removed", domain.ErrConflict)
	}

	p.Active = false
	if err := s.plans.Update(ctx, p); err != nil {
		return fmt.Errorf("remove plan: %w", err)
	}

	s.log.Info().Str("plan_id", planID).Msg("Plan deactivated")
	return nil
}

// UpdateTotals writes the plan's cached summary balances. It implements
// period.PlanTotalsWriter and is the only write path for those fields.
func (s *Service) UpdateTotals(ctx context.Context, userID, planID string, currentBalance, expectedBalance decimal.Decimal) error {
	if _, err := s.plans.FindByIDAndUser(ctx, userID, planID); err != nil {
		return fmt.Errorf("update plan totals: %w", err)
	}
	return s.plans.UpdateTotals(ctx, planID, currentBalance, expectedBalance)
}

// Ensure Service implements the totals-writer capability.
var _ period.PlanTotalsWriter = (*Service)(nil)
