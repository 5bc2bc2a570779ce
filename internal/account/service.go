// Package account covers the one piece of account lifecycle that touches
// the ledger: deleting an account must cascade-delete all ledger data.
package account

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/weekly-budget/internal/store"
)

// Service deletes a user's ledger data.
type Service struct {
	transactions store.TransactionRepository
	periods      store.PeriodRepository
	plans        store.PlanRepository
	categories   store.CategoryRepository
	log          zerolog.Logger
}

// NewService creates a new account service.
func NewService(
	transactions store.TransactionRepository,
	periods store.PeriodRepository,
	plans store.PlanRepository,
	categories store.CategoryRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		transactions: transactions,
		periods:      periods,
		plans:        plans,
		categories:   categories,
		log:          log,
	}
}

// DeleteAccount removes every record the user owns: transactions first,
// then their periods, plans and categories.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.transactions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: transactions: %w", err)
	}
	if err := s.periods.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: periods: %w", err)
	}
	if err := s.plans.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: plans: %w", err)
	}
	if err := s.categories.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: categories: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("Account data deleted")
	return nil
}
