package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// PlanStore is an in-memory implementation of store.PlanRepository.
type PlanStore struct {
	mu    sync.RWMutex
	plans map[string]*domain.Plan
}

// NewPlanStore creates an empty plan store.
func NewPlanStore() *PlanStore {
	return &PlanStore{plans: make(map[string]*domain.Plan)}
}

// Create implements store.PlanRepository.
func (s *PlanStore) Create(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == "" {
		return fmt.Errorf("%w: plan ID is required", domain.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	planCopy := *plan
	s.plans[plan.ID] = &planCopy
	return nil
}

// FindByIDAndUser implements store.PlanRepository.
func (s *PlanStore) FindByIDAndUser(ctx context.Context, userID, planID string) (*domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, exists := s.plans[planID]
	if !exists || plan.UserID != userID {
		return nil, fmt.Errorf("%w: plan %s", domain.ErrNotFound, planID)
	}

	planCopy := *plan
	return &planCopy, nil
}

// FindActiveByUser implements store.PlanRepository.
func (s *PlanStore) FindActiveByUser(ctx context.Context, userID string) ([]*domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Plan
	for _, plan := range s.plans {
		if plan.UserID != userID || !plan.Active {
			continue
		}
		planCopy := *plan
		result = append(result, &planCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DateOfCreation.Before(result[j].DateOfCreation)
	})
	return result, nil
}

// Update implements store.PlanRepository. The stored row's balance fields
// are preserved; only UpdateTotals may change them.
func (s *PlanStore) Update(ctx context.Context, plan *domain.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.plans[plan.ID]
	if !exists {
		return fmt.Errorf("%w: plan %s", domain.ErrNotFound, plan.ID)
	}

	planCopy := *plan
	planCopy.CurrentBalance = existing.CurrentBalance
	planCopy.ExpectedBalance = existing.ExpectedBalance
	s.plans[plan.ID] = &planCopy
	return nil
}

// UpdateTotals implements store.PlanRepository.
func (s *PlanStore) UpdateTotals(ctx context.Context, planID string, currentBalance, expectedBalance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, exists := s.plans[planID]
	if !exists {
		return fmt.Errorf("%w: plan %s", domain.ErrNotFound, planID)
	}

	plan.CurrentBalance = currentBalance
	plan.ExpectedBalance = expectedBalance
	return nil
}

// DeleteByUser implements store.PlanRepository.
func (s *PlanStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, plan := range s.plans {
		if plan.UserID == userID {
			delete(s.plans, id)
		}
	}
	return nil
}

// Ensure PlanStore implements the repository interface.
var _ store.PlanRepository = (*PlanStore)(nil)
