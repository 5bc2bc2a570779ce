package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// PeriodStore is an in-memory implementation of store.PeriodRepository.
type PeriodStore struct {
	mu      sync.RWMutex
	periods map[string]*domain.Period
}

// NewPeriodStore creates an empty period store.
func NewPeriodStore() *PeriodStore {
	return &PeriodStore{periods: make(map[string]*domain.Period)}
}

// Create implements store.PeriodRepository. When a period for the same
// (user, plan, periodStart) already exists, the existing row is returned
// instead of inserting a duplicate; the chain invariant of one period per
// week must hold even if two resolves race past the caller's lock.
func (s *PeriodStore) Create(ctx context.Context, period *domain.Period) (*domain.Period, error) {
	if period.ID == "" {
		return nil, fmt.Errorf("%w: period ID is required", domain.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.periods {
		if existing.UserID == period.UserID &&
			existing.PlanID == period.PlanID &&
			existing.PeriodStart.Equal(period.PeriodStart) {
			existingCopy := *existing
			return &existingCopy, nil
		}
	}

	periodCopy := *period
	periodCopy.Transactions = nil
	s.periods[period.ID] = &periodCopy

	createdCopy := periodCopy
	return &createdCopy, nil
}

// FindFirstByOwner implements store.PeriodRepository.
func (s *PeriodStore) FindFirstByOwner(ctx context.Context, userID, periodID string) (*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	period, exists := s.periods[periodID]
	if !exists || period.UserID != userID {
		return nil, fmt.Errorf("%w: period %s", domain.ErrNotFound, periodID)
	}

	periodCopy := *period
	return &periodCopy, nil
}

// FindByWeek implements store.PeriodRepository.
func (s *PeriodStore) FindByWeek(ctx context.Context, userID, planID string, weekStart time.Time) (*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, period := range s.periods {
		if period.UserID == userID && period.PlanID == planID && period.PeriodStart.Equal(weekStart) {
			periodCopy := *period
			return &periodCopy, nil
		}
	}
	return nil, nil
}

// FindManyByIDs implements store.PeriodRepository.
func (s *PeriodStore) FindManyByIDs(ctx context.Context, userID string, periodIDs []string) ([]*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Period
	for _, id := range periodIDs {
		period, exists := s.periods[id]
		if !exists || period.UserID != userID {
			continue
		}
		periodCopy := *period
		result = append(result, &periodCopy)
	}

	sortByStart(result, domain.SortAsc)
	return result, nil
}

// FindFrom implements store.PeriodRepository.
func (s *PeriodStore) FindFrom(ctx context.Context, userID, planID string, start time.Time) ([]*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Period
	for _, period := range s.periods {
		if period.UserID != userID || period.PlanID != planID {
			continue
		}
		if period.PeriodStart.Before(start) {
			continue
		}
		periodCopy := *period
		result = append(result, &periodCopy)
	}

	sortByStart(result, domain.SortAsc)
	return result, nil
}

// FindLatestBefore implements store.PeriodRepository.
func (s *PeriodStore) FindLatestBefore(ctx context.Context, userID, planID string, start time.Time) (*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Period
	for _, period := range s.periods {
		if period.UserID != userID || period.PlanID != planID {
			continue
		}
		if !period.PeriodStart.Before(start) {
			continue
		}
		if latest == nil || period.PeriodStart.After(latest.PeriodStart) {
			latest = period
		}
	}
	if latest == nil {
		return nil, nil
	}

	latestCopy := *latest
	return &latestCopy, nil
}

// FindRange implements store.PeriodRepository.
func (s *PeriodStore) FindRange(ctx context.Context, filter store.PeriodFilter) ([]*domain.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Period
	for _, period := range s.periods {
		if period.UserID != filter.UserID || period.PlanID != filter.PlanID {
			continue
		}
		if filter.StartFrom != nil && period.PeriodStart.Before(*filter.StartFrom) {
			continue
		}
		if filter.EndUntil != nil && period.PeriodEnd.After(*filter.EndUntil) {
			continue
		}
		periodCopy := *period
		result = append(result, &periodCopy)
	}

	sortByStart(result, filter.Order)
	return result, nil
}

// UpdateBalances implements store.PeriodRepository.
func (s *PeriodStore) UpdateBalances(ctx context.Context, period *domain.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.periods[period.ID]
	if !exists {
		return fmt.Errorf("%w: period %s", domain.ErrNotFound, period.ID)
	}

	existing.PeriodBalance = period.PeriodBalance
	existing.PeriodBalancePaidOnly = period.PeriodBalancePaidOnly
	existing.ExpectedAllTimeBalance = period.ExpectedAllTimeBalance
	existing.ExpectedAllTimeBalancePaidOnly = period.ExpectedAllTimeBalancePaidOnly
	return nil
}

// DeleteByUser implements store.PeriodRepository.
func (s *PeriodStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, period := range s.periods {
		if period.UserID == userID {
			delete(s.periods, id)
		}
	}
	return nil
}

func sortByStart(periods []*domain.Period, order domain.SortOrder) {
	sort.Slice(periods, func(i, j int) bool {
		if order == domain.SortDesc {
			return periods[i].PeriodStart.After(periods[j].PeriodStart)
		}
		return periods[i].PeriodStart.Before(periods[j].PeriodStart)
	})
}

// Ensure PeriodStore implements the repository interface.
var _ store.PeriodRepository = (*PeriodStore)(nil)
