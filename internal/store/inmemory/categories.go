package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// CategoryStore is an in-memory implementation of store.CategoryRepository.
type CategoryStore struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
}

// NewCategoryStore creates an empty category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[string]*domain.Category)}
}

// CreateMany implements store.CategoryRepository.
func (s *CategoryStore) CreateMany(ctx context.Context, categories []*domain.Category) error {
	for _, c := range categories {
		if c.ID == "" {
			return fmt.Errorf("%w: category ID is required", domain.ErrInvalidArgument)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range categories {
		categoryCopy := *c
		s.categories[c.ID] = &categoryCopy
	}
	return nil
}

// FindByUser implements store.CategoryRepository.
func (s *CategoryStore) FindByUser(ctx context.Context, userID string) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Category
	for _, c := range s.categories {
		if c.UserID != userID {
			continue
		}
		categoryCopy := *c
		result = append(result, &categoryCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Description < result[j].Description
	})
	return result, nil
}

// DeleteByUser implements store.CategoryRepository.
func (s *CategoryStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.categories {
		if c.UserID == userID {
			delete(s.categories, id)
		}
	}
	return nil
}

// Ensure CategoryStore implements the repository interface.
var _ store.CategoryRepository = (*CategoryStore)(nil)
