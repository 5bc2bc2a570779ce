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

// TransactionStore is an in-memory implementation of
// store.TransactionRepository.
type TransactionStore struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
}

// NewTransactionStore creates an empty transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{transactions: make(map[string]*domain.Transaction)}
}

// Create implements store.TransactionRepository.
func (s *TransactionStore) Create(ctx context.Context, tx *domain.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("%w: transaction ID is required", domain.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txCopy := *tx
	s.transactions[tx.ID] = &txCopy
	return nil
}

// CreateMany implements store.TransactionRepository. The batch is inserted
// atomically under the lock.
func (s *TransactionStore) CreateMany(ctx context.Context, txs []*domain.Transaction) error {
	for _, tx := range txs {
		if tx.ID == "" {
			return fmt.Errorf("%w: transaction ID is required", domain.ErrInvalidArgument)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		txCopy := *tx
		s.transactions[tx.ID] = &txCopy
	}
	return nil
}

// Update implements store.TransactionRepository.
func (s *TransactionStore) Update(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.ID]; !exists {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, tx.ID)
	}

	txCopy := *tx
	s.transactions[tx.ID] = &txCopy
	return nil
}

// FindFirstByOwner implements store.TransactionRepository.
func (s *TransactionStore) FindFirstByOwner(ctx context.Context, userID, transactionID, periodID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[transactionID]
	if !exists || tx.UserID != userID || tx.PeriodID != periodID {
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, transactionID)
	}

	txCopy := *tx
	return &txCopy, nil
}

// FindByPeriod implements store.TransactionRepository.
func (s *TransactionStore) FindByPeriod(ctx context.Context, userID, periodID string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID || tx.PeriodID != periodID {
			continue
		}
		txCopy := *tx
		result = append(result, &txCopy)
	}

	sortByDate(result)
	return result, nil
}

// FindPendingDueBy implements store.TransactionRepository.
func (s *TransactionStore) FindPendingDueBy(ctx context.Context, userID, planID string, cutoff time.Time) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID || tx.PlanID != planID || tx.IsPaid {
			continue
		}
		if tx.Date.After(cutoff) {
			continue
		}
		txCopy := *tx
		result = append(result, &txCopy)
	}

	sortByDate(result)
	return result, nil
}

// Delete implements store.TransactionRepository.
func (s *TransactionStore) Delete(ctx context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[transactionID]; !exists {
		return fmt.Errorf("%w: transaction %s", domain.ErrNotFound, transactionID)
	}
	delete(s.transactions, transactionID)
	return nil
}

// DeleteByUser implements store.TransactionRepository.
func (s *TransactionStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, tx := range s.transactions {
		if tx.UserID == userID {
			delete(s.transactions, id)
		}
	}
	return nil
}

func sortByDate(txs []*domain.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].DateCreated.Before(txs[j].DateCreated)
		}
		return txs[i].Date.Before(txs[j].Date)
	})
}

// Ensure TransactionStore implements the repository interface.
var _ store.TransactionRepository = (*TransactionStore)(nil)
