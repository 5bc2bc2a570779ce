package period

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// Filters narrows a period listing. Zero dates mean unbounded; bounds are
// widened to whole ISO weeks before querying.
type Filters struct {
	StartDate           time.Time
	EndDate             time.Time
	SortOrder           domain.SortOrder
	IncludeTransactions bool
}

// Service is the read side of periods.
type Service struct {
	periods      store.PeriodRepository
	transactions store.TransactionRepository
	plans        store.PlanRepository
	log          zerolog.Logger
}

// NewService creates a new period read service.
func NewService(periods store.PeriodRepository, transactions store.TransactionRepository, plans store.PlanRepository, log zerolog.Logger) *Service {
	return &Service{
		periods:      periods,
		transactions: transactions,
		plans:        plans,
		log:          log,
	}
}

// FindAllByUser lists the plan's periods, optionally bounded by a date
// window and with each period's transactions attached in date order.
func (s *Service) FindAllByUser(ctx context.Context, userID, planID string, filters Filters) ([]*domain.Period, error) {
	if _, err := s.plans.FindByIDAndUser(ctx, userID, planID); err != nil {
		return nil, fmt.Errorf("find periods: %w", err)
	}

	order := filters.SortOrder
	if order == "" {
		order = domain.SortDesc
	}

	filter := store.PeriodFilter{
		UserID: userID,
		PlanID: planID,
		Order:  order,
	}
	if !filters.StartDate.IsZero() {
		from := StartOfWeek(filters.StartDate)
		filter.StartFrom = &from
	}
	if !filters.EndDate.IsZero() {
		until := EndOfWeek(filters.EndDate)
		filter.EndUntil = &until
	}

	periods, err := s.periods.FindRange(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find periods: %w", err)
	}

	if filters.IncludeTransactions {
		for _, p := range periods {
			txs, err := s.transactions.FindByPeriod(ctx, userID, p.ID)
			if err != nil {
				return nil, fmt.Errorf("find periods: transactions for %s: %w", p.ID, err)
			}
			p.Transactions = make([]domain.Transaction, 0, len(txs))
			for _, tx := range txs {
				p.Transactions = append(p.Transactions, *tx)
			}
		}
	}

	return periods, nil
}

// FindTransactions lists the transactions of one period, date ascending.
func (s *Service) FindTransactions(ctx context.Context, userID, periodID string) ([]*domain.Transaction, error) {
	if _, err := s.periods.FindFirstByOwner(ctx, userID, periodID); err != nil {
		return nil, fmt.Errorf("find period transactions: %w", err)
	}
	return s.transactions.FindByPeriod(ctx, userID, periodID)
}
