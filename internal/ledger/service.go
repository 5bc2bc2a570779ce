// Package ledger holds the transaction mutation coordinator: every write to
// the raw ledger goes through here, followed by a balance recalculation for
// the touched periods.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/period"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// Clock supplies the current time; injected so tests control dateCreated
// stamping and due-soon cutoffs.
type Clock func() time.Time

// Service coordinates ledger mutations. Each mutation runs strictly in
// order: validate ownership, resolve the period, persist the transaction,
// recalculate balances. The resolve-to-recalculate span is serialized per
// (user, plan) key; mutations against different plans or users proceed in
// parallel.
type Service struct {
	transactions store.TransactionRepository
	plans        store.PlanRepository
	resolver     *period.Resolver
	engine       *period.Engine
	keys         *keyedMutex
	now          Clock
	log          zerolog.Logger
}

// NewService creates a new ledger service. now may be nil, in which case
// time.Now is used.
func NewService(
	transactions store.TransactionRepository,
	plans store.PlanRepository,
	resolver *period.Resolver,
	engine *period.Engine,
	now Clock,
	log zerolog.Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		transactions: transactions,
		plans:        plans,
		resolver:     resolver,
		engine:       engine,
		keys:         newKeyedMutex(),
		now:          now,
		log:          log,
	}
}

// CreateInput carries the fields of a new transaction. Amount may arrive
// with either sign; it is normalized from Type at write time.
type CreateInput struct {
	PlanID      string
	CategoryID  string
	Description string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Date        time.Time
	IsPaid      bool
}

// UpdateInput carries the new field values for an existing transaction.
// PeriodID is the transaction's currently recorded period; when Date moves
// to another week the transaction is re-homed and both periods recalculated.
type UpdateInput struct {
	PeriodID    string
	PlanID      string
	CategoryID  string
	Description string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Date        time.Time
	IsPaid      bool
}

func validateInput(txType domain.TransactionType, date time.Time) error {
	if !txType.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidArgument, txType)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: transaction date is required", domain.ErrInvalidArgument)
	}
	return nil
}

// Create validates, persists and accounts for a single new transaction.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) error {
	if err := validateInput(in.Type, in.Date); err != nil {
		return err
	}
	if _, err := s.plans.FindByIDAndUser(ctx, userID, in.PlanID); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	unlock := s.keys.Lock(planKey(userID, in.PlanID))
	defer unlock()

	periodID, err := s.resolver.Resolve(ctx, userID, in.PlanID, in.Date)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	tx := &domain.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		PlanID:      in.PlanID,
		PeriodID:    periodID,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		Amount:      domain.NormalizedAmount(in.Type, in.Amount),
		Type:        in.Type,
		Date:        in.Date.UTC(),
		IsPaid:      in.IsPaid,
		DateCreated: s.now().UTC(),
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return s.engine.Recalculate(ctx, userID, in.PlanID, []string{periodID})
}

// CreateMany bulk-imports transactions. The validate-and-resolve phase runs
// to completion before any ledger write, so a bad record aborts the whole
// batch without a partial commit. Recalculation then runs once per touched
// plan over the union of touched periods.
func (s *Service) CreateMany(ctx context.Context, userID string, inputs []CreateInput) error {
	if len(inputs) == 0 {
		return nil
	}

	planIDs := make([]string, 0, len(inputs))
	seen := make(map[string]bool)
	for _, in := range inputs {
		if err := validateInput(in.Type, in.Date); err != nil {
			return err
		}
		if !seen[in.PlanID] {
			seen[in.PlanID] = true
			planIDs = append(planIDs, in.PlanID)
		}
	}
	for _, planID := range planIDs {
		if _, err := s.plans.FindByIDAndUser(ctx, userID, planID); err != nil {
			return fmt.Errorf("bulk create: %w", err)
		}
	}

	// Plans are locked in a fixed order so two concurrent imports touching
	// the same plans cannot deadlock.
	sort.Strings(planIDs)
	for _, planID := range planIDs {
		unlock := s.keys.Lock(planKey(userID, planID))
		defer unlock()
	}

	now := s.now().UTC()
	txs := make([]*domain.Transaction, 0, len(inputs))
	dirtyByPlan := make(map[string][]string)
	dirtySeen := make(map[string]bool)
	for _, in := range inputs {
		periodID, err := s.resolver.Resolve(ctx, userID, in.PlanID, in.Date)
		if err != nil {
			return fmt.Errorf("bulk create: %w", err)
		}
		txs = append(txs, &domain.Transaction{
			ID:          uuid.New().String(),
			UserID:      userID,
			PlanID:      in.PlanID,
			PeriodID:    periodID,
			CategoryID:  in.CategoryID,
			Description: in.Description,
			Amount:      domain.NormalizedAmount(in.Type, in.Amount),
			Type:        in.Type,
			Date:        in.Date.UTC(),
			IsPaid:      in.IsPaid,
			DateCreated: now,
		})
		if !dirtySeen[planKey(in.PlanID, periodID)] {
			dirtySeen[planKey(in.PlanID, periodID)] = true
			dirtyByPlan[in.PlanID] = append(dirtyByPlan[in.PlanID], periodID)
		}
	}

	if err := s.transactions.CreateMany(ctx, txs); err != nil {
		return fmt.Errorf("bulk create: %w", err)
	}

	for _, planID := range planIDs {
		if err := s.engine.Recalculate(ctx, userID, planID, dirtyByPlan[planID]); err != nil {
			return err
		}
	}

	s.log.Info().
		Int("transactions", len(txs)).
		Int("plans", len(planIDs)).
		Msg("Bulk import accounted")

	return nil
}

// Update rewrites a transaction's fields, re-homing it when the date moved
// to another week or the plan changed. Both the old and the new period are
// treated as dirty, each recalculated against the plan that owns it.
func (s *Service) Update(ctx context.Context, userID, transactionID string, in UpdateInput) error {
	if err := validateInput(in.Type, in.Date); err != nil {
		return err
	}

	var existing *domain.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.plans.FindByIDAndUser(gctx, userID, in.PlanID)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.transactions.FindFirstByOwner(gctx, userID, transactionID, in.PeriodID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	// A plan change involves two chains, so both plan keys are locked, in
	// a fixed order to avoid deadlocking against a concurrent move the
	// other way.
	oldPlanID := existing.PlanID
	lockKeys := []string{planKey(userID, in.PlanID)}
	if oldPlanID != in.PlanID {
		lockKeys = append(lockKeys, planKey(userID, oldPlanID))
		sort.Strings(lockKeys)
	}
	for _, key := range lockKeys {
		unlock := s.keys.Lock(key)
		defer unlock()
	}

	newPeriodID, err := s.resolver.Resolve(ctx, userID, in.PlanID, in.Date)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	updated := &domain.Transaction{
		ID:          transactionID,
		UserID:      userID,
		PlanID:      in.PlanID,
		PeriodID:    newPeriodID,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		Amount:      domain.NormalizedAmount(in.Type, in.Amount),
		Type:        in.Type,
		Date:        in.Date.UTC(),
		IsPaid:      in.IsPaid,
		DateCreated: existing.DateCreated,
	}
	if err := s.transactions.Update(ctx, updated); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if oldPlanID != in.PlanID {
		// The vacated period still belongs to the old plan; its chain and
		// summary must be re-accounted there before the receiving plan's.
		if err := s.engine.Recalculate(ctx, userID, oldPlanID, []string{in.PeriodID}); err != nil {
			return err
		}
		return s.engine.Recalculate(ctx, userID, in.PlanID, []string{newPeriodID})
	}

	dirty := []string{in.PeriodID}
	if newPeriodID != in.PeriodID {
		dirty = append(dirty, newPeriodID)
	}
	return s.engine.Recalculate(ctx, userID, in.PlanID, dirty)
}

// Pay marks a transaction as settled. No other field changes.
func (s *Service) Pay(ctx context.Context, userID, periodID, transactionID string) error {
	tx, err := s.transactions.FindFirstByOwner(ctx, userID, transactionID, periodID)
	if err != nil {
		return fmt.Errorf("pay transaction: %w", err)
	}

	unlock := s.keys.Lock(planKey(userID, tx.PlanID))
	defer unlock()

	tx.IsPaid = true
	if err := s.transactions.Update(ctx, tx); err != nil {
		return fmt.Errorf("pay transaction: %w", err)
	}

	return s.engine.Recalculate(ctx, userID, tx.PlanID, []string{periodID})
}

// Remove deletes a transaction and re-accounts its period.
func (s *Service) Remove(ctx context.Context, userID, periodID, transactionID string) error {
	tx, err := s.transactions.FindFirstByOwner(ctx, userID, transactionID, periodID)
	if err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}

	unlock := s.keys.Lock(planKey(userID, tx.PlanID))
	defer unlock()

	if err := s.transactions.Delete(ctx, transactionID); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}

	return s.engine.Recalculate(ctx, userID, tx.PlanID, []string{periodID})
}

// FindPendingDueSoon lists the plan's unpaid transactions due within seven
// days of now, ordered by date.
func (s *Service) FindPendingDueSoon(ctx context.Context, userID, planID string) ([]*domain.Transaction, error) {
	if _, err := s.plans.FindByIDAndUser(ctx, userID, planID); err != nil {
		return nil, fmt.Errorf("pending transactions: %w", err)
	}
	cutoff := s.now().UTC().AddDate(0, 0, 7)
	return s.transactions.FindPendingDueBy(ctx, userID, planID, cutoff)
}
