package period

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// Carry is the running balance pair propagated along the period chain.
type Carry struct {
	AllTime         decimal.Decimal
	AllTimePaidOnly decimal.Decimal
}

// ZeroCarry is the starting carry when a plan has no anchor period.
func ZeroCarry() Carry {
	return Carry{AllTime: decimal.Zero, AllTimePaidOnly: decimal.Zero}
}

// Aggregate returns a period's own balance and paid-only balance as pure
// sums over its transaction set. An empty set yields (0, 0), which occurs
// transiently right after a period's last transaction is removed.
func Aggregate(txs []*domain.Transaction) (balance, paidOnly decimal.Decimal) {
	balance = decimal.Zero
	paidOnly = decimal.Zero
	for _, tx := range txs {
		balance = balance.Add(tx.Amount)
		if tx.IsPaid {
			paidOnly = paidOnly.Add(tx.Amount)
		}
	}
	return balance, paidOnly
}

// Rechain walks periods (ordered by periodStart ascending, own balances
// already recomputed) and rewrites each period's all-time pair as the carry
// plus the period's own pair, threading the carry forward. It returns the
// final carry, which equals the newest period's all-time pair.
func Rechain(carry Carry, periods []*domain.Period) Carry {
	for _, p := range periods {
		p.ExpectedAllTimeBalance = carry.AllTime.Add(p.PeriodBalance)
		p.ExpectedAllTimeBalancePaidOnly = carry.AllTimePaidOnly.Add(p.PeriodBalancePaidOnly)
		carry = Carry{
			AllTime:         p.ExpectedAllTimeBalance,
			AllTimePaidOnly: p.ExpectedAllTimeBalancePaidOnly,
		}
	}
	return carry
}

// PlanTotalsWriter is the narrow capability for writing a plan's cached
// summary balances. It is distinct from general plan CRUD so that only the
// engine's totals sink can touch those fields.
type PlanTotalsWriter interface {
	UpdateTotals(ctx context.Context, userID, planID string, currentBalance, expectedBalance decimal.Decimal) error
}

// Engine keeps period-level aggregates and plan-level totals consistent
// with the stored ledger. Recalculate derives everything from current
// stored state, never from deltas, so re-running it on the same dirty set
// always converges to the same result.
type Engine struct {
	periods      store.PeriodRepository
	transactions store.TransactionRepository
	totals       PlanTotalsWriter
	log          zerolog.Logger
}

// NewEngine creates a new balance engine.
func NewEngine(periods store.PeriodRepository, transactions store.TransactionRepository, totals PlanTotalsWriter, log zerolog.Logger) *Engine {
	return &Engine{
		periods:      periods,
		transactions: transactions,
		totals:       totals,
		log:          log,
	}
}

// Recalculate recomputes balances for the given dirty periods and every
// period after the earliest of them:
//
//  1. the dirty period with the minimum periodStart is the sweep start,
//  2. the most recent period strictly before it supplies the starting
//     carry (zero when the plan has no earlier period),
//  3. every period from the sweep start onward gets its own balance
//     recomputed from stored transactions and its all-time pair re-chained,
//  4. all walked periods are persisted, then the newest walked period's
//     all-time pair is written to the plan's summary fields.
//
// Callers must hold the (user, plan) mutation lock: the anchor read and the
// period writes form a read-modify-write cycle that must not interleave
// with another recalculation for the same plan.
func (e *Engine) Recalculate(ctx context.Context, userID, planID string, dirtyPeriodIDs []string) error {
	if len(dirtyPeriodIDs) == 0 {
		return nil
	}

	dirty, err := e.periods.FindManyByIDs(ctx, userID, dirtyPeriodIDs)
	if err != nil {
		return fmt.Errorf("recalculate: load dirty periods: %w", err)
	}
	if len(dirty) == 0 {
		return nil
	}
	earliest := dirty[0]

	carry := ZeroCarry()
	anchor, err := e.periods.FindLatestBefore(ctx, userID, planID, earliest.PeriodStart)
	if err != nil {
		return fmt.Errorf("recalculate: load anchor: %w", err)
	}
	if anchor != nil {
		carry = Carry{
			AllTime:         anchor.ExpectedAllTimeBalance,
			AllTimePaidOnly: anchor.ExpectedAllTimeBalancePaidOnly,
		}
	}

	chain, err := e.periods.FindFrom(ctx, userID, planID, earliest.PeriodStart)
	if err != nil {
		return fmt.Errorf("recalculate: load period chain: %w", err)
	}
	if len(chain) == 0 {
		return nil
	}

	for i := 1; i < len(chain); i++ {
		if chain[i].PeriodStart.Equal(chain[i-1].PeriodStart) {
			return fmt.Errorf("%w: plan %s has two periods starting %s",
				domain.ErrInternalInconsistency, planID, chain[i].PeriodStart.Format("2006-01-02"))
		}
	}

	// Any period in the sweep may itself be dirty, so own balances are
	// recomputed for all of them before chaining.
	for _, p := range chain {
		txs, err := e.transactions.FindByPeriod(ctx, userID, p.ID)
		if err != nil {
			return fmt.Errorf("recalculate: load transactions for period %s: %w", p.ID, err)
		}
		p.PeriodBalance, p.PeriodBalancePaidOnly = Aggregate(txs)
	}

	final := Rechain(carry, chain)

	for _, p := range chain {
		if err := e.periods.UpdateBalances(ctx, p); err != nil {
			return fmt.Errorf("recalculate: persist period %s: %w", p.ID, err)
		}
	}

	// Plan totals go last so a concurrent reader never sees a plan summary
	// ahead of its backing periods.
	if err := e.totals.UpdateTotals(ctx, userID, planID, final.AllTimePaidOnly, final.AllTime); err != nil {
		return fmt.Errorf("recalculate: update plan totals: %w", err)
	}

	e.log.Debug().
		Str("plan_id", planID).
		Int("periods_walked", len(chain)).
		Str("expected_balance", final.AllTime.String()).
		Str("current_balance", final.AllTimePaidOnly.String()).
		Msg("Recalculated balance chain")

	return nil
}
