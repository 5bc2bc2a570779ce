package period_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/period"
	"github.com/dvloznov/weekly-budget/internal/store"
	"github.com/dvloznov/weekly-budget/internal/store/inmemory"
)

const (
	testUser = "user-1"
	testPlan = "plan-1"
)

// totalsRecorder captures UpdateTotals calls. An optional onUpdate hook runs
// inside the call, which lets tests observe store state at write time.
type totalsRecorder struct {
	calls    int
	current  decimal.Decimal
	expected decimal.Decimal
	onUpdate func()
}

func (r *totalsRecorder) UpdateTotals(ctx context.Context, userID, planID string, currentBalance, expectedBalance decimal.Decimal) error {
	r.calls++
	r.current = currentBalance
	r.expected = expectedBalance
	if r.onUpdate != nil {
		r.onUpdate()
	}
	return nil
}

type fixture struct {
	periods      *inmemory.PeriodStore
	transactions *inmemory.TransactionStore
	totals       *totalsRecorder
	engine       *period.Engine
}

func newFixture() *fixture {
	f := &fixture{
		periods:      inmemory.NewPeriodStore(),
		transactions: inmemory.NewTransactionStore(),
		totals:       &totalsRecorder{},
	}
	f.engine = period.NewEngine(f.periods, f.transactions, f.totals, zerolog.Nop())
	return f
}

func (f *fixture) addPeriod(t *testing.T, weekOf time.Time) *domain.Period {
	t.Helper()
	created, err := f.periods.Create(context.Background(), &domain.Period{
		ID:          uuid.New().String(),
		UserID:      testUser,
		PlanID:      testPlan,
		PeriodStart: period.StartOfWeek(weekOf),
		PeriodEnd:   period.EndOfWeek(weekOf),
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) addTransaction(t *testing.T, periodID, amount string, paid bool, date time.Time) {
	t.Helper()
	err := f.transactions.Create(context.Background(), &domain.Transaction{
		ID:       uuid.New().String(),
		UserID:   testUser,
		PlanID:   testPlan,
		PeriodID: periodID,
		Amount:   decimal.RequireFromString(amount),
		Type:     domain.TransactionExpense,
		Date:     date,
		IsPaid:   paid,
	})
	require.NoError(t, err)
}

func (f *fixture) storedPeriod(t *testing.T, periodID string) *domain.Period {
	t.Helper()
	p, err := f.periods.FindFirstByOwner(context.Background(), testUser, periodID)
	require.NoError(t, err)
	return p
}

func TestAggregate(t *testing.T) {
	txs := []*domain.Transaction{
		{Amount: decimal.RequireFromString("1000"), IsPaid: true},
		{Amount: decimal.RequireFromString("-300.50")},
		{Amount: decimal.RequireFromString("-100"), IsPaid: true},
	}

	balance, paidOnly := period.Aggregate(txs)
	assert.True(t, balance.Equal(decimal.RequireFromString("599.50")), "balance = %s", balance)
	assert.True(t, paidOnly.Equal(decimal.RequireFromString("900")), "paidOnly = %s", paidOnly)
}

func TestAggregateEmpty(t *testing.T) {
	balance, paidOnly := period.Aggregate(nil)
	assert.True(t, balance.IsZero())
	assert.True(t, paidOnly.IsZero())
}

func TestRechainThreadsCarry(t *testing.T) {
	periods := []*domain.Period{
		{PeriodBalance: decimal.RequireFromString("100"), PeriodBalancePaidOnly: decimal.RequireFromString("80")},
		{PeriodBalance: decimal.Zero, PeriodBalancePaidOnly: decimal.Zero},
		{PeriodBalance: decimal.RequireFromString("-30"), PeriodBalancePaidOnly: decimal.RequireFromString("-30")},
	}
	carry := period.Carry{
		AllTime:         decimal.RequireFromString("500"),
		AllTimePaidOnly: decimal.RequireFromString("400"),
	}

	final := period.Rechain(carry, periods)

	assert.True(t, periods[0].ExpectedAllTimeBalance.Equal(decimal.RequireFromString("600")))
	assert.True(t, periods[0].ExpectedAllTimeBalancePaidOnly.Equal(decimal.RequireFromString("480")))
	// The empty period passes the carry through untouched.
	assert.True(t, periods[1].ExpectedAllTimeBalance.Equal(decimal.RequireFromString("600")))
	assert.True(t, periods[1].ExpectedAllTimeBalancePaidOnly.Equal(decimal.RequireFromString("480")))
	assert.True(t, periods[2].ExpectedAllTimeBalance.Equal(decimal.RequireFromString("570")))
	assert.True(t, periods[2].ExpectedAllTimeBalancePaidOnly.Equal(decimal.RequireFromString("450")))

	assert.True(t, final.AllTime.Equal(periods[2].ExpectedAllTimeBalance))
	assert.True(t, final.AllTimePaidOnly.Equal(periods[2].ExpectedAllTimeBalancePaidOnly))
}

func TestRecalculateChainsAcrossWeeks(t *testing.T) {
	f := newFixture()
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)
	week3 := week1.AddDate(0, 0, 14)

	p1 := f.addPeriod(t, week1)
	p2 := f.addPeriod(t, week2)
	p3 := f.addPeriod(t, week3)

	f.addTransaction(t, p1.ID, "1000", true, week1)
	f.addTransaction(t, p2.ID, "-200", false, week2)
	f.addTransaction(t, p2.ID, "-100", true, week2.AddDate(0, 0, 1))
	f.addTransaction(t, p3.ID, "-50", true, week3)

	err := f.engine.Recalculate(context.Background(), testUser, testPlan, []string{p1.ID})
	require.NoError(t, err)

	got1 := f.storedPeriod(t, p1.ID)
	assert.True(t, got1.PeriodBalance.Equal(decimal.RequireFromString("1000")))
	assert.True(t, got1.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("1000")))
	assert.True(t, got1.ExpectedAllTimeBalancePaidOnly.Equal(decimal.RequireFromString("1000")))

	got2 := f.storedPeriod(t, p2.ID)
	assert.True(t, got2.PeriodBalance.Equal(decimal.RequireFromString("-300")))
	assert.True(t, got2.PeriodBalancePaidOnly.Equal(decimal.RequireFromString("-100")))
	assert.True(t, got2.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("700")))
	assert.True(t, got2.ExpectedAllTimeBalancePaidOnly.Equal(decimal.RequireFromString("900")))

	got3 := f.storedPeriod(t, p3.ID)
	assert.True(t, got3.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("650")))
	assert.True(t, got3.ExpectedAllTimeBalancePaidOnly.Equal(decimal.RequireFromString("850")))

	assert.Equal(t, 1, f.totals.calls)
	assert.True(t, f.totals.current.Equal(decimal.RequireFromString("850")))
	assert.True(t, f.totals.expected.Equal(decimal.RequireFromString("650")))
}

func TestRecalculateAnchorsOnPrecedingPeriod(t *testing.T) {
	f := newFixture()
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)
	week3 := week1.AddDate(0, 0, 14)

	p1 := f.addPeriod(t, week1)
	p2 := f.addPeriod(t, week2)
	p3 := f.addPeriod(t, week3)

	f.addTransaction(t, p1.ID, "1000", true, week1)
	f.addTransaction(t, p2.ID, "-300", true, week2)
	f.addTransaction(t, p3.ID, "-50", true, week3)

	// Settle the whole chain, then dirty only the middle week.
	require.NoError(t, f.engine.Recalculate(context.Background(), testUser, testPlan, []string{p1.ID}))

	f.addTransaction(t, p2.ID, "-100", true, week2.AddDate(0, 0, 2))
	require.NoError(t, f.engine.Recalculate(context.Background(), testUser, testPlan, []string{p2.ID}))

	// Week 1 is untouched by the sweep; weeks 2 and 3 pick up the change.
	got1 := f.storedPeriod(t, p1.ID)
	assert.True(t, got1.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("1000")))

	got2 := f.storedPeriod(t, p2.ID)
	assert.True(t, got2.PeriodBalance.Equal(decimal.RequireFromString("-400")))
	assert.True(t, got2.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("600")))

	got3 := f.storedPeriod(t, p3.ID)
	assert.True(t, got3.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("550")))

	assert.True(t, f.totals.expected.Equal(decimal.RequireFromString("550")))
}

func TestRecalculateEmptyPeriodPassesCarryThrough(t *testing.T) {
	f := newFixture()
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)

	p1 := f.addPeriod(t, week1)
	p2 := f.addPeriod(t, week2)

	f.addTransaction(t, p1.ID, "250", true, week1)

	err := f.engine.Recalculate(context.Background(), testUser, testPlan, []string{p1.ID})
	require.NoError(t, err)

	got2 := f.storedPeriod(t, p2.ID)
	assert.True(t, got2.PeriodBalance.IsZero())
	assert.True(t, got2.PeriodBalancePaidOnly.IsZero())
	assert.True(t, got2.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("250")))
	assert.True(t, got2.ExpectedAllTimeBalancePaidOnly.Equal(decimal.RequireFromString("250")))
}

func TestRecalculateIsIdempotent(t *testing.T) {
	f := newFixture()
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)

	p1 := f.addPeriod(t, week1)
	p2 := f.addPeriod(t, week2)

	f.addTransaction(t, p1.ID, "1000", true, week1)
	f.addTransaction(t, p2.ID, "-300", false, week2)

	require.NoError(t, f.engine.Recalculate(context.Background(), testUser, testPlan, []string{p1.ID}))
	first2 := f.storedPeriod(t, p2.ID)
	firstExpected := f.totals.expected

	require.NoError(t, f.engine.Recalculate(context.Background(), testUser, testPlan, []string{p1.ID}))
	second2 := f.storedPeriod(t, p2.ID)

	assert.True(t, second2.PeriodBalance.Equal(first2.PeriodBalance))
	assert.True(t, second2.ExpectedAllTimeBalance.Equal(first2.ExpectedAllTimeBalance))
	assert.True(t, second2.ExpectedAllTimeBalancePaidOnly.Equal(first2.ExpectedAllTimeBalancePaidOnly))
	assert.True(t, f.totals.expected.Equal(firstExpected))
	assert.Equal(t, 2, f.totals.calls)
}

func TestRecalculateNoDirtyPeriodsIsNoOp(t *testing.T) {
	f := newFixture()

	err := f.engine.Recalculate(context.Background(), testUser, testPlan, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.totals.calls)
}

func TestRecalculateTotalsWrittenAfterPeriods(t *testing.T) {
	f := newFixture()
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	p1 := f.addPeriod(t, week1)
	f.addTransaction(t, p1.ID, "500", true, week1)

	// At the moment the plan summary is written, the backing period must
	// already hold its final values.
	f.totals.onUpdate = func() {
		got := f.storedPeriod(t, p1.ID)
		assert.True(t, got.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("500")))
	}

	err := f.engine.Recalculate(context.Background(), testUser, testPlan, []string{p1.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.totals.calls)
}

// duplicateWeekRepo wraps a period repository and serves a chain with two
// periods sharing one periodStart.
type duplicateWeekRepo struct {
	store.PeriodRepository
	chain []*domain.Period
}

func (r *duplicateWeekRepo) FindFrom(ctx context.Context, userID, planID string, start time.Time) ([]*domain.Period, error) {
	return r.chain, nil
}

func TestRecalculateRejectsDuplicateWeeks(t *testing.T) {
	f := newFixture()
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	p1 := f.addPeriod(t, week1)

	broken := &duplicateWeekRepo{
		PeriodRepository: f.periods,
		chain: []*domain.Period{
			{ID: p1.ID, UserID: testUser, PlanID: testPlan, PeriodStart: period.StartOfWeek(week1)},
			{ID: "rogue", UserID: testUser, PlanID: testPlan, PeriodStart: period.StartOfWeek(week1)},
		},
	}
	engine := period.NewEngine(broken, f.transactions, f.totals, zerolog.Nop())

	err := engine.Recalculate(context.Background(), testUser, testPlan, []string{p1.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInternalInconsistency))
	assert.Equal(t, 0, f.totals.calls, "totals must not be written on a broken chain")
}
