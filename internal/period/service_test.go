package period_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/period"
	"github.com/dvloznov/weekly-budget/internal/store/inmemory"
)

type readFixture struct {
	*fixture
	plans *inmemory.PlanStore
	svc   *period.Service
}

func newReadFixture(t *testing.T) *readFixture {
	t.Helper()
	f := &readFixture{
		fixture: newFixture(),
		plans:   inmemory.NewPlanStore(),
	}
	require.NoError(t, f.plans.Create(context.Background(), &domain.Plan{
		ID:     testPlan,
		UserID: testUser,
		Active: true,
	}))
	f.svc = period.NewService(f.periods, f.transactions, f.plans, zerolog.Nop())
	return f
}

func TestFindAllByUserDefaultsToNewestFirst(t *testing.T) {
	f := newReadFixture(t)
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	p1 := f.addPeriod(t, week1)
	p2 := f.addPeriod(t, week1.AddDate(0, 0, 7))

	got, err := f.svc.FindAllByUser(context.Background(), testUser, testPlan, period.Filters{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, p2.ID, got[0].ID)
	assert.Equal(t, p1.ID, got[1].ID)
}

func TestFindAllByUserWidensBoundsToWholeWeeks(t *testing.T) {
	f := newReadFixture(t)
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)

	f.addPeriod(t, week1)
	p2 := f.addPeriod(t, week2)

	// A midweek start date still matches the period containing it.
	got, err := f.svc.FindAllByUser(context.Background(), testUser, testPlan, period.Filters{
		StartDate: week2.AddDate(0, 0, 3),
		EndDate:   week2.AddDate(0, 0, 3),
		SortOrder: domain.SortAsc,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p2.ID, got[0].ID)
}

func TestFindAllByUserAttachesTransactions(t *testing.T) {
	f := newReadFixture(t)
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	p1 := f.addPeriod(t, week1)
	f.addTransaction(t, p1.ID, "-20", true, week1.AddDate(0, 0, 1))
	f.addTransaction(t, p1.ID, "-10", false, week1)

	got, err := f.svc.FindAllByUser(context.Background(), testUser, testPlan, period.Filters{
		IncludeTransactions: true,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Transactions, 2)
	// Attached transactions come back in date order.
	assert.True(t, got[0].Transactions[0].Amount.Equal(decimal.RequireFromString("-10")))
	assert.True(t, got[0].Transactions[1].Amount.Equal(decimal.RequireFromString("-20")))

	plain, err := f.svc.FindAllByUser(context.Background(), testUser, testPlan, period.Filters{})
	require.NoError(t, err)
	assert.Empty(t, plain[0].Transactions)
}

func TestFindAllByUserRejectsForeignPlan(t *testing.T) {
	f := newReadFixture(t)

	_, err := f.svc.FindAllByUser(context.Background(), "user-2", testPlan, period.Filters{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestFindTransactionsChecksPeriodOwnership(t *testing.T) {
	f := newReadFixture(t)
	week1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	p1 := f.addPeriod(t, week1)
	f.addTransaction(t, p1.ID, "-20", true, week1)

	txs, err := f.svc.FindTransactions(context.Background(), testUser, p1.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	_, err = f.svc.FindTransactions(context.Background(), "user-2", p1.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
