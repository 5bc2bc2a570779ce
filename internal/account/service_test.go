package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/weekly-budget/internal/account"
	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store/inmemory"
)

func TestDeleteAccountCascades(t *testing.T) {
	ctx := context.Background()

	transactions := inmemory.NewTransactionStore()
	periods := inmemory.NewPeriodStore()
	plans := inmemory.NewPlanStore()
	categories := inmemory.NewCategoryStore()

	seed := func(userID string) {
		require.NoError(t, plans.Create(ctx, &domain.Plan{ID: userID + "-plan", UserID: userID, Active: true}))
		_, err := periods.Create(ctx, &domain.Period{
			ID: userID + "-period", UserID: userID, PlanID: userID + "-plan",
			PeriodStart: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.NoError(t, transactions.Create(ctx, &domain.Transaction{
			ID: userID + "-tx", UserID: userID, PlanID: userID + "-plan", PeriodID: userID + "-period",
			Type: domain.TransactionExpense,
		}))
		require.NoError(t, categories.CreateMany(ctx, []*domain.Category{
			{ID: userID + "-cat", UserID: userID, Description: "Dining", Active: true},
		}))
	}
	seed("user-1")
	seed("user-2")

	svc := account.NewService(transactions, periods, plans, categories, zerolog.Nop())
	require.NoError(t, svc.DeleteAccount(ctx, "user-1"))

	// Everything of user-1 is gone.
	activePlans, err := plans.FindActiveByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, activePlans)

	_, err = periods.FindFirstByOwner(ctx, "user-1", "user-1-period")
	assert.Error(t, err)

	_, err = transactions.FindFirstByOwner(ctx, "user-1", "user-1-tx", "user-1-period")
	assert.Error(t, err)

	cats, err := categories.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, cats)

	// user-2 is untouched.
	otherPlans, err := plans.FindActiveByUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, otherPlans, 1)
}
