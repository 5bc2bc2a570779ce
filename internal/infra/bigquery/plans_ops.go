package bigquery

import (
	"context"
	"fmt"
	"math/big"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const planColumns = `
	plan_id,
	user_id,
	description,
	currency,
	current_balance,
	expected_balance,
	active,
	is_default,
	date_of_creation
`

// InsertPlanWithClient inserts a plan row into budget.plans.
func InsertPlanWithClient(ctx context.Context, client *bigquery.Client, row *PlanRow) error {
	table := client.DatasetInProject(projectID, datasetID).Table(plansTable)
	if err := table.Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("InsertPlan: inserting row: %w", err)
	}
	return nil
}

// FindPlanByIDAndUserWithClient returns the plan row for (plan_id, user_id)
// or nil when no row matches.
func FindPlanByIDAndUserWithClient(ctx context.Context, client *bigquery.Client, userID, planID string) (*PlanRow, error) {
	q := client.Query(`
		SELECT ` + planColumns + `
		FROM ` + tableRef(plansTable) + `
		WHERE plan_id = @plan_id AND user_id = @user_id
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "plan_id", Value: planID},
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindPlanByIDAndUser: query read: %w", err)
	}

	var r PlanRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindPlanByIDAndUser: iter next: %w", err)
	}
	return &r, nil
}

// ListActivePlansByUserWithClient returns the user's active plans ordered by
// creation date.
func ListActivePlansByUserWithClient(ctx context.Context, client *bigquery.Client, userID string) ([]*PlanRow, error) {
	q := client.Query(`
		SELECT ` + planColumns + `
		FROM ` + tableRef(plansTable) + `
		WHERE user_id = @user_id AND active = TRUE
		ORDER BY date_of_creation
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListActivePlansByUser: query read: %w", err)
	}

	var rows []*PlanRow
	for {
		var r PlanRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListActivePlansByUser: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// UpdatePlanWithClient rewrites a plan's user-settable fields. Balance
// columns are deliberately not part of the statement.
func UpdatePlanWithClient(ctx context.Context, client *bigquery.Client, row *PlanRow) error {
	q := client.Query(`
		UPDATE ` + tableRef(plansTable) + `
		SET description = @description,
		    currency = @currency,
		    active = @active,
		    is_default = @is_default
		WHERE plan_id = @plan_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "description", Value: row.Description},
		{Name: "currency", Value: row.Currency},
		{Name: "active", Value: row.Active},
		{Name: "is_default", Value: row.IsDefault},
		{Name: "plan_id", Value: row.PlanID},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdatePlan: %w", err)
	}
	return nil
}

// UpdatePlanTotalsWithClient writes the cached summary balances.
func UpdatePlanTotalsWithClient(ctx context.Context, client *bigquery.Client, planID string, currentBalance, expectedBalance *big.Rat) error {
	q := client.Query(`
		UPDATE ` + tableRef(plansTable) + `
		SET current_balance = @current_balance,
		    expected_balance = @expected_balance
		WHERE plan_id = @plan_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "current_balance", Value: currentBalance},
		{Name: "expected_balance", Value: expectedBalance},
		{Name: "plan_id", Value: planID},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdatePlanTotals: %w", err)
	}
	return nil
}
