package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

const periodColumns = `
	period_id,
	user_id,
	plan_id,
	week,
	period_start,
	period_end,
	period_balance,
	period_balance_paid_only,
	expected_all_time_balance,
	expected_all_time_balance_paid_only
`

// InsertPeriodWithClient inserts a period row via MERGE keyed on
// (user_id, plan_id, week) so a concurrent insert for the same week cannot
// produce a duplicate bucket, and returns the row that ends up stored.
func InsertPeriodWithClient(ctx context.Context, client *bigquery.Client, row *PeriodRow) (*PeriodRow, error) {
	q := client.Query(`
		MERGE ` + tableRef(periodsTable) + ` t
		USING (SELECT @user_id AS user_id, @plan_id AS plan_id, @week AS week) s
		ON t.user_id = s.user_id AND t.plan_id = s.plan_id AND t.week = s.week
		WHEN NOT MATCHED THEN
		  INSERT (` + periodColumns + `)
		  VALUES (@period_id, @user_id, @plan_id, @week, @period_start, @period_end, 0, 0, 0, 0)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "period_id", Value: row.PeriodID},
		{Name: "user_id", Value: row.UserID},
		{Name: "plan_id", Value: row.PlanID},
		{Name: "week", Value: row.Week},
		{Name: "period_start", Value: row.PeriodStart},
		{Name: "period_end", Value: row.PeriodEnd},
	}

	if err := runDML(ctx, q); err != nil {
		return nil, fmt.Errorf("InsertPeriod: %w", err)
	}

	stored, err := FindPeriodByWeekWithClient(ctx, client, row.UserID, row.PlanID, row.Week)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("InsertPeriod: merged row not found")
	}
	return stored, nil
}

// FindPeriodByOwnerWithClient returns the user's period row by ID, or nil.
func FindPeriodByOwnerWithClient(ctx context.Context, client *bigquery.Client, userID, periodID string) (*PeriodRow, error) {
	q := client.Query(`
		SELECT ` + periodColumns + `
		FROM ` + tableRef(periodsTable) + `
		WHERE period_id = @period_id AND user_id = @user_id
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "period_id", Value: periodID},
		{Name: "user_id", Value: userID},
	}
	return readOnePeriod(ctx, q, "FindPeriodByOwner")
}

// FindPeriodByWeekWithClient returns the period row for the given ISO week,
// or nil when the week has no period.
func FindPeriodByWeekWithClient(ctx context.Context, client *bigquery.Client, userID, planID string, week civil.Date) (*PeriodRow, error) {
	q := client.Query(`
		SELECT ` + periodColumns + `
		FROM ` + tableRef(periodsTable) + `
		WHERE user_id = @user_id AND plan_id = @plan_id AND week = @week
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "plan_id", Value: planID},
		{Name: "week", Value: week},
	}
	return readOnePeriod(ctx, q, "FindPeriodByWeek")
}

// ListPeriodsByIDsWithClient returns the user's periods with the given IDs,
// ordered by period_start ascending.
func ListPeriodsByIDsWithClient(ctx context.Context, client *bigquery.Client, userID string, periodIDs []string) ([]*PeriodRow, error) {
	q := client.Query(`
		SELECT ` + periodColumns + `
		FROM ` + tableRef(periodsTable) + `
		WHERE user_id = @user_id AND period_id IN UNNEST(@period_ids)
		ORDER BY period_start
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "period_ids", Value: periodIDs},
	}
	return readAllPeriods(ctx, q, "ListPeriodsByIDs")
}

// ListPeriodsFromWithClient returns the plan's periods with
// period_start >= start, ordered ascending.
func ListPeriodsFromWithClient(ctx context.Context, client *bigquery.Client, userID, planID string, start time.Time) ([]*PeriodRow, error) {
	q := client.Query(`
		SELECT ` + periodColumns + `
		FROM ` + tableRef(periodsTable) + `
		WHERE user_id = @user_id AND plan_id = @plan_id AND period_start >= @start
		ORDER BY period_start
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "plan_id", Value: planID},
		{Name: "start", Value: start},
	}
	return readAllPeriods(ctx, q, "ListPeriodsFrom")
}

// FindLatestPeriodBeforeWithClient returns the most recent period strictly
// before start, or nil.
func FindLatestPeriodBeforeWithClient(ctx context.Context, client *bigquery.Client, userID, planID string, start time.Time) (*PeriodRow, error) {
	q := client.Query(`
		SELECT ` + periodColumns + `
		FROM ` + tableRef(periodsTable) + `
		WHERE user_id = @user_id AND plan_id = @plan_id AND period_start < @start
		ORDER BY period_start DESC
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "plan_id", Value: planID},
		{Name: "start", Value: start},
	}
	return readOnePeriod(ctx, q, "FindLatestPeriodBefore")
}

// ListPeriodsRangeWithClient returns the plan's periods inside the given
// window, ordered by period_start.
func ListPeriodsRangeWithClient(ctx context.Context, client *bigquery.Client, userID, planID string, startFrom, endUntil *time.Time, descending bool) ([]*PeriodRow, error) {
	order := "ORDER BY period_start"
	if descending {
		order = "ORDER BY period_start DESC"
	}

	sql := `
		SELECT ` + periodColumns + `
		FROM ` + tableRef(periodsTable) + `
		WHERE user_id = @user_id AND plan_id = @plan_id
	`
	params := []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "plan_id", Value: planID},
	}
	if startFrom != nil {
		sql += " AND period_start >= @start_from"
		params = append(params, bigquery.QueryParameter{Name: "start_from", Value: *startFrom})
	}
	if endUntil != nil {
		sql += " AND period_end <= @end_until"
		params = append(params, bigquery.QueryParameter{Name: "end_until", Value: *endUntil})
	}

	q := client.Query(sql + " " + order)
	q.Parameters = params
	return readAllPeriods(ctx, q, "ListPeriodsRange")
}

// UpdatePeriodBalancesWithClient persists the four balance columns.
func UpdatePeriodBalancesWithClient(ctx context.Context, client *bigquery.Client, row *PeriodRow) error {
	q := client.Query(`
		UPDATE ` + tableRef(periodsTable) + `
		SET period_balance = @period_balance,
		    period_balance_paid_only = @period_balance_paid_only,
		    expected_all_time_balance = @expected_all_time_balance,
		    expected_all_time_balance_paid_only = @expected_all_time_balance_paid_only
		WHERE period_id = @period_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "period_balance", Value: row.PeriodBalance},
		{Name: "period_balance_paid_only", Value: row.PeriodBalancePaidOnly},
		{Name: "expected_all_time_balance", Value: row.ExpectedAllTimeBalance},
		{Name: "expected_all_time_balance_paid_only", Value: row.ExpectedAllTimeBalancePaidOnly},
		{Name: "period_id", Value: row.PeriodID},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdatePeriodBalances: %w", err)
	}
	return nil
}

func readOnePeriod(ctx context.Context, q *bigquery.Query, op string) (*PeriodRow, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var r PeriodRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: iter next: %w", op, err)
	}
	return &r, nil
}

func readAllPeriods(ctx context.Context, q *bigquery.Query, op string) ([]*PeriodRow, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var rows []*PeriodRow
	for {
		var r PeriodRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iter next: %w", op, err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
