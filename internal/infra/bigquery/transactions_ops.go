package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const transactionColumns = `
	transaction_id,
	user_id,
	plan_id,
	period_id,
	category_id,
	description,
	amount,
	type,
	transaction_date,
	is_paid,
	created_ts
`

// InsertTransactionsWithClient inserts a batch of transaction rows into
// budget.transactions.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	table := client.DatasetInProject(projectID, datasetID).Table(transactionsTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// UpdateTransactionWithClient rewrites a transaction row in place.
func UpdateTransactionWithClient(ctx context.Context, client *bigquery.Client, row *TransactionRow) error {
	q := client.Query(`
		UPDATE ` + tableRef(transactionsTable) + `
		SET plan_id = @plan_id,
		    period_id = @period_id,
		    category_id = @category_id,
		    description = @description,
		    amount = @amount,
		    type = @type,
		    transaction_date = @transaction_date,
		    is_paid = @is_paid
		WHERE transaction_id = @transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "plan_id", Value: row.PlanID},
		{Name: "period_id", Value: row.PeriodID},
		{Name: "category_id", Value: row.CategoryID},
		{Name: "description", Value: row.Description},
		{Name: "amount", Value: row.Amount},
		{Name: "type", Value: row.Type},
		{Name: "transaction_date", Value: row.TransactionDate},
		{Name: "is_paid", Value: row.IsPaid},
		{Name: "transaction_id", Value: row.TransactionID},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	return nil
}

// FindTransactionByOwnerWithClient returns the row matching
// (transaction_id, user_id, period_id), or nil.
func FindTransactionByOwnerWithClient(ctx context.Context, client *bigquery.Client, userID, transactionID, periodID string) (*TransactionRow, error) {
	q := client.Query(`
		SELECT ` + transactionColumns + `
		FROM ` + tableRef(transactionsTable) + `
		WHERE transaction_id = @transaction_id
		  AND user_id = @user_id
		  AND period_id = @period_id
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: transactionID},
		{Name: "user_id", Value: userID},
		{Name: "period_id", Value: periodID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindTransactionByOwner: query read: %w", err)
	}

	var r TransactionRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindTransactionByOwner: iter next: %w", err)
	}
	return &r, nil
}

// ListTransactionsByPeriodWithClient returns the user's transactions in the
// period, ordered by date then insertion time.
func ListTransactionsByPeriodWithClient(ctx context.Context, client *bigquery.Client, userID, periodID string) ([]*TransactionRow, error) {
	q := client.Query(`
		SELECT ` + transactionColumns + `
		FROM ` + tableRef(transactionsTable) + `
		WHERE user_id = @user_id AND period_id = @period_id
		ORDER BY transaction_date, created_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "period_id", Value: periodID},
	}
	return readAllTransactions(ctx, q, "ListTransactionsByPeriod")
}

// ListPendingTransactionsDueByWithClient returns unpaid transactions of the
// plan dated on or before cutoff, ordered by date.
func ListPendingTransactionsDueByWithClient(ctx context.Context, client *bigquery.Client, userID, planID string, cutoff time.Time) ([]*TransactionRow, error) {
	q := client.Query(`
		SELECT ` + transactionColumns + `
		FROM ` + tableRef(transactionsTable) + `
		WHERE user_id = @user_id
		  AND plan_id = @plan_id
		  AND is_paid = FALSE
		  AND transaction_date <= @cutoff
		ORDER BY transaction_date, created_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "plan_id", Value: planID},
		{Name: "cutoff", Value: cutoff},
	}
	return readAllTransactions(ctx, q, "ListPendingTransactionsDueBy")
}

// DeleteTransactionWithClient deletes one transaction row.
func DeleteTransactionWithClient(ctx context.Context, client *bigquery.Client, transactionID string) error {
	q := client.Query(`
		DELETE FROM ` + tableRef(transactionsTable) + `
		WHERE transaction_id = @transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: transactionID},
	}

	if err := runDML(ctx, q); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return nil
}

func readAllTransactions(ctx context.Context, q *bigquery.Query, op string) ([]*TransactionRow, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
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
