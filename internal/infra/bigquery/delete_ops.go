package bigquery

import (
	"context"

	"cloud.google.com/go/bigquery"
)

// deleteByUser removes every row the user owns in one table. The account
// cascade invokes it per repository, transactions first.
func deleteByUser(ctx context.Context, client *bigquery.Client, table, userID string) error {
	q := client.Query(`
		DELETE FROM ` + tableRef(table) + `
		WHERE user_id = @user_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}
	return runDML(ctx, q)
}
