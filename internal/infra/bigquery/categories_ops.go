package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertCategoriesWithClient inserts a batch of category rows into
// budget.categories.
func InsertCategoriesWithClient(ctx context.Context, client *bigquery.Client, rows []*CategoryRow) error {
	if len(rows) == 0 {
		return nil
	}

	table := client.DatasetInProject(projectID, datasetID).Table(categoriesTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertCategories: inserting rows: %w", err)
	}
	return nil
}

// ListCategoriesByUserWithClient returns the user's categories ordered by
// description.
func ListCategoriesByUserWithClient(ctx context.Context, client *bigquery.Client, userID string) ([]*CategoryRow, error) {
	q := client.Query(`
		SELECT
		  category_id,
		  user_id,
		  description,
		  icon,
		  color,
		  type,
		  is_active
		FROM ` + tableRef(categoriesTable) + `
		WHERE user_id = @user_id
		ORDER BY description
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategoriesByUser: query read: %w", err)
	}

	var rows []*CategoryRow
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategoriesByUser: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
