// Package bigquery is the BigQuery-backed implementation of the store
// repositories. Row structs map the budget.* table schemas; the
// ...WithClient functions hold the SQL; the repository types wrap them
// around a shared client.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// NewClient creates the shared BigQuery client for the budget dataset.
func NewClient(ctx context.Context) (*bigquery.Client, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return client, nil
}

// PlanRepository implements store.PlanRepository on BigQuery.
type PlanRepository struct {
	client *bigquery.Client
}

// NewPlanRepository creates a plan repository over the shared client.
func NewPlanRepository(client *bigquery.Client) *PlanRepository {
	return &PlanRepository{client: client}
}

func (r *PlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	return InsertPlanWithClient(ctx, r.client, planRowFromDomain(plan))
}

func (r *PlanRepository) FindByIDAndUser(ctx context.Context, userID, planID string) (*domain.Plan, error) {
	row, err := FindPlanByIDAndUserWithClient(ctx, r.client, userID, planID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: plan %s", domain.ErrNotFound, planID)
	}
	return row.toDomain(), nil
}

func (r *PlanRepository) FindActiveByUser(ctx context.Context, userID string) ([]*domain.Plan, error) {
	rows, err := ListActivePlansByUserWithClient(ctx, r.client, userID)
	if err != nil {
		return nil, err
	}
	plans := make([]*domain.Plan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, row.toDomain())
	}
	return plans, nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	return UpdatePlanWithClient(ctx, r.client, planRowFromDomain(plan))
}

func (r *PlanRepository) UpdateTotals(ctx context.Context, planID string, currentBalance, expectedBalance decimal.Decimal) error {
	return UpdatePlanTotalsWithClient(ctx, r.client, planID, ratFromDecimal(currentBalance), ratFromDecimal(expectedBalance))
}

func (r *PlanRepository) DeleteByUser(ctx context.Context, userID string) error {
	return deleteByUser(ctx, r.client, plansTable, userID)
}

// PeriodRepository implements store.PeriodRepository on BigQuery.
type PeriodRepository struct {
	client *bigquery.Client
}

// NewPeriodRepository creates a period repository over the shared client.
func NewPeriodRepository(client *bigquery.Client) *PeriodRepository {
	return &PeriodRepository{client: client}
}

func (r *PeriodRepository) Create(ctx context.Context, period *domain.Period) (*domain.Period, error) {
	row, err := InsertPeriodWithClient(ctx, r.client, periodRowFromDomain(period))
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PeriodRepository) FindFirstByOwner(ctx context.Context, userID, periodID string) (*domain.Period, error) {
	row, err := FindPeriodByOwnerWithClient(ctx, r.client, userID, periodID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: period %s", domain.ErrNotFound, periodID)
	}
	return row.toDomain(), nil
}

func (r *PeriodRepository) FindByWeek(ctx context.Context, userID, planID string, weekStart time.Time) (*domain.Period, error) {
	row, err := FindPeriodByWeekWithClient(ctx, r.client, userID, planID, civil.DateOf(weekStart.UTC()))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return row.toDomain(), nil
}

func (r *PeriodRepository) FindManyByIDs(ctx context.Context, userID string, periodIDs []string) ([]*domain.Period, error) {
	rows, err := ListPeriodsByIDsWithClient(ctx, r.client, userID, periodIDs)
	if err != nil {
		return nil, err
	}
	return periodsToDomain(rows), nil
}

func (r *PeriodRepository) FindFrom(ctx context.Context, userID, planID string, start time.Time) ([]*domain.Period, error) {
	rows, err := ListPeriodsFromWithClient(ctx, r.client, userID, planID, start)
	if err != nil {
		return nil, err
	}
	return periodsToDomain(rows), nil
}

func (r *PeriodRepository) FindLatestBefore(ctx context.Context, userID, planID string, start time.Time) (*domain.Period, error) {
	row, err := FindLatestPeriodBeforeWithClient(ctx, r.client, userID, planID, start)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return row.toDomain(), nil
}

func (r *PeriodRepository) FindRange(ctx context.Context, filter store.PeriodFilter) ([]*domain.Period, error) {
	rows, err := ListPeriodsRangeWithClient(ctx, r.client, filter.UserID, filter.PlanID, filter.StartFrom, filter.EndUntil, filter.Order == domain.SortDesc)
	if err != nil {
		return nil, err
	}
	return periodsToDomain(rows), nil
}

func (r *PeriodRepository) UpdateBalances(ctx context.Context, period *domain.Period) error {
	return UpdatePeriodBalancesWithClient(ctx, r.client, periodRowFromDomain(period))
}

func (r *PeriodRepository) DeleteByUser(ctx context.Context, userID string) error {
	return deleteByUser(ctx, r.client, periodsTable, userID)
}

func periodsToDomain(rows []*PeriodRow) []*domain.Period {
	periods := make([]*domain.Period, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, row.toDomain())
	}
	return periods
}

// TransactionRepository implements store.TransactionRepository on BigQuery.
type TransactionRepository struct {
	client *bigquery.Client
}

// NewTransactionRepository creates a transaction repository over the shared
// client.
func NewTransactionRepository(client *bigquery.Client) *TransactionRepository {
	return &TransactionRepository{client: client}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	return InsertTransactionsWithClient(ctx, r.client, []*TransactionRow{transactionRowFromDomain(tx)})
}

func (r *TransactionRepository) CreateMany(ctx context.Context, txs []*domain.Transaction) error {
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRowFromDomain(tx))
	}
	return InsertTransactionsWithClient(ctx, r.client, rows)
}

func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	return UpdateTransactionWithClient(ctx, r.client, transactionRowFromDomain(tx))
}

func (r *TransactionRepository) FindFirstByOwner(ctx context.Context, userID, transactionID, periodID string) (*domain.Transaction, error) {
	row, err := FindTransactionByOwnerWithClient(ctx, r.client, userID, transactionID, periodID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, transactionID)
	}
	return row.toDomain(), nil
}

func (r *TransactionRepository) FindByPeriod(ctx context.Context, userID, periodID string) ([]*domain.Transaction, error) {
	rows, err := ListTransactionsByPeriodWithClient(ctx, r.client, userID, periodID)
	if err != nil {
		return nil, err
	}
	return transactionsToDomain(rows), nil
}

func (r *TransactionRepository) FindPendingDueBy(ctx context.Context, userID, planID string, cutoff time.Time) ([]*domain.Transaction, error) {
	rows, err := ListPendingTransactionsDueByWithClient(ctx, r.client, userID, planID, cutoff)
	if err != nil {
		return nil, err
	}
	return transactionsToDomain(rows), nil
}

func (r *TransactionRepository) Delete(ctx context.Context, transactionID string) error {
	return DeleteTransactionWithClient(ctx, r.client, transactionID)
}

func (r *TransactionRepository) DeleteByUser(ctx context.Context, userID string) error {
	return deleteByUser(ctx, r.client, transactionsTable, userID)
}

func transactionsToDomain(rows []*TransactionRow) []*domain.Transaction {
	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, row.toDomain())
	}
	return txs
}

// CategoryRepository implements store.CategoryRepository on BigQuery.
type CategoryRepository struct {
	client *bigquery.Client
}

// NewCategoryRepository creates a category repository over the shared
// client.
func NewCategoryRepository(client *bigquery.Client) *CategoryRepository {
	return &CategoryRepository{client: client}
}

func (r *CategoryRepository) CreateMany(ctx context.Context, categories []*domain.Category) error {
	rows := make([]*CategoryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, categoryRowFromDomain(c))
	}
	return InsertCategoriesWithClient(ctx, r.client, rows)
}

func (r *CategoryRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Category, error) {
	rows, err := ListCategoriesByUserWithClient(ctx, r.client, userID)
	if err != nil {
		return nil, err
	}
	categories := make([]*domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}

func (r *CategoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	return deleteByUser(ctx, r.client, categoriesTable, userID)
}

// Ensure the repositories implement the store interfaces.
var (
	_ store.PlanRepository        = (*PlanRepository)(nil)
	_ store.PeriodRepository      = (*PeriodRepository)(nil)
	_ store.TransactionRepository = (*TransactionRepository)(nil)
	_ store.CategoryRepository    = (*CategoryRepository)(nil)
)
