package bigquery

import (
	"context"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/weekly-budget/internal/domain"
)

const (
	projectID = "weekly-budget-470312"
	datasetID = "budget"

	plansTable        = "plans"
	periodsTable      = "periods"
	transactionsTable = "transactions"
	categoriesTable   = "categories"
)

// numericScale is the scale used when converting NUMERIC values back into
// decimals.
const numericScale = 9

// PlanRow mirrors the budget.plans table schema.
type PlanRow struct {
	PlanID string `bigquery:"plan_id"` // REQUIRED
	UserID string `bigquery:"user_id"` // REQUIRED

	Description string `bigquery:"description"`
	Currency    string `bigquery:"currency"`

	CurrentBalance  *big.Rat `bigquery:"current_balance"`  // NUMERIC
	ExpectedBalance *big.Rat `bigquery:"expected_balance"` // NUMERIC

	Active    bool `bigquery:"active"`
	IsDefault bool `bigquery:"is_default"`

	DateOfCreation time.Time `bigquery:"date_of_creation"`
}

// PeriodRow mirrors the budget.periods table schema. Week is the Monday of
// the ISO week and is the uniqueness key for the (user, plan, week) bucket.
type PeriodRow struct {
	PeriodID string `bigquery:"period_id"` // REQUIRED
	UserID   string `bigquery:"user_id"`   // REQUIRED
	PlanID   string `bigquery:"plan_id"`   // REQUIRED

	Week        civil.Date `bigquery:"week"` // REQUIRED
	PeriodStart time.Time  `bigquery:"period_start"`
	PeriodEnd   time.Time  `bigquery:"period_end"`

	PeriodBalance         *big.Rat `bigquery:"period_balance"`           // NUMERIC
	PeriodBalancePaidOnly *big.Rat `bigquery:"period_balance_paid_only"` // NUMERIC

	ExpectedAllTimeBalance         *big.Rat `bigquery:"expected_all_time_balance"`           // NUMERIC
	ExpectedAllTimeBalancePaidOnly *big.Rat `bigquery:"expected_all_time_balance_paid_only"` // NUMERIC
}

// TransactionRow mirrors the budget.transactions table schema.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED
	PlanID        string `bigquery:"plan_id"`        // REQUIRED
	PeriodID      string `bigquery:"period_id"`      // REQUIRED
	CategoryID    string `bigquery:"category_id"`    // NULLABLE

	Description string   `bigquery:"description"`
	Amount      *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC, stored signed
	Type        string   `bigquery:"type"`   // INCOME | EXPENSE

	TransactionDate time.Time `bigquery:"transaction_date"`
	IsPaid          bool      `bigquery:"is_paid"`

	CreatedTS time.Time `bigquery:"created_ts"`
}

// CategoryRow mirrors the budget.categories table schema.
type CategoryRow struct {
	CategoryID string `bigquery:"category_id"` // REQUIRED
	UserID     string `bigquery:"user_id"`     // REQUIRED

	Description string `bigquery:"description"`
	Icon        string `bigquery:"icon"`
	Color       string `bigquery:"color"`
	Type        string `bigquery:"type"`

	IsActive bool `bigquery:"is_active"`
}

func ratFromDecimal(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

func decimalFromRat(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(r, numericScale)
}

func planRowFromDomain(p *domain.Plan) *PlanRow {
	return &PlanRow{
		PlanID:          p.ID,
		UserID:          p.UserID,
		Description:     p.Description,
		Currency:        p.Currency,
		CurrentBalance:  ratFromDecimal(p.CurrentBalance),
		ExpectedBalance: ratFromDecimal(p.ExpectedBalance),
		Active:          p.Active,
		IsDefault:       p.IsDefault,
		DateOfCreation:  p.DateOfCreation,
	}
}

func (r *PlanRow) toDomain() *domain.Plan {
	return &domain.Plan{
		ID:              r.PlanID,
		UserID:          r.UserID,
		Description:     r.Description,
		Currency:        r.Currency,
		CurrentBalance:  decimalFromRat(r.CurrentBalance),
		ExpectedBalance: decimalFromRat(r.ExpectedBalance),
		Active:          r.Active,
		IsDefault:       r.IsDefault,
		DateOfCreation:  r.DateOfCreation,
	}
}

func periodRowFromDomain(p *domain.Period) *PeriodRow {
	return &PeriodRow{
		PeriodID:                       p.ID,
		UserID:                         p.UserID,
		PlanID:                         p.PlanID,
		Week:                           civil.DateOf(p.PeriodStart.UTC()),
		PeriodStart:                    p.PeriodStart,
		PeriodEnd:                      p.PeriodEnd,
		PeriodBalance:                  ratFromDecimal(p.PeriodBalance),
		PeriodBalancePaidOnly:          ratFromDecimal(p.PeriodBalancePaidOnly),
		ExpectedAllTimeBalance:         ratFromDecimal(p.ExpectedAllTimeBalance),
		ExpectedAllTimeBalancePaidOnly: ratFromDecimal(p.ExpectedAllTimeBalancePaidOnly),
	}
}

func (r *PeriodRow) toDomain() *domain.Period {
	return &domain.Period{
		ID:                             r.PeriodID,
		UserID:                         r.UserID,
		PlanID:                         r.PlanID,
		PeriodStart:                    r.PeriodStart.UTC(),
		PeriodEnd:                      r.PeriodEnd.UTC(),
		PeriodBalance:                  decimalFromRat(r.PeriodBalance),
		PeriodBalancePaidOnly:          decimalFromRat(r.PeriodBalancePaidOnly),
		ExpectedAllTimeBalance:         decimalFromRat(r.ExpectedAllTimeBalance),
		ExpectedAllTimeBalancePaidOnly: decimalFromRat(r.ExpectedAllTimeBalancePaidOnly),
	}
}

func transactionRowFromDomain(t *domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:   t.ID,
		UserID:          t.UserID,
		PlanID:          t.PlanID,
		PeriodID:        t.PeriodID,
		CategoryID:      t.CategoryID,
		Description:     t.Description,
		Amount:          ratFromDecimal(t.Amount),
		Type:            string(t.Type),
		TransactionDate: t.Date,
		IsPaid:          t.IsPaid,
		CreatedTS:       t.DateCreated,
	}
}

func (r *TransactionRow) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:          r.TransactionID,
		UserID:      r.UserID,
		PlanID:      r.PlanID,
		PeriodID:    r.PeriodID,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		Amount:      decimalFromRat(r.Amount),
		Type:        domain.TransactionType(r.Type),
		Date:        r.TransactionDate.UTC(),
		IsPaid:      r.IsPaid,
		DateCreated: r.CreatedTS.UTC(),
	}
}

func categoryRowFromDomain(c *domain.Category) *CategoryRow {
	return &CategoryRow{
		CategoryID:  c.ID,
		UserID:      c.UserID,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		Type:        string(c.Type),
		IsActive:    c.Active,
	}
}

func (r *CategoryRow) toDomain() *domain.Category {
	return &domain.Category{
		ID:          r.CategoryID,
		UserID:      r.UserID,
		Description: r.Description,
		Icon:        r.Icon,
		Color:       r.Color,
		Type:        domain.TransactionType(r.Type),
		Active:      r.IsActive,
	}
}

// tableRef returns the fully qualified table name for DML statements.
func tableRef(table string) string {
	return "`" + projectID + "." + datasetID + "." + table + "`"
}

// runDML executes a DML statement and waits for completion.
func runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	return status.Err()
}
