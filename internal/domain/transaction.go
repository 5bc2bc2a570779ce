package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType says which side of the ledger a transaction sits on.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is one ledger entry. The stored Amount is always signed:
// negative for EXPENSE, positive for INCOME. Normalization happens at write
// time (see NormalizedAmount), so readers never re-interpret the sign.
type Transaction struct {
	ID         string
	UserID     string
	PlanID     string
	PeriodID   string
	CategoryID string

	Description string
	Amount      decimal.Decimal
	Type        TransactionType
	Date        time.Time
	IsPaid      bool

	DateCreated time.Time
}

// NormalizedAmount returns the signed amount to store for a transaction of
// the given type: -abs(amount) for EXPENSE, +abs(amount) for INCOME.
func NormalizedAmount(t TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == TransactionExpense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
