package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizedAmount(t *testing.T) {
	tests := []struct {
		name   string
		txType TransactionType
		amount string
		want   string
	}{
		{name: "expense from positive", txType: TransactionExpense, amount: "250.75", want: "-250.75"},
		{name: "expense already negative", txType: TransactionExpense, amount: "-250.75", want: "-250.75"},
		{name: "income from positive", txType: TransactionIncome, amount: "1000", want: "1000"},
		{name: "income from negative", txType: TransactionIncome, amount: "-1000", want: "1000"},
		{name: "zero stays zero", txType: TransactionExpense, amount: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizedAmount(tt.txType, decimal.RequireFromString(tt.amount))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("NormalizedAmount(%s, %s) = %s, want %s", tt.txType, tt.amount, got, tt.want)
			}
		})
	}
}

func TestTransactionTypeValid(t *testing.T) {
	if !TransactionIncome.Valid() || !TransactionExpense.Valid() {
		t.Error("known types reported invalid")
	}
	if TransactionType("TRANSFER").Valid() {
		t.Error("unknown type reported valid")
	}
	if TransactionType("").Valid() {
		t.Error("empty type reported valid")
	}
}
