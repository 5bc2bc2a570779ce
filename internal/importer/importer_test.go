package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/weekly-budget/internal/ledger"
	"github.com/dvloznov/weekly-budget/internal/period"
	"github.com/dvloznov/weekly-budget/internal/plan"
	"github.com/dvloznov/weekly-budget/internal/store/inmemory"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{uri: "gs://my-bucket/imports/batch.json", wantBucket: "my-bucket", wantObject: "imports/batch.json"},
		{uri: "gs://my-bucket/batch.json", wantBucket: "my-bucket", wantObject: "batch.json"},
		{uri: "gs://my-bucket/", wantErr: true},
		{uri: "gs://", wantErr: true},
		{uri: "gs:///object.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := parseGCSURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestRunImportsLocalFile(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	plans := inmemory.NewPlanStore()
	periods := inmemory.NewPeriodStore()
	transactions := inmemory.NewTransactionStore()

	planSvc := plan.NewService(plans, nil, log)
	created, err := planSvc.Create(ctx, "user-1", plan.CreateInput{Description: "Main", Currency: "EUR"})
	require.NoError(t, err)

	resolver := period.NewResolver(periods, log)
	engine := period.NewEngine(periods, transactions, planSvc, log)
	ledgerSvc := ledger.NewService(transactions, plans, resolver, engine, nil, log)

	file := filepath.Join(t.TempDir(), "batch.json")
	body := `[
		{"planId": "` + created.ID + `", "description": "salary", "amount": 1000, "type": "INCOME", "date": "2025-03-03", "isPaid": true},
		{"planId": "` + created.ID + `", "description": "rent", "amount": 300, "type": "EXPENSE", "date": "2025-03-11T10:00:00Z"}
	]`
	require.NoError(t, os.WriteFile(file, []byte(body), 0o644))

	count, err := New(ledgerSvc, log).Run(ctx, "user-1", file)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Both weeks got a period and the chain was accounted.
	week2, err := periods.FindByWeek(ctx, "user-1", created.ID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, week2)
	assert.True(t, week2.ExpectedAllTimeBalance.Equal(decimal.RequireFromString("700")))

	stored, err := plans.FindByIDAndUser(ctx, "user-1", created.ID)
	require.NoError(t, err)
	assert.True(t, stored.ExpectedBalance.Equal(decimal.RequireFromString("700")))
}

func TestRunRejectsUnparseableDate(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	plans := inmemory.NewPlanStore()
	periods := inmemory.NewPeriodStore()
	transactions := inmemory.NewTransactionStore()

	planSvc := plan.NewService(plans, nil, log)
	resolver := period.NewResolver(periods, log)
	engine := period.NewEngine(periods, transactions, planSvc, log)
	ledgerSvc := ledger.NewService(transactions, plans, resolver, engine, nil, log)

	file := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"planId": "p", "amount": 1, "type": "INCOME", "date": "03/11/2025"}]`), 0o644))

	_, err := New(ledgerSvc, log).Run(ctx, "user-1", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable date")
}
