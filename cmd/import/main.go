package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	infraBQ "github.com/dvloznov/weekly-budget/internal/infra/bigquery"
	"github.com/dvloznov/weekly-budget/internal/importer"
	"github.com/dvloznov/weekly-budget/internal/ledger"
	"github.com/dvloznov/weekly-budget/internal/logger"
	"github.com/dvloznov/weekly-budget/internal/period"
	"github.com/dvloznov/weekly-budget/internal/plan"
)

func main() {
	log := logger.NewService("import")

	userID := flag.String("user", "", "User ID owning the imported transactions")
	source := flag.String("source", "", "Import file: local path or gs://bucket/file.json")
	flag.Parse()

	if *userID == "" || *source == "" {
		log.Fatal().Msg("Error: --user and --source are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := infraBQ.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	plansRepo := infraBQ.NewPlanRepository(client)
	periodsRepo := infraBQ.NewPeriodRepository(client)
	transactionsRepo := infraBQ.NewTransactionRepository(client)

	planService := plan.NewService(plansRepo, nil, log)
	resolver := period.NewResolver(periodsRepo, log)
	engine := period.NewEngine(periodsRepo, transactionsRepo, planService, log)
	ledgerService := ledger.NewService(transactionsRepo, plansRepo, resolver, engine, nil, log)

	count, err := importer.New(ledgerService, log).Run(ctx, *userID, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Printf("Imported %d transactions.\n", count)
}
