package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/weekly-budget/internal/account"
	"github.com/dvloznov/weekly-budget/internal/api/handlers"
	"github.com/dvloznov/weekly-budget/internal/api/middleware"
	"github.com/dvloznov/weekly-budget/internal/category"
	infraBQ "github.com/dvloznov/weekly-budget/internal/infra/bigquery"
	"github.com/dvloznov/weekly-budget/internal/ledger"
	"github.com/dvloznov/weekly-budget/internal/logger"
	"github.com/dvloznov/weekly-budget/internal/period"
	"github.com/dvloznov/weekly-budget/internal/plan"
	"github.com/dvloznov/weekly-budget/internal/store"
	"github.com/dvloznov/weekly-budget/internal/store/inmemory"
)

func main() {
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		storeKind = flag.String("store", envOr("BUDGET_STORE", "bigquery"), "Backing store: bigquery or memory")
	)
	flag.Parse()

	log := logger.NewService("api")

	ctx := context.Background()

	var (
		plansRepo        store.PlanRepository
		periodsRepo      store.PeriodRepository
		transactionsRepo store.TransactionRepository
		categoriesRepo   store.CategoryRepository
	)
	switch *storeKind {
	case "memory":
		log.Warn().Msg("Using in-memory store - data will not survive a restart")
		plansRepo = inmemory.NewPlanStore()
		periodsRepo = inmemory.NewPeriodStore()
		transactionsRepo = inmemory.NewTransactionStore()
		categoriesRepo = inmemory.NewCategoryStore()
	case "bigquery":
		client, err := infraBQ.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		defer client.Close()
		plansRepo = infraBQ.NewPlanRepository(client)
		periodsRepo = infraBQ.NewPeriodRepository(client)
		transactionsRepo = infraBQ.NewTransactionRepository(client)
		categoriesRepo = infraBQ.NewCategoryRepository(client)
	default:
		log.Fatal().Str("store", *storeKind).Msg("Unknown store kind")
	}

	// Services. The plan service doubles as the totals sink for the engine.
	planService := plan.NewService(plansRepo, nil, log)
	resolver := period.NewResolver(periodsRepo, log)
	engine := period.NewEngine(periodsRepo, transactionsRepo, planService, log)
	ledgerService := ledger.NewService(transactionsRepo, plansRepo, resolver, engine, nil, log)
	periodService := period.NewService(periodsRepo, transactionsRepo, plansRepo, log)
	categoryService := category.NewService(categoriesRepo, log)
	accountService := account.NewService(transactionsRepo, periodsRepo, plansRepo, categoriesRepo, log)

	// Handlers
	transactionsHandler := handlers.NewTransactionsHandler(ledgerService, periodService, log)
	periodsHandler := handlers.NewPeriodsHandler(periodService, log)
	plansHandler := handlers.NewPlansHandler(planService, log)
	categoriesHandler := handlers.NewCategoriesHandler(categoryService, log)
	currenciesHandler := handlers.NewCurrenciesHandler(log)
	accountHandler := handlers.NewAccountHandler(accountService, log)

	// Create router
	mux := http.NewServeMux()

	// Transactions endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.ListTransactions(w, r)
		case http.MethodPost:
			transactionsHandler.CreateTransaction(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/bulk", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.CreateTransactionsBulk(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/pending", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListPendingTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if rest == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		if id, ok := strings.CutSuffix(rest, "/pay"); ok {
			if r.Method == http.MethodPatch {
				transactionsHandler.PayTransaction(w, r, id)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		switch r.Method {
		case http.MethodPut:
			transactionsHandler.UpdateTransaction(w, r, rest)
		case http.MethodDelete:
			transactionsHandler.DeleteTransaction(w, r, rest)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Periods endpoints
	mux.HandleFunc("/api/periods", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			periodsHandler.ListPeriods(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/periods/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/periods/")
		id, ok := strings.CutSuffix(rest, "/transactions")
		if !ok || id == "" {
			middleware.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		if r.Method == http.MethodGet {
			periodsHandler.ListPeriodTransactions(w, r, id)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Plans endpoints
	mux.HandleFunc("/api/plans", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			plansHandler.ListPlans(w, r)
		case http.MethodPost:
			plansHandler.CreatePlan(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/plans/", func(w http.ResponseWriter, r *http.Request) {
		planID := strings.TrimPrefix(r.URL.Path, "/api/plans/")
		if planID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Plan ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			plansHandler.UpdatePlan(w, r, planID)
		case http.MethodDelete:
			plansHandler.DeletePlan(w, r, planID)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Categories endpoints
	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			categoriesHandler.ListCategories(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories/defaults", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			categoriesHandler.SeedCategories(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Currencies endpoint
	mux.HandleFunc("/api/currencies", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			currenciesHandler.ListCurrencies(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Account endpoint
	mux.HandleFunc("/api/account", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			accountHandler.DeleteAccount(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("store", *storeKind).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
