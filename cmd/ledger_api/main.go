package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/office-suite/general-ledger/internal/config"
	"github.com/office-suite/general-ledger/internal/data/mongo"
	"github.com/office-suite/general-ledger/internal/data/postgres"
	"github.com/office-suite/general-ledger/internal/ledger_api"
	"github.com/office-suite/general-ledger/internal/ledger_api/service"
	"github.com/office-suite/general-ledger/internal/logger"
	"github.com/office-suite/general-ledger/internal/platform/cache"
	"github.com/office-suite/general-ledger/internal/platform/metrics"
	"github.com/office-suite/general-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

func main() {
	// Amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	// Runs migrations before returning
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisClient, err := cache.NewRedisClient(appCtx, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}
	if redisClient == nil {
		log.Info("REDIS_ADDR not set, report caching disabled")
	}
	reportCache := cache.NewReportCache(log, redisClient, cfg.Redis.CacheTTL)

	m := metrics.New()

	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	voucherRepo := postgres.NewVoucherRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	balanceRepo := postgres.NewBalanceRepository(log, postgresDB)
	cashflowRepo := postgres.NewCashflowRepository(log, postgresDB)
	journalRepo := mongo.NewJournalRepository(log, mongoDB.Database())

	server := ledger_api.NewServer(log, cfg, ledger_api.Services{
		Accounts: service.NewAccountService(log, accountRepo, reportCache),
		Posting:  service.NewPostingService(log, postgresDB, accountRepo, voucherRepo, outboxRepo, reportCache, m),
		Balances: service.NewBalanceService(log, balanceRepo),
		Reports:  service.NewReportService(log, balanceRepo, cashflowRepo, reportCache),
		Journal:  service.NewJournalService(log, accountRepo, journalRepo),
	}, m)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	log.Info("Starting graceful shutdown...")

	// Stop applies SERVER_SHUTDOWN_TIMEOUT itself; connections close after in-flight requests drain
	var shutdownErr error
	if err := server.Stop(context.Background()); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	closeCtx, cancelClose := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelClose()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
			shutdownErr = err
		}
	}

	if err := mongoDB.Close(closeCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
