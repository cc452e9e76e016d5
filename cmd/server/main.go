package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/core-ledger/internal/adapter/http/controller"
	"github.com/api-sage/core-ledger/internal/adapter/http/middleware"
	"github.com/api-sage/core-ledger/internal/adapter/http/router"
	"github.com/api-sage/core-ledger/internal/adapter/repository/postgres"
	"github.com/api-sage/core-ledger/internal/config"
	"github.com/api-sage/core-ledger/internal/engine"
	"github.com/api-sage/core-ledger/internal/oracle"
	"github.com/api-sage/core-ledger/internal/scheduler"
	"github.com/api-sage/core-ledger/internal/usecase/services"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := postgres.RunMigrations(migrateCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		cancel()
		log.Fatalf("run migrations: %v", err)
	}
	cancel()

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ledgerStore := postgres.NewLedgerStore(db)
	executionLog := postgres.NewExecutionLog(db)
	customerRepo := postgres.NewCustomerRepository(db)

	eng := engine.New(engine.Options{
		BankKey:               cfg.BankKey,
		OracleKey:             cfg.OracleKey,
		CreditRatingThreshold: cfg.CreditRatingThreshold,
	})
	oracleClient := oracle.New(cfg.OracleURL, cfg.OracleKey, cfg.OracleAssertionValidity)

	customerService := services.NewCustomerService(customerRepo)
	accountService := services.NewAccountService(ledgerStore, customerRepo, eng, cfg.BankCode, cfg.BankKey)
	transferService := services.NewTransferService(ledgerStore, customerRepo, eng)
	loanService := services.NewLoanService(ledgerStore, oracleClient, eng, cfg.BankKey, cfg.OracleKey)
	recurringService := services.NewRecurringService(ledgerStore, executionLog, transferService, eng)

	sched := scheduler.New(ledgerStore, recurringService, cfg.SchedulerConcurrency, cfg.SchedulerPollInterval)
	recurringService.SetScheduleNotifier(sched.Notify)

	authMiddleware := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey)
	mux := router.New(
		controller.NewCustomerController(customerService),
		controller.NewAccountController(accountService),
		controller.NewTransferController(transferService),
		controller.NewLoanController(loanService),
		controller.NewRecurringController(recurringService),
		authMiddleware,
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := sched.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
