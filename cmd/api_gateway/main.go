package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/account-ledger/internal/api_gateway"
	"github.com/account-ledger/internal/config"
	"github.com/account-ledger/internal/core"
	"github.com/account-ledger/internal/data/memory"
	"github.com/account-ledger/internal/data/postgres"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/account-ledger/internal/logger"
	"github.com/account-ledger/internal/platform/persistence"
)

func main() {
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// No logger yet.
		fmt.Fprintf(os.Stderr, "api_gateway: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Configuration loaded", "file", cfg.SourceFile, "env", cfg.Application.Env)

	if err := run(log, cfg); err != nil {
		log.Error("api_gateway exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("api_gateway stopped")
}

func run(log *slog.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	store, health, closeStore, err := openStore(ctx, log, cfg)
	if err != nil {
		return fmt.Errorf("opening %s ledger store: %w", cfg.Ledger.Store, err)
	}
	defer closeStore()

	allocator := core.NewAllocator(log.With("component", "allocator"), cfg.Ledger.AccountNumberMaxAttempts)
	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Accounts: core.NewAccountStore(log.With("component", "account_store"), store, allocator),
		Engine: core.NewLedgerEngine(log.With("component", "ledger_engine"), store, core.RetryPolicy{
			MaxAttempts: cfg.Ledger.FundMaxAttempts,
			Backoff:     cfg.Ledger.FundRetryBackoff,
		}),
		History: core.NewHistoryReader(log.With("component", "history_reader"), store),
		Health:  health,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "port", cfg.Server.Port, "store", cfg.Ledger.Store)
		serveErr <- server.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("HTTP server: %w", err)
		}
	}

	// In-flight requests finish before the deferred store close.
	if err := server.Stop(context.Background()); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("stopping HTTP server: %w", err))
	}
	return runErr
}

// openStore returns the configured ledger store, its health check and a close func
func openStore(ctx context.Context, log *slog.Logger, cfg *config.Config) (uow.Store, api_gateway.HealthCheck, func(), error) {
	if !cfg.UsesPostgres() {
		log.Warn("Using in-memory ledger store, balances are lost on restart")
		return memory.NewStore(log.With("component", "memory_store")), nil, func() {}, nil
	}

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return nil, nil, nil, err
	}
	return postgres.NewStore(log, postgresDB), postgresDB.Ping, postgresDB.Close, nil
}
