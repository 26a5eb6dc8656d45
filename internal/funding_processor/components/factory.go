package components

import (
	"log/slog"

	"github.com/account-ledger/internal/config"
	"github.com/account-ledger/internal/core"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/account-ledger/internal/funding_processor/service"
)

// CreateFundingService wires the ledger engine over store and wraps it in a
// worker pool sized by cfg.WorkerPool.Size. A non-positive size, or a pool
// that cannot be created, yields the unpooled service.
func CreateFundingService(
	store uow.Store,
	logger *slog.Logger,
	cfg *config.Config,
) service.FundingService {
	engine := core.NewLedgerEngine(
		logger.With("component", "ledger_engine"),
		store,
		core.RetryPolicy{
			MaxAttempts: cfg.Ledger.FundMaxAttempts,
			Backoff:     cfg.Ledger.FundRetryBackoff,
		},
	)
	baseService := service.NewFundingService(engine, logger)

	if cfg.WorkerPool.Size <= 0 {
		logger.Warn("Worker pool disabled, processing funding requests inline")
		return baseService
	}

	workerPoolService, err := service.NewWorkerPoolFundingService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool funding service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
