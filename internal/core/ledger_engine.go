package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/google/uuid"
)

// FundRequest asks for Amount minor units to be deposited into an owned account
type FundRequest struct {
	AccountID      uuid.UUID
	OwnerID        uuid.UUID
	Amount         int64 // Stored in cents/minor units
	Source         shared.FundingSource
	IdempotencyKey string
	CorrelationID  string
}

// FundResult is the outcome of a committed funding
type FundResult struct {
	Transaction *ledger.Transaction
	Account     *account.Account
	NewBalance  int64
}

// RetryPolicy bounds how often a conflicting funding unit is re-run
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy is used when the configured policy is empty
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 5, Backoff: 20 * time.Millisecond}

// LedgerEngineImpl implements the LedgerEngine interface
type LedgerEngineImpl struct {
	store  uow.Store
	retry  RetryPolicy
	logger *slog.Logger
}

// NewLedgerEngine creates a new ledger engine
func NewLedgerEngine(logger *slog.Logger, store uow.Store, retry RetryPolicy) LedgerEngine {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if retry.Backoff < 0 {
		retry.Backoff = 0
	}
	return &LedgerEngineImpl{
		store:  store,
		retry:  retry,
		logger: logger,
	}
}

// Fund applies the deposit. A unit aborted by a conflicting writer is re-run
// from scratch; nothing from the aborted attempt survives.
func (e *LedgerEngineImpl) Fund(ctx context.Context, request *FundRequest) (*FundResult, error) {
	if request.Amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	logger := e.logger
	if request.CorrelationID != "" {
		logger = e.logger.With("correlation_id", request.CorrelationID)
	}

	for attempt := 1; ; attempt++ {
		result, err := e.fundOnce(ctx, request)
		if err == nil {
			logger.Info("Account funded",
				"account_id", request.AccountID.String(),
				"transaction_id", result.Transaction.ID,
				"amount", request.Amount,
				"new_balance", result.NewBalance,
			)
			return result, nil
		}

		if !errors.Is(err, account.ErrConcurrentModification{}) {
			return nil, err
		}

		if attempt >= e.retry.MaxAttempts {
			logger.Error("Funding gave up after repeated conflicts",
				"account_id", request.AccountID.String(), "attempts", attempt, "error", err)
			return nil, ledger.ErrConcurrencyConflict{AccountID: request.AccountID, Attempts: attempt}
		}

		logger.Warn("Funding conflicted, retrying",
			"account_id", request.AccountID.String(), "attempt", attempt)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.retry.Backoff * time.Duration(attempt)):
		}
	}
}

func (e *LedgerEngineImpl) fundOnce(ctx context.Context, request *FundRequest) (*FundResult, error) {
	var result FundResult

	err := e.store.ExecuteTx(ctx, func(repos uow.Repositories) error {
		// The increment takes the row lock and checks ownership and status
		// against the stored row.
		acc, err := repos.Accounts().IncrementBalance(ctx, request.AccountID, request.OwnerID, request.Amount)
		if err != nil {
			return err
		}

		tx, err := ledger.NewDeposit(acc.ID, request.Amount, request.Source.Description(), request.IdempotencyKey, request.CorrelationID)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Create(ctx, tx); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(&shared.FundingEvent{
			EventID:       uuid.New(),
			EventType:     shared.EventTypeAccountFunded,
			TransactionID: tx.ID,
			AccountID:     acc.ID,
			OwnerID:       acc.OwnerID,
			AccountNumber: acc.AccountNumber,
			AccountType:   string(acc.Type),
			Amount:        tx.Amount,
			NewBalance:    acc.Balance,
			Description:   tx.Description,
			Source:        request.Source,
			CorrelationID: request.CorrelationID,
			OccurredAt:    tx.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to build funding event: %w", err)
		}
		if err := repos.Outbox().Create(ctx, msg); err != nil {
			return err
		}

		result = FundResult{Transaction: tx, Account: acc, NewBalance: acc.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
