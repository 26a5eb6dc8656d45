package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/account-ledger/internal/core"
	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// FundingServiceImpl validates a request and hands it to the ledger engine
type FundingServiceImpl struct {
	engine core.LedgerEngine
	logger *slog.Logger
}

// NewFundingService creates a new funding service
func NewFundingService(engine core.LedgerEngine, logger *slog.Logger) FundingService {
	return &FundingServiceImpl{
		engine: engine,
		logger: logger,
	}
}

// ProcessFunding funds the account named by the request. The request id is
// the idempotency key, so a redelivered request is rejected as a duplicate
// instead of being applied twice.
func (s *FundingServiceImpl) ProcessFunding(ctx context.Context, request *shared.FundingRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	if err := request.Validate(); err != nil {
		logger.Warn("Funding request rejected", "request_id", request.RequestID.String(), "error", err)
		return err
	}

	fundRequest := &core.FundRequest{
		AccountID:     request.AccountID,
		OwnerID:       request.OwnerID,
		Amount:        request.Amount,
		Source:        request.Source,
		CorrelationID: request.CorrelationID,
	}
	if request.RequestID != uuid.Nil {
		fundRequest.IdempotencyKey = request.RequestID.String()
	}

	result, err := s.engine.Fund(ctx, fundRequest)
	if err != nil {
		return err
	}

	logger.Info("Funding request applied",
		"request_id", request.RequestID.String(),
		"transaction_id", result.Transaction.ID,
		"new_balance", result.NewBalance,
	)
	return nil
}

// Rejection kinds attached to dead-lettered funding requests.
// RejectRetriesExhausted marks a message that kept failing with errors not
// known to be permanent.
const (
	RejectMalformed        = "malformed"
	RejectAccountNotFound  = "account_not_found"
	RejectAccountInactive  = "account_inactive"
	RejectInvalidRequest   = "invalid_request"
	RejectBalanceLimit     = "balance_limit"
	RejectRetriesExhausted = "retries_exhausted"
)

// RejectionKind classifies err as a permanent failure. ok is false when
// retrying the request might still succeed.
func RejectionKind(err error) (kind string, ok bool) {
	switch {
	case errors.Is(err, account.ErrAccountNotFound{}):
		return RejectAccountNotFound, true
	case errors.Is(err, account.ErrInactiveAccount{}):
		return RejectAccountInactive, true
	case errors.Is(err, account.ErrBalanceOverflow{}):
		return RejectBalanceLimit, true
	case errors.Is(err, account.ErrInvalidAmount),
		errors.Is(err, shared.ErrAmountOverflow),
		errors.Is(err, shared.ErrInvalidFundingSource),
		errors.Is(err, shared.ErrMissingCardLast4),
		errors.Is(err, shared.ErrMissingRoutingNumber),
		errors.Is(err, shared.ErrInvalidFundingAmount),
		errors.Is(err, shared.ErrMissingAccount),
		errors.Is(err, shared.ErrMissingOwner):
		return RejectInvalidRequest, true
	}
	return "", false
}
