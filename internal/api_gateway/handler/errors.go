package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// respondError maps ledger errors onto HTTP responses. Anything unrecognised
// is logged and reported as a 500 without detail.
func respondError(c *gin.Context, logger *slog.Logger, operation string, err error) {
	switch {
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, "Account not found")
	case errors.Is(err, account.ErrDuplicateAccountType{}):
		RespondConflict(c, CodeDuplicateAccountType, "An account of this type already exists")
	case errors.Is(err, ledger.ErrDuplicateTransaction{}):
		RespondConflict(c, CodeDuplicateTransaction, "A funding with this idempotency key was already applied")
	case errors.Is(err, ledger.ErrConcurrencyConflict{}):
		RespondConflict(c, CodeConcurrencyConflict, "The account is busy, please retry")
	case errors.Is(err, account.ErrInactiveAccount{}):
		RespondUnprocessable(c, CodeAccountInactive, "Account is inactive")
	case errors.Is(err, account.ErrBalanceOverflow{}):
		RespondUnprocessable(c, CodeBalanceLimit, "Funding would exceed the maximum account balance")
	case errors.Is(err, account.ErrAllocationExhausted):
		logger.Error("Account number allocation exhausted", "operation", operation, "error", err)
		RespondServiceUnavailable(c, "Could not allocate an account number, please retry")
	case errors.Is(err, account.ErrInvalidAmount),
		errors.Is(err, shared.ErrNonPositiveAmount),
		errors.Is(err, shared.ErrAmountPrecision),
		errors.Is(err, shared.ErrAmountOverflow):
		RespondWithError(c, http.StatusBadRequest, CodeInvalidAmount, err.Error())
	case errors.Is(err, account.ErrInvalidAccountType),
		errors.Is(err, account.ErrInvalidStatus),
		errors.Is(err, shared.ErrInvalidFundingSource),
		errors.Is(err, shared.ErrMissingCardLast4),
		errors.Is(err, shared.ErrMissingRoutingNumber):
		RespondBadRequest(c, err.Error())
	default:
		logger.Error("Request failed", "operation", operation, "error", err)
		_ = c.Error(err)
		RespondInternalError(c)
	}
}
