package handler

import (
	"log/slog"
	"strings"

	"github.com/account-ledger/internal/api_gateway/middleware"
	"github.com/account-ledger/internal/core"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// maxIdempotencyKeyLength bounds the Idempotency-Key header
const maxIdempotencyKeyLength = 255

// TransactionHandler handles funding and transaction history requests
type TransactionHandler struct {
	engine  core.LedgerEngine
	history core.HistoryReader
	logger  *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, engine core.LedgerEngine, history core.HistoryReader) *TransactionHandler {
	return &TransactionHandler{
		engine:  engine,
		history: history,
		logger:  logger,
	}
}

// Fund deposits money into one of the caller's accounts
func (h *TransactionHandler) Fund(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}

	var req FundAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := shared.ToMinorUnits(req.Amount)
	if err != nil {
		respondError(c, h.logger, "fund_account", err)
		return
	}

	source := req.FundingSource.toDomain()
	if err := source.Validate(); err != nil {
		respondError(c, h.logger, "fund_account", err)
		return
	}

	idempotencyKey := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(idempotencyKey) > maxIdempotencyKeyLength {
		RespondBadRequest(c, "Idempotency-Key is too long")
		return
	}

	result, err := h.engine.Fund(c.Request.Context(), &core.FundRequest{
		AccountID:      accountID,
		OwnerID:        ownerID,
		Amount:         amount,
		Source:         source,
		IdempotencyKey: idempotencyKey,
		CorrelationID:  middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, h.logger, "fund_account", err)
		return
	}

	RespondCreated(c, FundAccountResponse{
		Transaction: mapTransactionToResponse(result.Transaction),
		NewBalance:  shared.FormatMinorUnits(result.NewBalance),
	})
}

// History returns the transactions of one of the caller's accounts, newest first
func (h *TransactionHandler) History(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}

	history, err := h.history.ListTransactions(c.Request.Context(), ownerID, accountID)
	if err != nil {
		respondError(c, h.logger, "list_transactions", err)
		return
	}

	RespondOK(c, mapHistoryToResponse(history))
}
