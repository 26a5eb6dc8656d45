package handler

import (
	"log/slog"

	"github.com/account-ledger/internal/api_gateway/middleware"
	"github.com/account-ledger/internal/core"
	"github.com/account-ledger/internal/domain/account"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountStore core.AccountStore
	logger       *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountStore core.AccountStore) *AccountHandler {
	return &AccountHandler{
		accountStore: accountStore,
		logger:       logger,
	}
}

// Create opens an account of the requested type for the caller
func (h *AccountHandler) Create(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountStore.CreateAccount(c.Request.Context(), ownerID, account.Type(req.AccountType))
	if err != nil {
		respondError(c, h.logger, "create_account", err)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// List returns all accounts of the caller
func (h *AccountHandler) List(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	accounts, err := h.accountStore.GetAccountsForOwner(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, h.logger, "list_accounts", err)
		return
	}

	RespondOK(c, mapAccountsToResponse(accounts))
}

// GetByID returns one of the caller's accounts, 404 for missing and foreign ids alike
func (h *AccountHandler) GetByID(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}

	acc, err := h.accountStore.GetOwnedAccount(c.Request.Context(), ownerID, accountID)
	if err != nil {
		respondError(c, h.logger, "get_account", err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// UpdateStatus activates or deactivates one of the caller's accounts
func (h *AccountHandler) UpdateStatus(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}

	var req UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountStore.SetAccountStatus(c.Request.Context(), ownerID, accountID, account.Status(req.Status))
	if err != nil {
		respondError(c, h.logger, "update_account_status", err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// requireOwner reads the authenticated owner; the auth middleware guarantees
// one on every /api/v1 route
func requireOwner(c *gin.Context) (uuid.UUID, bool) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		RespondUnauthorized(c)
		return uuid.Nil, false
	}
	return ownerID, true
}

func accountIDParam(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return uuid.Nil, false
	}
	return id, true
}
