package handler

import (
	"time"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader optionally names a funding so that retries apply it once
const IdempotencyKeyHeader = "Idempotency-Key"

// CreateAccountRequest represents a request to open a new account
type CreateAccountRequest struct {
	AccountType string `json:"account_type" binding:"required,oneof=checking savings"`
}

// UpdateAccountStatusRequest activates or deactivates an account
type UpdateAccountStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// FundingSourceRequest is the funding source variant; the field of the
// selected type is required
type FundingSourceRequest struct {
	Type          string `json:"type" binding:"required,oneof=card bank"`
	CardLast4     string `json:"card_last4" binding:"required_if=Type card"`
	RoutingNumber string `json:"routing_number" binding:"required_if=Type bank"`
}

func (r *FundingSourceRequest) toDomain() shared.FundingSource {
	return shared.FundingSource{
		Type:          shared.FundingSourceType(r.Type),
		CardLast4:     r.CardLast4,
		RoutingNumber: r.RoutingNumber,
	}
}

// FundAccountRequest represents a deposit into an account. Amount is an exact
// decimal in currency units, accepted as a JSON number or string.
type FundAccountRequest struct {
	Amount        decimal.Decimal       `json:"amount"`
	FundingSource *FundingSourceRequest `json:"funding_source" binding:"required"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID             int64  `json:"id"`
	AccountID      string `json:"account_id"`
	AccountType    string `json:"account_type,omitempty"`
	Type           string `json:"type"`
	Amount         string `json:"amount"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// FundAccountResponse is returned by a committed funding
type FundAccountResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	NewBalance  string              `json:"new_balance"`
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:            acc.ID.String(),
		OwnerID:       acc.OwnerID.String(),
		AccountNumber: acc.AccountNumber,
		AccountType:   string(acc.Type),
		Balance:       shared.FormatMinorUnits(acc.Balance),
		Status:        string(acc.Status),
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapAccountsToResponse(accounts []*account.Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}
	return responses
}

func mapTransactionToResponse(tx *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID,
		AccountID:      tx.AccountID.String(),
		Type:           string(tx.Type),
		Amount:         shared.FormatMinorUnits(tx.Amount),
		Description:    tx.Description,
		Status:         string(tx.Status),
		IdempotencyKey: tx.IdempotencyKey,
		CreatedAt:      tx.CreatedAt.Format(time.RFC3339Nano),
	}
}

func mapHistoryToResponse(history []*ledger.EnrichedTransaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(history))
	for _, entry := range history {
		response := mapTransactionToResponse(&entry.Transaction)
		response.AccountType = string(entry.AccountType)
		responses = append(responses, response)
	}
	return responses
}
