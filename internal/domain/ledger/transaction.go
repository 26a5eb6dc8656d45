package ledger

import (
	"time"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Transaction is an immutable ledger record that moved funds into an account.
// ID is assigned by the store and increases with creation order.
type Transaction struct {
	ID             int64                    `json:"id"`
	AccountID      uuid.UUID                `json:"account_id"`
	Type           shared.TransactionType   `json:"type"`
	Amount         int64                    `json:"amount"` // Stored in cents/minor units
	Description    string                   `json:"description"`
	Status         shared.TransactionStatus `json:"status"`
	IdempotencyKey string                   `json:"idempotency_key,omitempty"`
	CorrelationID  string                   `json:"correlation_id,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	ProcessedAt    *time.Time               `json:"processed_at,omitempty"`
}

// EnrichedTransaction is a Transaction joined with its account's type at read time
type EnrichedTransaction struct {
	Transaction
	AccountType account.Type `json:"account_type"`
}

// NewDeposit builds a settled deposit for accountID. Deposits settle
// synchronously, so the transaction is born completed.
func NewDeposit(accountID uuid.UUID, amount int64, description, idempotencyKey, correlationID string) (*Transaction, error) {
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &Transaction{
		AccountID:      accountID,
		Type:           shared.TransactionTypeDeposit,
		Amount:         amount,
		Description:    description,
		Status:         shared.TransactionStatusCompleted,
		IdempotencyKey: idempotencyKey,
		CorrelationID:  correlationID,
		CreatedAt:      now,
		ProcessedAt:    &now,
	}, nil
}

// Enrich attaches the owning account's type
func (t *Transaction) Enrich(accountType account.Type) *EnrichedTransaction {
	return &EnrichedTransaction{Transaction: *t, AccountType: accountType}
}
