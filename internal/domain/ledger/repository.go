package ledger

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// Repository manages ledger transaction persistence. Transactions are append-only.
type Repository interface {
	// Create inserts tx and fills in its store-assigned ID and CreatedAt
	Create(ctx context.Context, tx *Transaction) error

	// ListByAccount returns the account's transactions newest first
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error)
}

// ErrDuplicateTransaction indicates the idempotency key was already used
type ErrDuplicateTransaction struct {
	IdempotencyKey string
}

func (e ErrDuplicateTransaction) Error() string {
	return "duplicate transaction for idempotency key: " + e.IdempotencyKey
}

// Is implements the errors.Is interface for ErrDuplicateTransaction
func (e ErrDuplicateTransaction) Is(target error) bool {
	t, ok := target.(ErrDuplicateTransaction)
	if !ok {
		return false
	}
	// If the target key is empty, consider it a match for any ErrDuplicateTransaction
	if t.IdempotencyKey == "" {
		return true
	}
	return e.IdempotencyKey == t.IdempotencyKey
}

// ErrConcurrencyConflict indicates funding gave up after repeated store conflicts
type ErrConcurrencyConflict struct {
	AccountID uuid.UUID
	Attempts  int
}

func (e ErrConcurrencyConflict) Error() string {
	return "funding of account " + e.AccountID.String() + " conflicted after " + strconv.Itoa(e.Attempts) + " attempts"
}

// Is implements the errors.Is interface for ErrConcurrencyConflict
func (e ErrConcurrencyConflict) Is(target error) bool {
	t, ok := target.(ErrConcurrencyConflict)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}
