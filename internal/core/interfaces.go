// Package core holds the account ledger: account creation with unique
// account numbers, atomic funding and newest-first transaction history.
// Callers pass an already authenticated owner id; every lookup is scoped to it.
package core

import (
	"context"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/google/uuid"
)

// NumberAllocator hands out account numbers that no other account holds
type NumberAllocator interface {
	// Allocate draws candidates and passes each to claim until one is accepted.
	// claim must return account.ErrAccountNumberTaken when the candidate is
	// already in use; any other error aborts allocation.
	Allocate(ctx context.Context, claim func(ctx context.Context, number string) error) (string, error)
}

// AccountStore defines the interface for account operations
type AccountStore interface {
	// CreateAccount opens an active, zero-balance account of the given type.
	// Returns ErrDuplicateAccountType when the owner already holds one.
	CreateAccount(ctx context.Context, ownerID uuid.UUID, accountType account.Type) (*account.Account, error)

	// GetAccountsForOwner lists all accounts of the owner, empty if none
	GetAccountsForOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error)

	// GetOwnedAccount returns ErrAccountNotFound for missing and foreign accounts alike
	GetOwnedAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*account.Account, error)

	// SetAccountStatus activates or deactivates an owned account
	SetAccountStatus(ctx context.Context, ownerID, accountID uuid.UUID, status account.Status) (*account.Account, error)
}

// LedgerEngine defines the funding operation
type LedgerEngine interface {
	// Fund records a completed deposit and raises the balance by the same
	// amount as one indivisible unit.
	Fund(ctx context.Context, request *FundRequest) (*FundResult, error)
}

// HistoryReader defines transaction history retrieval
type HistoryReader interface {
	// ListTransactions returns the owned account's transactions newest first
	ListTransactions(ctx context.Context, ownerID, accountID uuid.UUID) ([]*ledger.EnrichedTransaction, error)
}
