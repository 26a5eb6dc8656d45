package account

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// Repository defines account persistence operations
type Repository interface {
	// Create inserts the account. Uniqueness of the account number and of
	// (owner, type) is decided by the store, surfacing ErrAccountNumberTaken
	// and ErrDuplicateAccountType respectively.
	Create(ctx context.Context, account *Account) error

	// GetOwned returns ErrAccountNotFound when the account does not exist or
	// belongs to another owner.
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)

	// IncrementBalance adds amount to the stored balance of an active owned
	// account and returns the updated row. The increment is applied by the
	// store, never computed from a previously read balance. ErrBalanceOverflow
	// is returned instead of a wrapped balance.
	IncrementBalance(ctx context.Context, id, ownerID uuid.UUID, amount int64) (*Account, error)
	UpdateStatus(ctx context.Context, id, ownerID uuid.UUID, status Status) (*Account, error)
}

// ErrConcurrentModification indicates the store aborted the unit of work
// because of a conflicting concurrent writer
type ErrConcurrentModification struct {
	AccountID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.AccountID.String()
}

// Is implements the errors.Is interface for ErrConcurrentModification
func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	if !ok {
		return false
	}
	return t.AccountID == uuid.Nil || e.AccountID == t.AccountID
}

// ErrBalanceOverflow indicates the increment would take the balance past
// the largest storable amount
type ErrBalanceOverflow struct {
	AccountID uuid.UUID
}

func (e ErrBalanceOverflow) Error() string {
	return "balance would overflow for account: " + e.AccountID.String()
}

// Is implements the errors.Is interface for ErrBalanceOverflow
func (e ErrBalanceOverflow) Is(target error) bool {
	t, ok := target.(ErrBalanceOverflow)
	if !ok {
		return false
	}
	return t.AccountID == uuid.Nil || e.AccountID == t.AccountID
}

// ErrAccountNotFound indicates a missing or foreign account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	// If the target AccountID is empty, consider it a match for any ErrAccountNotFound
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrInactiveAccount indicates funding was attempted on an inactive account
type ErrInactiveAccount struct {
	AccountID uuid.UUID
}

func (e ErrInactiveAccount) Error() string {
	return "account is inactive: " + e.AccountID.String()
}

// Is implements the errors.Is interface for ErrInactiveAccount
func (e ErrInactiveAccount) Is(target error) bool {
	t, ok := target.(ErrInactiveAccount)
	if !ok {
		return false
	}
	return t.AccountID == uuid.Nil || e.AccountID == t.AccountID
}

// ErrDuplicateAccountType indicates the owner already holds an account of this type
type ErrDuplicateAccountType struct {
	OwnerID uuid.UUID
	Type    Type
}

func (e ErrDuplicateAccountType) Error() string {
	return "owner " + e.OwnerID.String() + " already has a " + string(e.Type) + " account"
}

// Is implements the errors.Is interface for ErrDuplicateAccountType
func (e ErrDuplicateAccountType) Is(target error) bool {
	t, ok := target.(ErrDuplicateAccountType)
	if !ok {
		return false
	}
	if t.OwnerID == uuid.Nil {
		return true
	}
	return e.OwnerID == t.OwnerID && (t.Type == "" || e.Type == t.Type)
}

// ErrAllocationFailed wraps ErrAllocationExhausted with the number of candidates tried
type ErrAllocationFailed struct {
	Attempts int
}

func (e ErrAllocationFailed) Error() string {
	return ErrAllocationExhausted.Error() + " after " + strconv.Itoa(e.Attempts) + " attempts"
}

func (e ErrAllocationFailed) Unwrap() error {
	return ErrAllocationExhausted
}
