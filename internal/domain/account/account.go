package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidAccountType  = errors.New("account type must be checking or savings")
	ErrInvalidStatus       = errors.New("account status must be active or inactive")
	ErrInvalidNumber       = errors.New("account number must be exactly 10 digits")
	ErrEmptyOwner          = errors.New("owner id cannot be empty")
	ErrAccountNumberTaken  = errors.New("account number already taken")
	ErrAllocationExhausted = errors.New("could not allocate a unique account number")
)

// Type is the kind of account an owner may hold. An owner holds at most one of each.
type Type string

const (
	TypeChecking Type = "checking"
	TypeSavings  Type = "savings"
)

// Valid reports whether t is a known account type
func (t Type) Valid() bool {
	return t == TypeChecking || t == TypeSavings
}

// Status controls whether an account accepts funding
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known account status
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// NumberLength is the fixed length of an account number
const NumberLength = 10

// Account represents a bank account
type Account struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	AccountNumber string    `json:"account_number"`
	Type          Type      `json:"account_type"`
	Balance       int64     `json:"balance"` // Stored in cents/minor units
	Status        Status    `json:"status"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAccount creates an active, zero-balance account for the owner
func NewAccount(ownerID uuid.UUID, accountType Type, accountNumber string) (*Account, error) {
	if ownerID == uuid.Nil {
		return nil, ErrEmptyOwner
	}
	if !accountType.Valid() {
		return nil, ErrInvalidAccountType
	}
	if !ValidNumber(accountNumber) {
		return nil, ErrInvalidNumber
	}

	now := time.Now().UTC()
	return &Account{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		AccountNumber: accountNumber,
		Type:          accountType,
		Balance:       0,
		Status:        StatusActive,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsActive reports whether the account accepts funding
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// OwnedBy reports whether ownerID holds the account
func (a *Account) OwnedBy(ownerID uuid.UUID) bool {
	return a.OwnerID == ownerID
}

// ValidNumber checks the account number shape
func ValidNumber(number string) bool {
	if len(number) != NumberLength {
		return false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
