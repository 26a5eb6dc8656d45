package account

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		ownerID := uuid.New()

		beforeCreation := time.Now()
		acc, err := NewAccount(ownerID, TypeChecking, "1234567890")
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, acc)

		assert.NotEqual(t, uuid.Nil, acc.ID, "Account ID should not be nil")
		assert.Equal(t, ownerID, acc.OwnerID)
		assert.Equal(t, "1234567890", acc.AccountNumber)
		assert.Equal(t, TypeChecking, acc.Type)
		assert.Equal(t, int64(0), acc.Balance, "New accounts start empty")
		assert.Equal(t, StatusActive, acc.Status)
		assert.Equal(t, 1, acc.Version, "Initial version should be 1")
		assert.WithinDuration(t, beforeCreation, acc.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)
		assert.Equal(t, acc.CreatedAt, acc.UpdatedAt)
	})

	t.Run("EmptyOwner", func(t *testing.T) {
		_, err := NewAccount(uuid.Nil, TypeSavings, "1234567890")
		assert.ErrorIs(t, err, ErrEmptyOwner)
	})

	t.Run("InvalidType", func(t *testing.T) {
		_, err := NewAccount(uuid.New(), Type("brokerage"), "1234567890")
		assert.ErrorIs(t, err, ErrInvalidAccountType)
	})

	t.Run("InvalidNumber", func(t *testing.T) {
		_, err := NewAccount(uuid.New(), TypeSavings, "12345")
		assert.ErrorIs(t, err, ErrInvalidNumber)
	})
}

func TestValidNumber(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"1000000000", true},
		{"9999999999", true},
		{"0123456789", true},
		{"123456789", false},
		{"12345678901", false},
		{"12345abcde", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidNumber(tt.number))
		})
	}
}

func TestAccount_IsActive(t *testing.T) {
	acc := &Account{Status: StatusActive}
	assert.True(t, acc.IsActive())
	acc.Status = StatusInactive
	assert.False(t, acc.IsActive())
}

func TestTypeAndStatusValid(t *testing.T) {
	assert.True(t, TypeChecking.Valid())
	assert.True(t, TypeSavings.Valid())
	assert.False(t, Type("").Valid())
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusInactive.Valid())
	assert.False(t, Status("closed").Valid())
}

func TestErrorMatching(t *testing.T) {
	id := uuid.New()

	t.Run("AccountNotFound", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", ErrAccountNotFound{AccountID: id})
		assert.True(t, errors.Is(err, ErrAccountNotFound{}))
		assert.True(t, errors.Is(err, ErrAccountNotFound{AccountID: id}))
		assert.False(t, errors.Is(err, ErrAccountNotFound{AccountID: uuid.New()}))
		assert.False(t, errors.Is(err, ErrInactiveAccount{}))
	})

	t.Run("InactiveAccount", func(t *testing.T) {
		err := ErrInactiveAccount{AccountID: id}
		assert.ErrorIs(t, err, ErrInactiveAccount{})
		assert.Contains(t, err.Error(), id.String())
	})

	t.Run("DuplicateAccountType", func(t *testing.T) {
		err := ErrDuplicateAccountType{OwnerID: id, Type: TypeSavings}
		assert.ErrorIs(t, err, ErrDuplicateAccountType{})
		assert.ErrorIs(t, err, ErrDuplicateAccountType{OwnerID: id})
		assert.NotErrorIs(t, err, ErrDuplicateAccountType{OwnerID: id, Type: TypeChecking})
	})

	t.Run("ConcurrentModification", func(t *testing.T) {
		assert.ErrorIs(t, ErrConcurrentModification{AccountID: id}, ErrConcurrentModification{})
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := ErrAllocationFailed{Attempts: 10}
		assert.ErrorIs(t, err, ErrAllocationExhausted)
		assert.Contains(t, err.Error(), "after 10 attempts")
	})
}
