package core

import (
	"context"
	"log/slog"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/google/uuid"
)

// AccountStoreImpl implements the AccountStore interface
type AccountStoreImpl struct {
	store     uow.Store
	allocator NumberAllocator
	logger    *slog.Logger
}

// NewAccountStore creates a new account store
func NewAccountStore(logger *slog.Logger, store uow.Store, allocator NumberAllocator) AccountStore {
	return &AccountStoreImpl{
		store:     store,
		allocator: allocator,
		logger:    logger,
	}
}

// CreateAccount allocates an account number and inserts the account in one
// write. A duplicate (owner, type) surfaces from that write and is not retried.
func (s *AccountStoreImpl) CreateAccount(ctx context.Context, ownerID uuid.UUID, accountType account.Type) (*account.Account, error) {
	if ownerID == uuid.Nil {
		return nil, account.ErrEmptyOwner
	}
	if !accountType.Valid() {
		return nil, account.ErrInvalidAccountType
	}

	var created *account.Account
	_, err := s.allocator.Allocate(ctx, func(ctx context.Context, number string) error {
		acc, err := account.NewAccount(ownerID, accountType, number)
		if err != nil {
			return err
		}
		if err := s.store.Accounts().Create(ctx, acc); err != nil {
			return err
		}
		created = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account created",
		"account_id", created.ID.String(),
		"owner_id", ownerID.String(),
		"account_type", string(accountType),
	)
	return created, nil
}

// GetAccountsForOwner lists the owner's accounts
func (s *AccountStoreImpl) GetAccountsForOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	accounts, err := s.store.Accounts().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*account.Account{}
	}
	return accounts, nil
}

// GetOwnedAccount retrieves an account only if ownerID holds it
func (s *AccountStoreImpl) GetOwnedAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*account.Account, error) {
	return s.store.Accounts().GetOwned(ctx, accountID, ownerID)
}

// SetAccountStatus toggles whether the account accepts funding
func (s *AccountStoreImpl) SetAccountStatus(ctx context.Context, ownerID, accountID uuid.UUID, status account.Status) (*account.Account, error) {
	if !status.Valid() {
		return nil, account.ErrInvalidStatus
	}

	acc, err := s.store.Accounts().UpdateStatus(ctx, accountID, ownerID, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account status changed", "account_id", accountID.String(), "status", string(status))
	return acc, nil
}
