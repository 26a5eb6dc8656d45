package memory

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/account-ledger/internal/domain/account"
	"github.com/google/uuid"
)

// AccountRepository implements account.Repository over the in-memory state
type AccountRepository struct {
	view view
}

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	return r.view.write(func(st *state) error {
		if _, ok := st.ownerTypes[ownerType{acc.OwnerID, acc.Type}]; ok {
			return account.ErrDuplicateAccountType{OwnerID: acc.OwnerID, Type: acc.Type}
		}
		if _, ok := st.numbers[acc.AccountNumber]; ok {
			return account.ErrAccountNumberTaken
		}

		stored := *acc
		st.accounts[acc.ID] = &stored
		st.numbers[acc.AccountNumber] = acc.ID
		st.ownerTypes[ownerType{acc.OwnerID, acc.Type}] = acc.ID
		return nil
	})
}

func (r *AccountRepository) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*account.Account, error) {
	var found account.Account
	err := r.view.read(func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok || !acc.OwnedBy(ownerID) {
			return account.ErrAccountNotFound{AccountID: id}
		}
		found = *acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	accounts := []*account.Account{}
	err := r.view.read(func(st *state) error {
		for _, acc := range st.accounts {
			if acc.OwnedBy(ownerID) {
				cp := *acc
				accounts = append(accounts, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(accounts, func(a, b *account.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.Type), string(b.Type))
	})
	return accounts, nil
}

func (r *AccountRepository) IncrementBalance(ctx context.Context, id, ownerID uuid.UUID, amount int64) (*account.Account, error) {
	var updated account.Account
	err := r.view.write(func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok || !acc.OwnedBy(ownerID) {
			return account.ErrAccountNotFound{AccountID: id}
		}
		if !acc.IsActive() {
			return account.ErrInactiveAccount{AccountID: id}
		}

		if amount > math.MaxInt64-acc.Balance {
			return account.ErrBalanceOverflow{AccountID: id}
		}

		updated = *acc
		updated.Balance += amount
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()
		stored := updated
		st.accounts[id] = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id, ownerID uuid.UUID, status account.Status) (*account.Account, error) {
	var updated account.Account
	err := r.view.write(func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok || !acc.OwnedBy(ownerID) {
			return account.ErrAccountNotFound{AccountID: id}
		}

		updated = *acc
		updated.Status = status
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()
		stored := updated
		st.accounts[id] = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
