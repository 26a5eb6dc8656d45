// Package uow defines the unit of work shared by the ledger core and the
// storage backends that implement it.
package uow

import (
	"context"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/outbox"
)

// Repositories groups the repositories bound to one connection or transaction
type Repositories interface {
	Accounts() account.Repository
	Transactions() ledger.Repository
	Outbox() outbox.Repository
}

// Store exposes auto-commit repositories and runs units of work.
// ExecuteTx commits when fn returns nil and rolls back otherwise, so every
// write made through the supplied Repositories lands together or not at all.
type Store interface {
	Repositories
	ExecuteTx(ctx context.Context, fn func(repos Repositories) error) error
}
