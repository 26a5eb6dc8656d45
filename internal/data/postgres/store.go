package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/account-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// Store implements uow.Store on top of a PostgreSQL pool
type Store struct {
	db           *persistence.PostgresDB
	accounts     *AccountRepository
	transactions *TransactionRepository
	outbox       *OutboxRepository
	logger       *slog.Logger
}

var _ uow.Store = (*Store)(nil)

// NewStore creates a store whose auto-commit repositories use the pool
func NewStore(logger *slog.Logger, db *persistence.PostgresDB) *Store {
	return &Store{
		db:           db,
		accounts:     NewAccountRepository(logger, db),
		transactions: NewTransactionRepository(logger, db),
		outbox:       NewOutboxRepository(logger, db),
		logger:       logger,
	}
}

func (s *Store) Accounts() account.Repository {
	return s.accounts
}

func (s *Store) Transactions() ledger.Repository {
	return s.transactions
}

func (s *Store) Outbox() outbox.Repository {
	return s.outbox
}

// ExecuteTx runs fn in one database transaction. Serialization failures and
// deadlocks reported at commit are surfaced as ErrConcurrentModification so
// callers can re-run the unit.
func (s *Store) ExecuteTx(ctx context.Context, fn func(repos uow.Repositories) error) error {
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return fn(&txRepositories{
			accounts:     s.accounts.WithTx(tx),
			transactions: s.transactions.WithTx(tx),
			outbox:       s.outbox.WithTx(tx),
		})
	})
	if err != nil && isConflict(err) {
		s.logger.Warn("Unit of work aborted by concurrent writer", "error", err)
		return fmt.Errorf("%w: %w", account.ErrConcurrentModification{}, err)
	}
	return err
}

type txRepositories struct {
	accounts     account.Repository
	transactions ledger.Repository
	outbox       outbox.Repository
}

func (r *txRepositories) Accounts() account.Repository {
	return r.accounts
}

func (r *txRepositories) Transactions() ledger.Repository {
	return r.transactions
}

func (r *txRepositories) Outbox() outbox.Repository {
	return r.outbox
}
