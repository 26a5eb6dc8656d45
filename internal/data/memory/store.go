// Package memory provides an in-process implementation of the ledger store.
// It enforces the same uniqueness and status rules as the PostgreSQL schema
// and serves tests and single-node local runs.
package memory

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/google/uuid"
)

type ownerType struct {
	ownerID uuid.UUID
	typ     account.Type
}

// state is the full store contents. Stored records are never mutated in
// place; updates replace them with a modified copy, so a shallow clone is a
// consistent snapshot.
type state struct {
	accounts     map[uuid.UUID]*account.Account
	numbers      map[string]uuid.UUID
	ownerTypes   map[ownerType]uuid.UUID
	transactions []*ledger.Transaction
	idempotency  map[string]int64
	outbox       []*outbox.Message
	nextTxID     int64
	nextOutboxID int64
}

func newState() *state {
	return &state{
		accounts:     make(map[uuid.UUID]*account.Account),
		numbers:      make(map[string]uuid.UUID),
		ownerTypes:   make(map[ownerType]uuid.UUID),
		idempotency:  make(map[string]int64),
		nextTxID:     1,
		nextOutboxID: 1,
	}
}

func (s *state) clone() *state {
	return &state{
		accounts:     maps.Clone(s.accounts),
		numbers:      maps.Clone(s.numbers),
		ownerTypes:   maps.Clone(s.ownerTypes),
		transactions: slices.Clone(s.transactions),
		idempotency:  maps.Clone(s.idempotency),
		outbox:       slices.Clone(s.outbox),
		nextTxID:     s.nextTxID,
		nextOutboxID: s.nextOutboxID,
	}
}

// Store is a mutex guarded ledger store. A unit of work holds the write lock
// for its whole duration and works on a snapshot that replaces the live state
// only on commit.
type Store struct {
	mu     sync.RWMutex
	state  *state
	logger *slog.Logger
}

var _ uow.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		state:  newState(),
		logger: logger,
	}
}

func (s *Store) Accounts() account.Repository {
	return &AccountRepository{view: view{store: s}}
}

func (s *Store) Transactions() ledger.Repository {
	return &TransactionRepository{view: view{store: s}}
}

func (s *Store) Outbox() outbox.Repository {
	return &OutboxRepository{view: view{store: s}}
}

// ExecuteTx runs fn against a snapshot and publishes it if fn succeeds
func (s *Store) ExecuteTx(ctx context.Context, fn func(repos uow.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.state.clone()
	if err := fn(&txRepositories{view: view{store: s, tx: snapshot}}); err != nil {
		return err
	}

	// A cancelled context rolls back like a dropped connection would
	if err := ctx.Err(); err != nil {
		s.logger.Debug("Discarding unit of work after cancellation", "error", err)
		return err
	}

	s.state = snapshot
	return nil
}

type txRepositories struct {
	view view
}

func (r *txRepositories) Accounts() account.Repository {
	return &AccountRepository{view: r.view}
}

func (r *txRepositories) Transactions() ledger.Repository {
	return &TransactionRepository{view: r.view}
}

func (r *txRepositories) Outbox() outbox.Repository {
	return &OutboxRepository{view: r.view}
}

// view routes repository calls either to the live state under the store
// lock or to the snapshot of an open unit of work.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.state)
}

// write mutates the live state directly. Every write validates before it
// changes anything, so a failed single write leaves no trace.
func (v view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}
