package core

import (
	"context"
	"log/slog"
	"os"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Accounts() account.Repository {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(account.Repository)
}

func (m *MockStore) Transactions() ledger.Repository {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(ledger.Repository)
}

func (m *MockStore) Outbox() outbox.Repository {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(outbox.Repository)
}

func (m *MockStore) ExecuteTx(ctx context.Context, fn func(repos uow.Repositories) error) error {
	args := m.Called(ctx, mock.Anything)
	return args.Error(0)
}

// conflictingStore fails the first units of work the way a serialization
// failure would, then delegates to the wrapped store
type conflictingStore struct {
	uow.Store
	conflicts int
	calls     int
}

func (s *conflictingStore) ExecuteTx(ctx context.Context, fn func(repos uow.Repositories) error) error {
	s.calls++
	if s.calls <= s.conflicts {
		return account.ErrConcurrentModification{}
	}
	return s.Store.ExecuteTx(ctx, fn)
}
