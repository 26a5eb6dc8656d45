package outbox_poller

import (
	"context"
	"testing"
	"time"

	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOutboxRepo mocks outbox.Repository
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockPublisher mocks producers.MessagePublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// MockArchive mocks EventArchive
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Archive(ctx context.Context, event *shared.FundingEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockArchive) GetByTransactionID(ctx context.Context, transactionID int64) (*shared.FundingEvent, error) {
	args := m.Called(ctx, transactionID)
	event, _ := args.Get(0).(*shared.FundingEvent)
	return event, args.Error(1)
}

// MockEventRelay mocks EventRelay
type MockEventRelay struct {
	mock.Mock
}

func (m *MockEventRelay) Relay(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func pendingMessage(t *testing.T, id int64, attempts int) *outbox.Message {
	t.Helper()
	msg, err := outbox.NewMessage(&shared.FundingEvent{
		EventID:       uuid.New(),
		EventType:     shared.EventTypeAccountFunded,
		TransactionID: id * 10,
		AccountID:     uuid.New(),
		OwnerID:       uuid.New(),
		Amount:        5000,
		NewBalance:    5000,
		CorrelationID: "corr-outbox",
		OccurredAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	msg.ID = id
	msg.Attempts = attempts
	return msg
}

