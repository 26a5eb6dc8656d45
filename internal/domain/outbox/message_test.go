package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent() *shared.FundingEvent {
	return &shared.FundingEvent{
		EventID:       uuid.New(),
		EventType:     shared.EventTypeAccountFunded,
		TransactionID: 42,
		AccountID:     uuid.New(),
		OwnerID:       uuid.New(),
		AccountNumber: "1234567890",
		AccountType:   "checking",
		Amount:        10000,
		NewBalance:    15000,
		Description:   "Deposit from card ending in 4242",
		Source:        shared.FundingSource{Type: shared.FundingSourceCard, CardLast4: "4242"},
		OccurredAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestNewMessage(t *testing.T) {
	t.Run("NilEvent", func(t *testing.T) {
		_, err := NewMessage(nil)
		assert.Error(t, err)
	})

	t.Run("SuccessfulCreation", func(t *testing.T) {
		event := newTestEvent()

		beforeCreation := time.Now()
		msg, err := NewMessage(event)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, msg)

		assert.Equal(t, event.TransactionID, msg.TransactionID)
		assert.Equal(t, event.AccountID, msg.AccountID)
		assert.Equal(t, shared.EventTypeAccountFunded, msg.EventType)
		assert.Equal(t, shared.OutboxStatusPending, msg.Status)
		assert.Equal(t, 0, msg.Attempts)
		assert.Nil(t, msg.LastAttemptAt)
		assert.WithinDuration(t, beforeCreation, msg.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)

		var decoded shared.FundingEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, event.TransactionID, decoded.TransactionID)
		assert.Equal(t, event.NewBalance, decoded.NewBalance)
	})
}

func TestMessage_IncrementAttempts(t *testing.T) {
	initialTime := time.Now().Add(-time.Hour)
	msg := &Message{
		Attempts:      1,
		LastAttemptAt: &initialTime,
	}

	msg.IncrementAttempts()

	assert.Equal(t, 2, msg.Attempts)
	require.NotNil(t, msg.LastAttemptAt)
	assert.True(t, msg.LastAttemptAt.After(initialTime))
}

func TestMessage_SetStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    shared.OutboxStatus
		to      shared.OutboxStatus
		wantErr bool
	}{
		{"PendingToProcessed", shared.OutboxStatusPending, shared.OutboxStatusProcessed, false},
		{"PendingToFailed", shared.OutboxStatusPending, shared.OutboxStatusFailedToPublish, false},
		{"ProcessedIsIdempotent", shared.OutboxStatusProcessed, shared.OutboxStatusProcessed, false},
		{"ProcessedBackToPending", shared.OutboxStatusProcessed, shared.OutboxStatusPending, true},
		{"FailedToProcessed", shared.OutboxStatusFailedToPublish, shared.OutboxStatusProcessed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{ID: 7, Status: tt.from}

			err := msg.SetStatus(tt.to)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.from, msg.Status)
				assert.Nil(t, msg.LastAttemptAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, msg.Status)
			assert.NotNil(t, msg.LastAttemptAt)
		})
	}
}

func TestMessage_AttemptsExhausted(t *testing.T) {
	msg := &Message{Attempts: 1}
	assert.False(t, msg.AttemptsExhausted(3))

	msg.IncrementAttempts()
	assert.True(t, msg.AttemptsExhausted(3))
}

func TestMessage_FundingEvent(t *testing.T) {
	t.Run("SuccessfulDecode", func(t *testing.T) {
		original := newTestEvent()
		payload, err := json.Marshal(original)
		require.NoError(t, err)

		msg := &Message{Payload: payload}
		decoded, err := msg.FundingEvent()

		require.NoError(t, err)
		assert.Equal(t, original.EventID, decoded.EventID)
		assert.Equal(t, original.Source, decoded.Source)
		assert.True(t, original.OccurredAt.Equal(decoded.OccurredAt), "OccurredAt should match")
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		msg := &Message{Payload: json.RawMessage(`{not json`)}
		_, err := msg.FundingEvent()
		assert.Error(t, err)
	})
}
