package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Message is one funding event awaiting relay. It commits together with the
// ledger transaction it describes, so an event exists iff the funding does.
type Message struct {
	ID            int64               `json:"id"`
	TransactionID int64               `json:"transaction_id"`
	AccountID     uuid.UUID           `json:"account_id"`
	EventType     string              `json:"event_type"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event *shared.FundingEvent) (*Message, error) {
	if event == nil {
		return nil, fmt.Errorf("outbox: nil funding event")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("outbox: encode %s event: %w", event.EventType, err)
	}

	return &Message{
		TransactionID: event.TransactionID,
		AccountID:     event.AccountID,
		EventType:     event.EventType,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// IncrementAttempts records one failed relay
func (m *Message) IncrementAttempts() {
	m.Attempts++
	m.touch()
}

// SetStatus moves the message to status. PROCESSED and FAILED_TO_PUBLISH are
// terminal; leaving them is rejected.
func (m *Message) SetStatus(status shared.OutboxStatus) error {
	if m.Status != status && m.Status.Terminal() {
		return fmt.Errorf("outbox message %d: cannot move from %s to %s", m.ID, m.Status, status)
	}
	m.Status = status
	m.touch()
	return nil
}

// AttemptsExhausted reports whether one more failure would use up maxAttempts
func (m *Message) AttemptsExhausted(maxAttempts int) bool {
	return m.Attempts+1 >= maxAttempts
}

func (m *Message) touch() {
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

// FundingEvent decodes the event from the payload
func (m *Message) FundingEvent() (*shared.FundingEvent, error) {
	var event shared.FundingEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
