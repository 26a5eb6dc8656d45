package outbox

import (
	"context"
	"fmt"

	"github.com/account-ledger/internal/domain/shared"
)

// Repository persists outbox messages. Create runs inside the funding unit of
// work; the relay uses the rest outside of it.
type Repository interface {
	Create(ctx context.Context, message *Message) error
	// GetPending returns up to limit PENDING messages, oldest first
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error
	IncrementAttempts(ctx context.Context, id int64) error
}

// ErrMessageNotFound is returned when no message has the id. A zero value
// matches any instance with errors.Is.
type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return fmt.Sprintf("outbox message not found: %d", e.ID)
}

func (e ErrMessageNotFound) Is(target error) bool {
	t, ok := target.(ErrMessageNotFound)
	return ok && (t.ID == 0 || t.ID == e.ID)
}

// ErrDuplicateMessage is returned when a ledger transaction already has its event
type ErrDuplicateMessage struct {
	TransactionID int64
}

func (e ErrDuplicateMessage) Error() string {
	return fmt.Sprintf("duplicate outbox message for transaction %d", e.TransactionID)
}

func (e ErrDuplicateMessage) Is(target error) bool {
	t, ok := target.(ErrDuplicateMessage)
	return ok && (t.TransactionID == 0 || t.TransactionID == e.TransactionID)
}
