package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/account-ledger/internal/platform/messaging/producers"
)

// EventRelay delivers one outbox message to its downstream consumers
type EventRelay interface {
	Relay(ctx context.Context, message *outbox.Message) error
}

// EventArchive keeps a durable copy of delivered funding events
type EventArchive interface {
	Archive(ctx context.Context, event *shared.FundingEvent) error
	GetByTransactionID(ctx context.Context, transactionID int64) (*shared.FundingEvent, error)
}

// EventRelayImpl publishes funding events to Kafka and archives them
type EventRelayImpl struct {
	outboxRepo outbox.Repository
	publisher  producers.MessagePublisher
	archive    EventArchive
	logger     *slog.Logger
}

// NewEventRelay creates a new relay. archive may be nil to skip archiving.
func NewEventRelay(
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
	archive EventArchive,
	logger *slog.Logger,
) EventRelay {
	return &EventRelayImpl{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		archive:    archive,
		logger:     logger,
	}
}

// Relay publishes the event keyed by account id, archives it and marks the
// message PROCESSED. A failure before the status update leaves the message
// pending; both downstream writes tolerate the resulting redelivery. An event
// already in the archive was published by an earlier attempt, so only the
// status update is repeated.
func (r *EventRelayImpl) Relay(ctx context.Context, message *outbox.Message) error {
	event, err := message.FundingEvent()
	if err != nil {
		r.logger.Error("Failed to decode funding event from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			r.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error",
				"outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	archived, err := r.alreadyArchived(ctx, event.TransactionID)
	if err != nil {
		return err
	}

	if archived {
		r.logger.Info("Funding event already archived, skipping publish",
			"outbox_id", message.ID, "transaction_id", event.TransactionID)
	} else {
		if err := r.publisher.Publish(ctx, event.AccountID.String(), event); err != nil {
			return fmt.Errorf("failed to publish funding event %d: %w", event.TransactionID, err)
		}

		if r.archive != nil {
			if err := r.archive.Archive(ctx, event); err != nil {
				return fmt.Errorf("failed to archive funding event %d: %w", event.TransactionID, err)
			}
		}
	}

	if err := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		r.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event %d delivered, but failed to mark outbox %d as PROCESSED: %w", event.TransactionID, message.ID, err)
	}

	return nil
}

func (r *EventRelayImpl) alreadyArchived(ctx context.Context, transactionID int64) (bool, error) {
	if r.archive == nil {
		return false, nil
	}
	_, err := r.archive.GetByTransactionID(ctx, transactionID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrEventNotArchived):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up archived funding event %d: %w", transactionID, err)
	}
}
