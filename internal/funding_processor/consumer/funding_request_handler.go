package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/account-ledger/internal/funding_processor/service"
	"github.com/account-ledger/internal/platform/messaging/producers"
)

// FundingRequestHandler handles incoming funding request messages from Kafka
type FundingRequestHandler struct {
	fundingService service.FundingService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewFundingRequestHandler creates a new handler. producer may be nil when
// the DLQ is disabled; rejected messages are then left uncommitted.
func NewFundingRequestHandler(
	logger *slog.Logger,
	fundingService service.FundingService,
	producer producers.DeadLetterPublisher,
) *FundingRequestHandler {
	return &FundingRequestHandler{
		fundingService: fundingService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes one Kafka message. A nil return commits the offset:
// on success, on duplicates, and once a rejected message is parked on the DLQ.
func (h *FundingRequestHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.FundingRequest
	if err := json.Unmarshal(value, &request); err != nil {
		h.logger.Error("Failed to unmarshal funding request from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.reject(ctx, key, value, service.RejectMalformed, fmt.Errorf("malformed funding request: %w", err))
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received funding request",
		"request_id", request.RequestID.String(),
		"account_id", request.AccountID.String(),
		"amount", request.Amount,
		"source", request.Source.Type,
	)

	err := h.fundingService.ProcessFunding(ctx, &request)
	if err == nil {
		return nil
	}
	if errors.Is(err, ledger.ErrDuplicateTransaction{}) {
		logger.Info("Funding request already applied, acknowledging", "request_id", request.RequestID.String())
		return nil
	}
	if kind, permanent := service.RejectionKind(err); permanent {
		return h.reject(ctx, key, value, kind, err)
	}

	logger.Error("Failed to process funding request",
		"request_id", request.RequestID.String(),
		"error", err,
	)
	return fmt.Errorf("processing funding request %s failed: %w", request.RequestID.String(), err)
}

// GiveUp dead-letters a message the consumer has stopped retrying. It is
// installed as the consumer's give-up hook.
func (h *FundingRequestHandler) GiveUp(ctx context.Context, key, value []byte, cause error) error {
	return h.reject(ctx, key, value, service.RejectRetriesExhausted, cause)
}

// reject parks the message on the DLQ. The offset is only committed when the
// DLQ write succeeds.
func (h *FundingRequestHandler) reject(ctx context.Context, key, value []byte, kind string, cause error) error {
	if h.producer == nil {
		return cause
	}

	letter := producers.DeadLetter{Key: key, Value: value, Kind: kind, Reason: cause.Error()}
	if dlqErr := h.producer.PublishToDLQ(ctx, letter); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("%w (dlq publish failed: %v)", cause, dlqErr)
	}

	h.logger.Warn("Rejected funding request sent to DLQ", "message_key", string(key), "kind", kind, "reason", cause.Error())
	return nil
}
