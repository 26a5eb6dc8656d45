package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/account-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const outboxColumns = `id, transaction_id, account_id, event_type, payload, status, attempts, created_at, last_attempt_at`

// OutboxRepository stores funding events in transaction_outbox
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) *OutboxRepository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx binds the repository to tx so a message commits with its funding
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{querier: tx, logger: r.logger}
}

func scanMessage(row pgx.Row) (*outbox.Message, error) {
	var m outbox.Message
	if err := row.Scan(
		&m.ID, &m.TransactionID, &m.AccountID, &m.EventType, &m.Payload,
		&m.Status, &m.Attempts, &m.CreatedAt, &m.LastAttemptAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts message and sets its ID. A second message for the same
// ledger transaction is rejected with ErrDuplicateMessage.
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	const query = `
		INSERT INTO transaction_outbox (transaction_id, account_id, event_type, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		message.TransactionID,
		message.AccountID,
		message.EventType,
		message.Payload,
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)
	if err == nil {
		return nil
	}

	if constraint, ok := uniqueViolation(err); ok && constraint == constraintOutboxTransaction {
		return outbox.ErrDuplicateMessage{TransactionID: message.TransactionID}
	}
	if isConflict(err) {
		return err
	}
	r.logger.Error("Failed to create outbox message",
		"transaction_id", message.TransactionID,
		"error", err,
	)
	return fmt.Errorf("failed to create outbox message: %w", err)
}

// GetPending returns up to limit pending messages, oldest first
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	const query = `
		SELECT ` + outboxColumns + `
		FROM transaction_outbox
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, shared.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to query pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed reading pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to read pending outbox messages: %w", err)
	}
	return messages, nil
}

// UpdateStatus moves a message to status. Terminal messages keep their state;
// re-applying the same status is a no-op success.
func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	const query = `
		UPDATE transaction_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3 AND (status = $4 OR status = $1)
	`

	result, err := r.querier.Exec(ctx, query, status, time.Now().UTC(), id, shared.OutboxStatusPending)
	if err != nil {
		r.logger.Error("Failed to update outbox message status",
			"id", id,
			"status", string(status),
			"error", err,
		)
		return fmt.Errorf("failed to update outbox message status: %w", err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	var current shared.OutboxStatus
	err = r.querier.QueryRow(ctx, `SELECT status FROM transaction_outbox WHERE id = $1`, id).Scan(&current)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return outbox.ErrMessageNotFound{ID: id}
	case err != nil:
		return fmt.Errorf("failed to read outbox message status: %w", err)
	}
	return fmt.Errorf("outbox message %d: cannot move from %s to %s", id, current, status)
}

// IncrementAttempts records one failed relay of message id
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	const query = `
		UPDATE transaction_outbox
		SET attempts = attempts + 1, last_attempt_at = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to increment outbox message attempts", "id", id, "error", err)
		return fmt.Errorf("failed to increment outbox message attempts: %w", err)
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}
