package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the ledger.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) *TransactionRepository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *TransactionRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserts the transaction. The identity column and clock_timestamp()
// default give ids and timestamps that follow commit-time creation order.
func (r *TransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, type, amount, description, status, idempotency_key, correlation_id, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.querier.QueryRow(ctx, query,
		tx.AccountID,
		string(tx.Type),
		tx.Amount,
		tx.Description,
		string(tx.Status),
		nullableString(tx.IdempotencyKey),
		nullableString(tx.CorrelationID),
		tx.ProcessedAt,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintIdempotencyKey {
			return ledger.ErrDuplicateTransaction{IdempotencyKey: tx.IdempotencyKey}
		}
		if isConflict(err) {
			return account.ErrConcurrentModification{AccountID: tx.AccountID}
		}
		r.logger.Error("Failed to create transaction", "account_id", tx.AccountID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// ListByAccount returns the account's transactions newest first
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Transaction, error) {
	query := `
		SELECT id, account_id, type, amount, description, status,
		       COALESCE(idempotency_key, ''), COALESCE(correlation_id, ''), created_at, processed_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []*ledger.Transaction{}
	for rows.Next() {
		var tx ledger.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.Type,
			&tx.Amount,
			&tx.Description,
			&tx.Status,
			&tx.IdempotencyKey,
			&tx.CorrelationID,
			&tx.CreatedAt,
			&tx.ProcessedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txs, nil
}
