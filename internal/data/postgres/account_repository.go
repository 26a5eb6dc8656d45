// Package postgres provides PostgreSQL implementations of the domain repositories.
// Uniqueness and balance arithmetic are left to the database so that
// concurrent callers are serialized by constraints and row locks.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, owner_id, account_number, account_type, balance, status, version, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be the pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) *AccountRepository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.OwnerID,
		&acc.AccountNumber,
		&acc.Type,
		&acc.Balance,
		&acc.Status,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Create inserts the account. The unique constraints decide between a taken
// account number and a second account of the same type.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.OwnerID,
		acc.AccountNumber,
		string(acc.Type),
		acc.Balance,
		string(acc.Status),
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case constraintAccountNumber:
				return account.ErrAccountNumberTaken
			case constraintOwnerType:
				return account.ErrDuplicateAccountType{OwnerID: acc.OwnerID, Type: acc.Type}
			}
		}
		r.logger.Error("Failed to create account", "owner_id", acc.OwnerID.String(), "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetOwned retrieves an account by ID scoped to its owner
func (r *AccountRepository) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND owner_id = $2
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// ListByOwner returns the owner's accounts in creation order
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = $1
		ORDER BY created_at ASC, account_type ASC
	`

	rows, err := r.querier.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to list accounts", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*account.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account", "error", err)
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over accounts", "error", err)
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

// IncrementBalance applies the delta in the UPDATE itself. The statement takes
// the row lock, so concurrent increments of one account queue behind each
// other and each sees the committed balance of the previous one.
func (r *AccountRepository) IncrementBalance(ctx context.Context, id, ownerID uuid.UUID, amount int64) (*account.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3 AND status = 'active'
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, amount, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.explainUnmatched(ctx, id, ownerID)
		}
		if isConflict(err) {
			return nil, account.ErrConcurrentModification{AccountID: id}
		}
		if isOutOfRange(err) {
			return nil, account.ErrBalanceOverflow{AccountID: id}
		}
		r.logger.Error("Failed to increment account balance", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to increment account balance: %w", err)
	}

	return acc, nil
}

// explainUnmatched tells a missing or foreign account apart from an inactive one
func (r *AccountRepository) explainUnmatched(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `
		SELECT status
		FROM accounts
		WHERE id = $1 AND owner_id = $2
	`

	var status account.Status
	err := r.querier.QueryRow(ctx, query, id, ownerID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to read account status", "id", id.String(), "error", err)
		return fmt.Errorf("failed to read account status: %w", err)
	}

	if status != account.StatusActive {
		return account.ErrInactiveAccount{AccountID: id}
	}
	// Reactivated between the two statements
	return account.ErrConcurrentModification{AccountID: id}
}

// UpdateStatus sets the account status and returns the updated row
func (r *AccountRepository) UpdateStatus(ctx context.Context, id, ownerID uuid.UUID, status account.Status) (*account.Account, error) {
	query := `
		UPDATE accounts
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, string(status), id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		if isConflict(err) {
			return nil, account.ErrConcurrentModification{AccountID: id}
		}
		r.logger.Error("Failed to update account status", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to update account status: %w", err)
	}

	return acc, nil
}
