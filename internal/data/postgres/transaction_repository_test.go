package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	query := `INSERT INTO transactions \(account_id, type, amount, description, status, idempotency_key, correlation_id, processed_at\)`

	newTx := func(key string) *ledger.Transaction {
		tx, err := ledger.NewDeposit(uuid.New(), 10000, "Deposit from card ending in 4242", key, "corr-1")
		require.NoError(t, err)
		return tx
	}

	t.Run("success", func(t *testing.T) {
		tx := newTx("key-1")
		createdAt := time.Now().UTC()
		key, corr := "key-1", "corr-1"
		mock.ExpectQuery(query).
			WithArgs(tx.AccountID, "deposit", int64(10000), tx.Description, "completed", &key, &corr, tx.ProcessedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(41), createdAt))

		require.NoError(t, repo.Create(ctx, tx))
		assert.Equal(t, int64(41), tx.ID)
		assert.Equal(t, createdAt, tx.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no idempotency key stores null", func(t *testing.T) {
		tx := newTx("")
		corr := "corr-1"
		mock.ExpectQuery(query).
			WithArgs(tx.AccountID, "deposit", int64(10000), tx.Description, "completed", (*string)(nil), &corr, tx.ProcessedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), time.Now().UTC()))

		require.NoError(t, repo.Create(ctx, tx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate idempotency key", func(t *testing.T) {
		tx := newTx("key-1")
		mock.ExpectQuery(query).
			WillReturnError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintIdempotencyKey})

		err := repo.Create(ctx, tx)
		assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction{IdempotencyKey: "key-1"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict", func(t *testing.T) {
		tx := newTx("")
		mock.ExpectQuery(query).WillReturnError(&pgconn.PgError{Code: codeSerializationFailure})

		err := repo.Create(ctx, tx)
		assert.ErrorIs(t, err, account.ErrConcurrentModification{AccountID: tx.AccountID})
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("disk full")
		mock.ExpectQuery(query).WillReturnError(dbErr)

		err := repo.Create(ctx, newTx(""))
		assert.ErrorIs(t, err, dbErr)
		assert.ErrorContains(t, err, "failed to create transaction")
	})
}

func TestTransactionRepository_ListByAccount(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	accID := uuid.New()
	query := `WHERE account_id = \$1\s+ORDER BY created_at DESC, id DESC`
	columns := []string{"id", "account_id", "type", "amount", "description", "status", "idempotency_key", "correlation_id", "created_at", "processed_at"}

	t.Run("newest first", func(t *testing.T) {
		later := time.Now().UTC()
		earlier := later.Add(-time.Minute)
		rows := pgxmock.NewRows(columns).
			AddRow(int64(2), accID, shared.TransactionTypeDeposit, int64(5000), "second", shared.TransactionStatusCompleted, "", "", later, &later).
			AddRow(int64(1), accID, shared.TransactionTypeDeposit, int64(10000), "first", shared.TransactionStatusCompleted, "k", "c", earlier, &earlier)
		mock.ExpectQuery(query).WithArgs(accID).WillReturnRows(rows)

		txs, err := repo.ListByAccount(ctx, accID)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, int64(2), txs[0].ID)
		assert.Equal(t, int64(5000), txs[0].Amount)
		assert.Equal(t, int64(1), txs[1].ID)
		assert.Equal(t, "k", txs[1].IdempotencyKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnRows(pgxmock.NewRows(columns))

		txs, err := repo.ListByAccount(ctx, accID)
		require.NoError(t, err)
		assert.NotNil(t, txs)
		assert.Empty(t, txs)
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(errors.New("timeout"))

		_, err := repo.ListByAccount(ctx, accID)
		assert.ErrorContains(t, err, "failed to list transactions")
	})
}
