package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to
const (
	codeUniqueViolation      = "23505"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Constraint names from migrations/postgres
const (
	constraintAccountNumber  = "accounts_account_number_key"
	constraintOwnerType      = "accounts_owner_type_key"
	constraintIdempotencyKey = "transactions_idempotency_key_key"

	constraintOutboxTransaction = "transaction_outbox_transaction_key"
)

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// uniqueViolation returns the violated constraint name, if err is a unique violation
func uniqueViolation(err error) (string, bool) {
	pgErr, ok := asPgError(err)
	if !ok || pgErr.Code != codeUniqueViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// isConflict reports whether the server aborted the transaction because of a
// concurrent writer; the whole unit of work may be re-run
func isConflict(err error) bool {
	pgErr, ok := asPgError(err)
	if !ok {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// isOutOfRange reports a bigint overflow raised by the server
func isOutOfRange(err error) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == codeNumericOutOfRange
}
