package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/account-ledger/internal/domain/ledger"
	"github.com/google/uuid"
)

// TransactionRepository implements ledger.Repository over the in-memory state
type TransactionRepository struct {
	view view
}

func (r *TransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	return r.view.write(func(st *state) error {
		if tx.IdempotencyKey != "" {
			if _, ok := st.idempotency[tx.IdempotencyKey]; ok {
				return ledger.ErrDuplicateTransaction{IdempotencyKey: tx.IdempotencyKey}
			}
		}

		tx.ID = st.nextTxID
		tx.CreatedAt = time.Now().UTC()
		st.nextTxID++

		stored := *tx
		st.transactions = append(st.transactions, &stored)
		if tx.IdempotencyKey != "" {
			st.idempotency[tx.IdempotencyKey] = tx.ID
		}
		return nil
	})
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Transaction, error) {
	txs := []*ledger.Transaction{}
	err := r.view.read(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.AccountID == accountID {
				cp := *tx
				txs = append(txs, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(txs, func(a, b *ledger.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return txs, nil
}
