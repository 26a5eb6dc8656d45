package core

import (
	"context"
	"log/slog"

	"github.com/account-ledger/internal/domain/ledger"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/google/uuid"
)

// HistoryReaderImpl implements the HistoryReader interface
type HistoryReaderImpl struct {
	store  uow.Store
	logger *slog.Logger
}

// NewHistoryReader creates a new history reader
func NewHistoryReader(logger *slog.Logger, store uow.Store) HistoryReader {
	return &HistoryReaderImpl{
		store:  store,
		logger: logger,
	}
}

// ListTransactions checks ownership first, then reads the account's
// committed transactions newest first and tags each with the account type
func (r *HistoryReaderImpl) ListTransactions(ctx context.Context, ownerID, accountID uuid.UUID) ([]*ledger.EnrichedTransaction, error) {
	acc, err := r.store.Accounts().GetOwned(ctx, accountID, ownerID)
	if err != nil {
		return nil, err
	}

	txs, err := r.store.Transactions().ListByAccount(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	enriched := make([]*ledger.EnrichedTransaction, 0, len(txs))
	for _, tx := range txs {
		enriched = append(enriched, tx.Enrich(acc.Type))
	}

	r.logger.Debug("Listed transactions", "account_id", accountID.String(), "count", len(enriched))
	return enriched, nil
}
