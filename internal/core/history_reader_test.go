package core

import (
	"context"
	"testing"

	"github.com/account-ledger/internal/domain/account"
	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryReader_ListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("FundTwiceNewestFirst", func(t *testing.T) {
		f := newLedgerFixture(t)

		first, err := f.fund(10000)
		require.NoError(t, err)
		second, err := f.fund(5000)
		require.NoError(t, err)
		assert.Equal(t, int64(15000), second.NewBalance)
		assert.Equal(t, "150.00", shared.FormatMinorUnits(f.balance(t)))

		txs, err := f.history.ListTransactions(ctx, f.owner, f.account.ID)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, second.Transaction.ID, txs[0].ID)
		assert.Equal(t, int64(5000), txs[0].Amount)
		assert.Equal(t, first.Transaction.ID, txs[1].ID)
		assert.Equal(t, int64(10000), txs[1].Amount)
		for _, tx := range txs {
			assert.Equal(t, account.TypeChecking, tx.AccountType)
		}
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		f := newLedgerFixture(t)
		txs, err := f.history.ListTransactions(ctx, f.owner, f.account.ID)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("OtherOwnerNotFound", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.fund(100)
		require.NoError(t, err)

		txs, err := f.history.ListTransactions(ctx, uuid.New(), f.account.ID)
		assert.ErrorIs(t, err, account.ErrAccountNotFound{AccountID: f.account.ID})
		assert.Nil(t, txs)
	})

	t.Run("OnlyThisAccount", func(t *testing.T) {
		f := newLedgerFixture(t)
		savings, err := f.accounts.CreateAccount(ctx, f.owner, account.TypeSavings)
		require.NoError(t, err)
		_, err = f.fund(100)
		require.NoError(t, err)
		_, err = f.engine.Fund(ctx, &FundRequest{AccountID: savings.ID, OwnerID: f.owner, Amount: 300, Source: testCard})
		require.NoError(t, err)

		txs, err := f.history.ListTransactions(ctx, f.owner, savings.ID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, account.TypeSavings, txs[0].AccountType)
		assert.Equal(t, int64(300), txs[0].Amount)
	})
}
