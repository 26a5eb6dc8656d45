package mongo

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func testEvent() *shared.FundingEvent {
	return &shared.FundingEvent{
		EventID:       uuid.New(),
		EventType:     shared.EventTypeAccountFunded,
		TransactionID: 12,
		AccountID:     uuid.New(),
		OwnerID:       uuid.New(),
		AccountNumber: "1234567890",
		AccountType:   "savings",
		Amount:        5000,
		NewBalance:    15000,
		Description:   "Deposit from bank account (routing 021000021)",
		Source:        shared.FundingSource{Type: shared.FundingSourceBank, RoutingNumber: "021000021"},
		CorrelationID: "corr-9",
		OccurredAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestNewFundingEventRepository(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db := &mongo.Database{}

	repo := NewFundingEventRepository(logger, db)

	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestDocumentRoundTrip(t *testing.T) {
	event := testEvent()
	archivedAt := time.Now().UTC()

	doc := toDocument(event, archivedAt)
	assert.Equal(t, event.AccountID.String(), doc.AccountID)
	assert.Equal(t, archivedAt, doc.ArchivedAt)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var decoded fundingEventDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	back, err := decoded.toEvent()
	require.NoError(t, err)
	assert.Equal(t, event.EventID, back.EventID)
	assert.Equal(t, event.AccountID, back.AccountID)
	assert.Equal(t, event.Source, back.Source)
	assert.True(t, event.OccurredAt.Equal(back.OccurredAt))
}

func TestDocument_InvalidIDs(t *testing.T) {
	doc := toDocument(testEvent(), time.Now())
	doc.AccountID = "not-a-uuid"
	_, err := doc.toEvent()
	assert.ErrorContains(t, err, "invalid account_id")
}

func TestArchiveUpsertIsInsertOnly(t *testing.T) {
	doc := toDocument(testEvent(), time.Now())

	assert.Equal(t, bson.M{"transaction_id": int64(12)}, archiveFilter(12))
	update := archiveUpdate(doc)
	require.Len(t, update, 1)
	assert.Contains(t, update, "$setOnInsert")
}
