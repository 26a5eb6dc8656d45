// Package mongo archives published funding events in MongoDB so that they can
// be audited independently of the PostgreSQL ledger.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/account-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// FundingEventCollectionName is the name of the funding event collection in MongoDB
	FundingEventCollectionName = "funding_events"
)

// fundingEventDocument is the stored form of shared.FundingEvent. Identifiers
// are kept as strings so documents stay readable from the mongo shell.
type fundingEventDocument struct {
	EventID       string               `bson:"event_id"`
	EventType     string               `bson:"event_type"`
	TransactionID int64                `bson:"transaction_id"`
	AccountID     string               `bson:"account_id"`
	OwnerID       string               `bson:"owner_id"`
	AccountNumber string               `bson:"account_number"`
	AccountType   string               `bson:"account_type"`
	Amount        int64                `bson:"amount"`
	NewBalance    int64                `bson:"new_balance"`
	Description   string               `bson:"description"`
	Source        shared.FundingSource `bson:"funding_source"`
	CorrelationID string               `bson:"correlation_id,omitempty"`
	OccurredAt    time.Time            `bson:"occurred_at"`
	ArchivedAt    time.Time            `bson:"archived_at"`
}

func toDocument(event *shared.FundingEvent, archivedAt time.Time) fundingEventDocument {
	return fundingEventDocument{
		EventID:       event.EventID.String(),
		EventType:     event.EventType,
		TransactionID: event.TransactionID,
		AccountID:     event.AccountID.String(),
		OwnerID:       event.OwnerID.String(),
		AccountNumber: event.AccountNumber,
		AccountType:   event.AccountType,
		Amount:        event.Amount,
		NewBalance:    event.NewBalance,
		Description:   event.Description,
		Source:        event.Source,
		CorrelationID: event.CorrelationID,
		OccurredAt:    event.OccurredAt,
		ArchivedAt:    archivedAt,
	}
}

func (d fundingEventDocument) toEvent() (*shared.FundingEvent, error) {
	eventID, err := uuid.Parse(d.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event_id %q: %w", d.EventID, err)
	}
	accountID, err := uuid.Parse(d.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account_id %q: %w", d.AccountID, err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner_id %q: %w", d.OwnerID, err)
	}
	return &shared.FundingEvent{
		EventID:       eventID,
		EventType:     d.EventType,
		TransactionID: d.TransactionID,
		AccountID:     accountID,
		OwnerID:       ownerID,
		AccountNumber: d.AccountNumber,
		AccountType:   d.AccountType,
		Amount:        d.Amount,
		NewBalance:    d.NewBalance,
		Description:   d.Description,
		Source:        d.Source,
		CorrelationID: d.CorrelationID,
		OccurredAt:    d.OccurredAt,
	}, nil
}

// archiveFilter keys archived events by ledger transaction
func archiveFilter(transactionID int64) bson.M {
	return bson.M{"transaction_id": transactionID}
}

// archiveUpdate only writes on insert, so re-archiving a redelivered event is a no-op
func archiveUpdate(doc fundingEventDocument) bson.M {
	return bson.M{"$setOnInsert": doc}
}

// FundingEventRepository stores funding events in MongoDB
type FundingEventRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewFundingEventRepository creates a new MongoDB funding event repository
func NewFundingEventRepository(logger *slog.Logger, db *mongo.Database) *FundingEventRepository {
	return &FundingEventRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique transaction index
func (r *FundingEventRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(FundingEventCollectionName)
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_transaction_id"),
		},
	})
	if err != nil {
		r.logger.Error("Failed to create funding event indexes", "error", err)
		return fmt.Errorf("failed to create funding event indexes: %w", err)
	}
	return nil
}

// Archive upserts the event by transaction ID. Archiving the same event twice
// leaves a single document.
func (r *FundingEventRepository) Archive(ctx context.Context, event *shared.FundingEvent) error {
	collection := r.db.Collection(FundingEventCollectionName)

	doc := toDocument(event, time.Now().UTC())
	_, err := collection.UpdateOne(ctx,
		archiveFilter(event.TransactionID),
		archiveUpdate(doc),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.logger.Error("Failed to archive funding event",
			"transaction_id", event.TransactionID,
			"error", err)
		return fmt.Errorf("failed to archive funding event: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves the archived event of a ledger transaction. It
// returns shared.ErrEventNotArchived when none exists.
func (r *FundingEventRepository) GetByTransactionID(ctx context.Context, transactionID int64) (*shared.FundingEvent, error) {
	collection := r.db.Collection(FundingEventCollectionName)

	var doc fundingEventDocument
	err := collection.FindOne(ctx, archiveFilter(transactionID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrEventNotArchived
		}
		r.logger.Error("Failed to get funding event", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to get funding event: %w", err)
	}

	return doc.toEvent()
}
