package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidFundingSource = errors.New("invalid funding source")
	ErrMissingCardLast4     = errors.New("card funding source requires the last 4 card digits")
	ErrMissingRoutingNumber = errors.New("bank funding source requires a 9 digit routing number")
	ErrInvalidFundingAmount = errors.New("funding amount must be positive")
	ErrMissingAccount       = errors.New("funding request requires an account id")
	ErrMissingOwner         = errors.New("funding request requires an owner id")

	// ErrEventNotArchived is returned by archive lookups that find no event
	ErrEventNotArchived = errors.New("funding event not archived")
)

// FundingSourceType discriminates the FundingSource variant
type FundingSourceType string

const (
	FundingSourceCard FundingSourceType = "card"
	FundingSourceBank FundingSourceType = "bank"
)

// FundingSource describes where deposited money comes from. Exactly the
// fields of the selected variant are meaningful.
type FundingSource struct {
	Type          FundingSourceType `json:"type" bson:"type"`
	CardLast4     string            `json:"card_last4,omitempty" bson:"card_last4,omitempty"`
	RoutingNumber string            `json:"routing_number,omitempty" bson:"routing_number,omitempty"`
}

// Validate checks that the variant carries its required fields
func (s FundingSource) Validate() error {
	switch s.Type {
	case FundingSourceCard:
		if !allDigits(s.CardLast4, 4) {
			return ErrMissingCardLast4
		}
	case FundingSourceBank:
		if !allDigits(s.RoutingNumber, 9) {
			return ErrMissingRoutingNumber
		}
	default:
		return ErrInvalidFundingSource
	}
	return nil
}

// Description is the provenance note stored on the ledger transaction
func (s FundingSource) Description() string {
	switch s.Type {
	case FundingSourceCard:
		return "Deposit from card ending in " + s.CardLast4
	case FundingSourceBank:
		return "Deposit from bank account (routing " + s.RoutingNumber + ")"
	default:
		return "Deposit"
	}
}

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FundingRequest defines a Kafka message asking for an account to be funded
type FundingRequest struct {
	RequestID     uuid.UUID     `json:"request_id"`
	AccountID     uuid.UUID     `json:"account_id"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	Amount        int64         `json:"amount"` // Stored in cents/minor units
	Source        FundingSource `json:"funding_source"`
	CorrelationID string        `json:"correlation_id"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Validate checks the request before it reaches the ledger
func (r *FundingRequest) Validate() error {
	if r.AccountID == uuid.Nil {
		return ErrMissingAccount
	}
	if r.OwnerID == uuid.Nil {
		return ErrMissingOwner
	}
	if r.Amount <= 0 {
		return ErrInvalidFundingAmount
	}
	if r.Amount > MaxMinorUnits {
		return ErrAmountOverflow
	}
	return r.Source.Validate()
}

// FundingEvent is emitted through the outbox after a funding commits
type FundingEvent struct {
	EventID       uuid.UUID     `json:"event_id" bson:"event_id"`
	EventType     string        `json:"event_type" bson:"event_type"`
	TransactionID int64         `json:"transaction_id" bson:"transaction_id"`
	AccountID     uuid.UUID     `json:"account_id" bson:"account_id"`
	OwnerID       uuid.UUID     `json:"owner_id" bson:"owner_id"`
	AccountNumber string        `json:"account_number" bson:"account_number"`
	AccountType   string        `json:"account_type" bson:"account_type"`
	Amount        int64         `json:"amount" bson:"amount"`
	NewBalance    int64         `json:"new_balance" bson:"new_balance"`
	Description   string        `json:"description" bson:"description"`
	Source        FundingSource `json:"funding_source" bson:"funding_source"`
	CorrelationID string        `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at" bson:"occurred_at"`
}
