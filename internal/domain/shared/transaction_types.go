package shared

// TransactionType is the direction of a ledger movement. Only deposits are
// produced today.
type TransactionType string

const TransactionTypeDeposit TransactionType = "deposit"

// TransactionStatus is the settlement state of a transaction. Fundings settle
// synchronously and are stored completed.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// Terminal reports whether the relay is done with a message in this state
func (s OutboxStatus) Terminal() bool {
	return s == OutboxStatusProcessed || s == OutboxStatusFailedToPublish
}

// EventTypeAccountFunded is published once per completed funding
const EventTypeAccountFunded = "account.funded"
