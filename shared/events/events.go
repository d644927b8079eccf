package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	AccountOpened      = "account.opened"
	AccountCompensated = "account.compensated"

	LedgerEntryRecorded = "ledger.entry.recorded"
	LedgerEntryDeleted  = "ledger.entry.deleted"
)

// Stream names
const (
	AccountEventsStream = "account.events"
	LedgerEventsStream  = "ledger.events"
)

// Event is the envelope written to every stream.
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Decode unmarshals the event payload into T.
func Decode[T any](event Event) (T, error) {
	var data T
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return data, fmt.Errorf("failed to unmarshal %s event: %w", event.Type, err)
	}
	return data, nil
}

// Account events
type AccountOpenedEvent struct {
	AccountID     int64           `json:"accountId"`
	CustomerID    int64           `json:"customerId"`
	InitialCredit decimal.Decimal `json:"initialCredit"`
}

// AccountCompensatedEvent is emitted after an account was deleted because its
// opening credit could not be recorded in the ledger.
type AccountCompensatedEvent struct {
	AccountID  int64  `json:"accountId"`
	CustomerID int64  `json:"customerId"`
	Reason     string `json:"reason"`
}

// Ledger events
type LedgerEntryRecordedEvent struct {
	TransactionID int64           `json:"transactionId"`
	AccountID     int64           `json:"accountId"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
}

type LedgerEntryDeletedEvent struct {
	TransactionID int64 `json:"transactionId"`
	AccountID     int64 `json:"accountId"`
}
