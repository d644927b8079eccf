package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	// AccountTypeSavings is reserved; no operation opens savings accounts yet.
	AccountTypeSavings AccountType = "SAVINGS"
)

// EntryType is the kind of a balance mutation and of the ledger entry recording it.
type EntryType string

const (
	EntryTypeCredit EntryType = "CREDIT"
	EntryTypeDebit  EntryType = "DEBIT"
)

func (t EntryType) Valid() bool {
	return t == EntryTypeCredit || t == EntryTypeDebit
}

type Customer struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"firstName"`
	Surname   string     `json:"surname"`
	Email     string     `json:"email"`
	Accounts  []Account  `json:"accounts"`
	CreatedAt time.Time  `json:"dateCreated"`
	UpdatedAt *time.Time `json:"dateUpdated,omitempty"`
}

// Account is owned by exactly one customer. Balance is never negative and is
// only changed through the account store.
type Account struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customerId"`
	Type       AccountType     `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"dateCreated"`
	UpdatedAt  *time.Time      `json:"dateUpdated,omitempty"`
}

// LedgerEntry is one append-only record held by the transaction service.
// Amount is never negative; the sign is carried by Type.
type LedgerEntry struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"accountId"`
	Amount       decimal.Decimal `json:"amount"`
	Type         EntryType       `json:"type"`
	TransactedAt time.Time       `json:"dateTransacted"`
}
