package models

import "time"

// AccountSnapshot is an account enriched with its ledger entries.
type AccountSnapshot struct {
	Account
	Transactions []LedgerEntry `json:"transactions"`
}

// SkippedAccount records why an account was left out of a CustomerSnapshot.
type SkippedAccount struct {
	AccountID int64  `json:"accountId"`
	Reason    string `json:"reason"`
}

// CustomerSnapshot is the read-side projection of a customer. Accounts whose
// ledger could not be listed are reported in Skipped and never serialised.
type CustomerSnapshot struct {
	ID        int64             `json:"id"`
	FirstName string            `json:"firstName"`
	Surname   string            `json:"surname"`
	Email     string            `json:"email"`
	Accounts  []AccountSnapshot `json:"accounts"`
	Skipped   []SkippedAccount  `json:"-"`
	CreatedAt time.Time         `json:"dateCreated"`
	UpdatedAt *time.Time        `json:"dateUpdated,omitempty"`
}
