package cqrs

import (
	"github.com/corebank/banking/shared/models"
	"github.com/shopspring/decimal"
)

// ---------- Account commands ----------

// OpenCurrentAccountCommand opens a CURRENT account credited with InitialCredit.
type OpenCurrentAccountCommand struct {
	CustomerID    int64
	InitialCredit decimal.Decimal
}

// ---------- Ledger commands ----------

type RecordTransactionCommand struct {
	AccountID int64
	Amount    decimal.Decimal
	Type      models.EntryType
}

type DeleteTransactionCommand struct {
	TransactionID int64
}
