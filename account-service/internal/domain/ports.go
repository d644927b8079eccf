package domain

import (
	"context"

	"github.com/corebank/banking/shared/models"
	"github.com/shopspring/decimal"
)

// AccountStore owns the account lifecycle. UpdateBalance and Delete are the
// only ways an account row changes.
type AccountStore interface {
	Create(ctx context.Context, customerID int64, accountType models.AccountType) (*models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	// UpdateBalance must serialise concurrent mutations of the same account.
	UpdateBalance(ctx context.Context, id int64, amount decimal.Decimal, kind models.EntryType) (*models.Account, error)
	Delete(ctx context.Context, id int64) error
}

// CustomerFinder loads a customer together with the accounts it owns.
type CustomerFinder interface {
	FindCustomer(ctx context.Context, id int64) (*models.Customer, error)
}

// LedgerClient talks to the transaction service. Every call makes exactly one
// attempt.
type LedgerClient interface {
	Append(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryType) (*models.LedgerEntry, error)
	ListByAccount(ctx context.Context, accountID int64) ([]models.LedgerEntry, error)
	DeleteByID(ctx context.Context, id int64) error
}
