package query

import (
	"context"

	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/models"
)

type EntryLister interface {
	ListByAccount(ctx context.Context, accountID int64) ([]models.LedgerEntry, error)
}

// TransactionQueryService serves ledger reads.
type TransactionQueryService struct {
	readRepo EntryLister
}

func NewTransactionQueryService(readRepo EntryLister) *TransactionQueryService {
	return &TransactionQueryService{readRepo: readRepo}
}

// ListTransactions returns the account's entries newest first; an unknown
// account simply has none.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.LedgerEntry, error) {
	return s.readRepo.ListByAccount(ctx, q.AccountID)
}
