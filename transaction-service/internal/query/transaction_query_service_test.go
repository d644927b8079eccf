package query

import (
	"context"
	"testing"

	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister map[int64][]models.LedgerEntry

func (s stubLister) ListByAccount(_ context.Context, accountID int64) ([]models.LedgerEntry, error) {
	if e, ok := s[accountID]; ok {
		return e, nil
	}
	return []models.LedgerEntry{}, nil
}

func TestListTransactions(t *testing.T) {
	svc := NewTransactionQueryService(stubLister{4: {{ID: 1, AccountID: 4, Type: models.EntryTypeCredit}}})

	entries, err := svc.ListTransactions(context.Background(), cqrs.ListTransactionsQuery{AccountID: 4})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = svc.ListTransactions(context.Background(), cqrs.ListTransactionsQuery{AccountID: 5})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
