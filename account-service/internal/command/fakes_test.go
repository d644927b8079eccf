package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corebank/banking/account-service/internal/domain"
	"github.com/corebank/banking/shared/models"
	"github.com/shopspring/decimal"
)

type fakeCustomers struct {
	customers map[int64]*models.Customer
}

func (f *fakeCustomers) FindCustomer(_ context.Context, id int64) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, domain.ErrCustomerNotFound)
	}
	return c, nil
}

// fakeStore is an in-memory AccountStore. The *Err fields inject failures.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	accounts  map[int64]*models.Account
	createErr error
	updateErr error
	deleteErr error
	deletes   []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: map[int64]*models.Account{}}
}

func (f *fakeStore) Create(_ context.Context, customerID int64, accountType models.AccountType) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	a := &models.Account{ID: f.nextID, CustomerID: customerID, Type: accountType, Balance: decimal.Zero, CreatedAt: time.Now().UTC()}
	f.accounts[a.ID] = a
	copied := *a
	return &copied, nil
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, domain.ErrAccountNotFound)
	}
	copied := *a
	return &copied, nil
}

func (f *fakeStore) UpdateBalance(_ context.Context, id int64, amount decimal.Decimal, kind models.EntryType) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	balance, err := domain.ApplyBalance(a.Balance, amount, kind)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a.Balance = balance
	a.UpdatedAt = &now
	copied := *a
	return &copied, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(f.accounts, id)
	return nil
}

type fakeLedger struct {
	mu        sync.Mutex
	entries   []models.LedgerEntry
	appendErr error
	appends   int
}

func (f *fakeLedger) Append(_ context.Context, accountID int64, amount decimal.Decimal, kind models.EntryType) (*models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	e := models.LedgerEntry{ID: int64(len(f.entries) + 1), AccountID: accountID, Amount: amount, Type: kind, TransactedAt: time.Now().UTC()}
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeLedger) ListByAccount(_ context.Context, accountID int64) ([]models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.LedgerEntry{}
	for _, e := range f.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) DeleteByID(context.Context, int64) error { return nil }

type fakeCache struct {
	invalidated []int64
}

func (f *fakeCache) InvalidateCustomer(_ context.Context, id int64) {
	f.invalidated = append(f.invalidated, id)
}

type publishedEvent struct {
	stream, eventType string
	data              any
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	f.published = append(f.published, publishedEvent{stream: stream, eventType: eventType, data: data})
	return f.err
}
