package query

import (
	"context"
	"sort"

	"github.com/corebank/banking/account-service/internal/domain"
	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/models"
	"go.uber.org/zap"
)

// AccountResult is the outcome of enriching one account with its ledger
// entries: either Included with the snapshot, or skipped with a Reason.
type AccountResult struct {
	Snapshot *models.AccountSnapshot
	Skipped  *models.SkippedAccount
}

func (r AccountResult) Included() bool { return r.Snapshot != nil }

// CustomerQueryService builds customer snapshots. A ledger failure for one
// account drops only that account from the snapshot.
type CustomerQueryService struct {
	customers domain.CustomerFinder
	ledger    domain.LedgerClient
	logger    *zap.Logger
}

func NewCustomerQueryService(customers domain.CustomerFinder, ledger domain.LedgerClient, logger *zap.Logger) *CustomerQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerQueryService{customers: customers, ledger: ledger, logger: logger}
}

func (s *CustomerQueryService) GetCustomer(ctx context.Context, q cqrs.GetCustomerQuery) (*models.CustomerSnapshot, error) {
	customer, err := s.customers.FindCustomer(ctx, q.CustomerID)
	if err != nil {
		return nil, err
	}

	accounts := append([]models.Account(nil), customer.Accounts...)
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	snapshot := &models.CustomerSnapshot{
		ID:        customer.ID,
		FirstName: customer.FirstName,
		Surname:   customer.Surname,
		Email:     customer.Email,
		Accounts:  make([]models.AccountSnapshot, 0, len(accounts)),
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
	for _, account := range accounts {
		result := s.enrich(ctx, account)
		if result.Included() {
			snapshot.Accounts = append(snapshot.Accounts, *result.Snapshot)
			continue
		}
		s.logger.Warn("account left out of customer view",
			zap.Int64("customerId", customer.ID),
			zap.Int64("accountId", account.ID),
			zap.String("reason", result.Skipped.Reason))
		snapshot.Skipped = append(snapshot.Skipped, *result.Skipped)
	}
	return snapshot, nil
}

func (s *CustomerQueryService) enrich(ctx context.Context, account models.Account) AccountResult {
	entries, err := s.ledger.ListByAccount(ctx, account.ID)
	if err != nil {
		return AccountResult{Skipped: &models.SkippedAccount{AccountID: account.ID, Reason: err.Error()}}
	}
	return AccountResult{Snapshot: &models.AccountSnapshot{Account: account, Transactions: entries}}
}
