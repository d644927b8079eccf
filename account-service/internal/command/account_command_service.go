package command

import (
	"context"
	"fmt"

	"github.com/corebank/banking/account-service/internal/domain"
	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/events"
	"github.com/corebank/banking/shared/models"
	"go.uber.org/zap"
)

// CustomerCache drops a customer's cached read model after its accounts change.
type CustomerCache interface {
	InvalidateCustomer(ctx context.Context, customerID int64)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService runs the account-opening saga: it creates the
// account, credits it, records the credit in the ledger and deletes the
// account again if the ledger cannot confirm the entry.
type AccountCommandService struct {
	customers domain.CustomerFinder
	accounts  domain.AccountStore
	ledger    domain.LedgerClient
	cache     CustomerCache
	publisher EventPublisher
	logger    *zap.Logger
}

func NewAccountCommandService(
	customers domain.CustomerFinder,
	accounts domain.AccountStore,
	ledger domain.LedgerClient,
	cache CustomerCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *AccountCommandService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountCommandService{
		customers: customers,
		accounts:  accounts,
		ledger:    ledger,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *AccountCommandService) OpenCurrentAccount(ctx context.Context, cmd cqrs.OpenCurrentAccountCommand) (*models.Account, error) {
	account, _, err := s.openCurrentAccount(ctx, cmd)
	return account, err
}

func (s *AccountCommandService) openCurrentAccount(ctx context.Context, cmd cqrs.OpenCurrentAccountCommand) (*models.Account, *sagaRun, error) {
	logger := s.logger.With(zap.Int64("customerId", cmd.CustomerID))
	run := newSagaRun(logger)

	if !cmd.InitialCredit.IsPositive() {
		if err := run.advance(StateAborted); err != nil {
			return nil, run, err
		}
		return nil, run, domain.ErrCreditTooLow
	}

	customer, err := s.customers.FindCustomer(ctx, cmd.CustomerID)
	if err != nil {
		if advErr := run.advance(StateAborted); advErr != nil {
			return nil, run, advErr
		}
		return nil, run, err
	}

	if err := run.advance(StateCreatingAccount); err != nil {
		return nil, run, err
	}
	account, err := s.accounts.Create(ctx, customer.ID, models.AccountTypeCurrent)
	if err != nil {
		if advErr := run.advance(StateAborted); advErr != nil {
			return nil, run, advErr
		}
		return nil, run, fmt.Errorf("create account: %w", err)
	}
	logger = logger.With(zap.Int64("accountId", account.ID))
	run.logger = logger

	if err := run.advance(StateCreditingBalance); err != nil {
		return nil, run, err
	}
	credited, err := s.accounts.UpdateBalance(ctx, account.ID, cmd.InitialCredit, models.EntryTypeCredit)
	if err != nil {
		return nil, run, s.compensate(ctx, run, account, fmt.Errorf("credit balance: %w", err))
	}

	if err := run.advance(StateRecordingLedger); err != nil {
		return nil, run, err
	}
	entry, err := s.ledger.Append(ctx, account.ID, cmd.InitialCredit, models.EntryTypeCredit)
	if err != nil {
		return nil, run, s.compensate(ctx, run, account, fmt.Errorf("record ledger entry: %w", err))
	}

	if err := run.advance(StateCommitted); err != nil {
		return nil, run, err
	}
	s.invalidate(ctx, customer.ID)
	s.publish(ctx, events.AccountOpened, events.AccountOpenedEvent{
		AccountID:     credited.ID,
		CustomerID:    credited.CustomerID,
		InitialCredit: cmd.InitialCredit,
	})
	logger.Info("current account opened",
		zap.Int64("transactionId", entry.ID),
		zap.String("balance", credited.Balance.String()))
	return credited, run, nil
}

// compensate deletes the account created by this run. It only removes the
// account; a ledger entry that was written despite the failed call stays.
func (s *AccountCommandService) compensate(ctx context.Context, run *sagaRun, account *models.Account, cause error) error {
	if err := run.advance(StateCompensating); err != nil {
		return err
	}
	run.logger.Warn("compensating account opening", zap.Error(cause))

	// The caller may have gone away; the delete must still be attempted.
	ctx = context.WithoutCancel(ctx)
	delErr := s.accounts.Delete(ctx, account.ID)
	if err := run.advance(StateFailed); err != nil {
		return err
	}

	if delErr != nil {
		run.logger.Error("compensation failed, account orphaned",
			zap.NamedError("cause", cause),
			zap.NamedError("compensationError", delErr))
		s.invalidate(ctx, account.CustomerID)
		return &domain.CompensationFailedError{
			AccountID:       account.ID,
			Cause:           cause,
			CompensationErr: delErr,
		}
	}

	s.invalidate(ctx, account.CustomerID)
	s.publish(ctx, events.AccountCompensated, events.AccountCompensatedEvent{
		AccountID:  account.ID,
		CustomerID: account.CustomerID,
		Reason:     cause.Error(),
	})
	return &domain.AccountCreationFailedError{AccountID: account.ID, Cause: cause}
}

func (s *AccountCommandService) invalidate(ctx context.Context, customerID int64) {
	if s.cache != nil {
		s.cache.InvalidateCustomer(ctx, customerID)
	}
}

func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
