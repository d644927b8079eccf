package command

import (
	"context"
	"fmt"

	"github.com/corebank/banking/shared/cqrs"
	"github.com/corebank/banking/shared/events"
	"github.com/corebank/banking/shared/models"
	"github.com/corebank/banking/transaction-service/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionStore interface {
	Create(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryType) (*models.LedgerEntry, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// EntryListCache drops the cached entry list of an account.
type EntryListCache interface {
	InvalidateAccount(ctx context.Context, accountID int64)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// TransactionCommandService appends and deletes ledger entries and keeps the
// per-account list cache consistent with the store.
type TransactionCommandService struct {
	store     TransactionStore
	cache     EntryListCache
	publisher EventPublisher
	logger    *zap.Logger
}

func NewTransactionCommandService(store TransactionStore, cache EntryListCache, publisher EventPublisher, logger *zap.Logger) *TransactionCommandService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionCommandService{store: store, cache: cache, publisher: publisher, logger: logger}
}

func (s *TransactionCommandService) RecordTransaction(ctx context.Context, cmd cqrs.RecordTransactionCommand) (*models.LedgerEntry, error) {
	if cmd.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", repository.ErrInvalidEntry)
	}
	if !cmd.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", repository.ErrInvalidEntry, cmd.Type)
	}

	entry, err := s.store.Create(ctx, cmd.AccountID, cmd.Amount, cmd.Type)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAccount(ctx, entry.AccountID)
	s.publish(ctx, events.LedgerEntryRecorded, events.LedgerEntryRecordedEvent{
		TransactionID: entry.ID,
		AccountID:     entry.AccountID,
		Amount:        entry.Amount,
		Type:          string(entry.Type),
	})
	s.logger.Info("ledger entry recorded",
		zap.Int64("transactionId", entry.ID),
		zap.Int64("accountId", entry.AccountID),
		zap.String("type", string(entry.Type)),
		zap.String("amount", entry.Amount.String()))
	return entry, nil
}

func (s *TransactionCommandService) DeleteTransaction(ctx context.Context, cmd cqrs.DeleteTransactionCommand) error {
	accountID, err := s.store.Delete(ctx, cmd.TransactionID)
	if err != nil {
		return err
	}
	s.cache.InvalidateAccount(ctx, accountID)
	s.publish(ctx, events.LedgerEntryDeleted, events.LedgerEntryDeletedEvent{
		TransactionID: cmd.TransactionID,
		AccountID:     accountID,
	})
	s.logger.Info("ledger entry deleted", zap.Int64("transactionId", cmd.TransactionID), zap.Int64("accountId", accountID))
	return nil
}

// HandleAccountEvent drops the cached entry list of an account whose opening
// was compensated. The entries themselves are left alone.
func (s *TransactionCommandService) HandleAccountEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.AccountCompensated {
		return nil
	}
	data, err := events.Decode[events.AccountCompensatedEvent](event)
	if err != nil {
		return err
	}
	s.cache.InvalidateAccount(ctx, data.AccountID)
	s.logger.Warn("account compensated upstream, ledger entries kept",
		zap.Int64("accountId", data.AccountID),
		zap.String("reason", data.Reason))
	return nil
}

func (s *TransactionCommandService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.LedgerEventsStream, eventType, data); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
