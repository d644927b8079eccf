package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/corebank/banking/shared/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var Migrations embed.FS

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidEntry is returned when the database rejects an entry's amount or type.
	ErrInvalidEntry = errors.New("invalid ledger entry")
)

const pgCheckViolation = "23514"

// TransactionWriteRepository handles all state-mutating operations for ledger entries.
// It operates exclusively against the PostgreSQL write store (source of truth).
type TransactionWriteRepository struct {
	db *sql.DB
}

func NewTransactionWriteRepository(db *sql.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

func (r *TransactionWriteRepository) Create(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryType) (*models.LedgerEntry, error) {
	query := `
		INSERT INTO transactions (account_id, amount, type)
		VALUES ($1, $2, $3)
		RETURNING id, transacted_at
	`
	entry := &models.LedgerEntry{AccountID: accountID, Amount: amount, Type: kind}
	err := r.db.QueryRowContext(ctx, query, accountID, amount, string(kind)).Scan(&entry.ID, &entry.TransactedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEntry, pgErr.Message)
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return entry, nil
}

// Delete removes an entry and returns the account it belonged to.
func (r *TransactionWriteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var accountID int64
	err := r.db.QueryRowContext(ctx, `DELETE FROM transactions WHERE id = $1 RETURNING account_id`, id).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("transaction %d: %w", id, ErrTransactionNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete transaction: %w", err)
	}
	return accountID, nil
}
