package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/banking/account-service/internal/domain"
	"github.com/corebank/banking/shared/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const (
	pqForeignKeyViolation pq.ErrorCode = "23503"
	pqCheckViolation      pq.ErrorCode = "23514"
)

// AccountWriteRepository handles all state-mutating operations for accounts.
// It operates exclusively against the PostgreSQL write store (source of truth).
type AccountWriteRepository struct {
	db *sql.DB
}

func NewAccountWriteRepository(db *sql.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

var _ domain.AccountStore = (*AccountWriteRepository)(nil)

func (r *AccountWriteRepository) Create(ctx context.Context, customerID int64, accountType models.AccountType) (*models.Account, error) {
	query := `
		INSERT INTO accounts (customer_id, account_type, balance)
		VALUES ($1, $2, 0)
		RETURNING id, created_at
	`
	account := &models.Account{
		CustomerID: customerID,
		Type:       accountType,
		Balance:    decimal.Zero,
	}
	err := r.db.QueryRowContext(ctx, query, customerID, accountType).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return nil, fmt.Errorf("customer %d: %w", customerID, domain.ErrCustomerNotFound)
		}
		return nil, storageErr("create account", err)
	}
	return account, nil
}

func (r *AccountWriteRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, customer_id, account_type, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, domain.ErrAccountNotFound)
	}
	if err != nil {
		return nil, storageErr("get account", err)
	}
	return account, nil
}

// UpdateBalance locks the account row for the duration of the transaction, so
// two concurrent debits never decide sufficiency against the same balance.
func (r *AccountWriteRepository) UpdateBalance(ctx context.Context, id int64, amount decimal.Decimal, kind models.EntryType) (*models.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin balance update", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		SELECT id, customer_id, account_type, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`
	account, err := scanAccount(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, domain.ErrAccountNotFound)
	}
	if err != nil {
		return nil, storageErr("lock account", err)
	}

	newBalance, err := domain.ApplyBalance(account.Balance, amount, kind)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", id, err)
	}

	var updatedAt time.Time
	err = tx.QueryRowContext(ctx,
		`UPDATE accounts SET balance = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		id, newBalance,
	).Scan(&updatedAt)
	if err != nil {
		if pqCode(err) == pqCheckViolation {
			return nil, fmt.Errorf("account %d: %w", id, domain.ErrInsufficientFunds)
		}
		return nil, storageErr("update balance", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit balance update", err)
	}

	account.Balance = newBalance
	account.UpdatedAt = &updatedAt
	return account, nil
}

func (r *AccountWriteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete account", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("check rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %d: %w", id, domain.ErrAccountNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account   models.Account
		updatedAt sql.NullTime
	)
	if err := row.Scan(
		&account.ID, &account.CustomerID, &account.Type,
		&account.Balance, &account.CreatedAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		account.UpdatedAt = &updatedAt.Time
	}
	return &account, nil
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}
