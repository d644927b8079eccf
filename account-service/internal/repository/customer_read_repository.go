package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/corebank/banking/account-service/internal/domain"
	"github.com/corebank/banking/shared/models"
	sharedredis "github.com/corebank/banking/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const customerViewKeyPrefix = "customer:view:"

// CustomerReadRepository handles all read operations for customers.
// It treats Redis as the primary read store and falls back to PostgreSQL
// transparently, warming the cache on every cold read. Anything that changes
// a customer's accounts must call InvalidateCustomer.
type CustomerReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.Customer]
}

func NewCustomerReadRepository(db *sql.DB, redisClient *goredis.Client, ttl time.Duration, logger *zap.Logger) *CustomerReadRepository {
	return &CustomerReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.Customer](redisClient, customerViewKeyPrefix, ttl, logger),
	}
}

var _ domain.CustomerFinder = (*CustomerReadRepository)(nil)

// FindCustomer returns the customer with its accounts ordered by id.
func (r *CustomerReadRepository) FindCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	cacheID := strconv.FormatInt(id, 10)
	if customer, ok := r.cache.Get(ctx, cacheID); ok {
		return customer, nil
	}
	gen := r.cache.Generation(ctx, cacheID)

	query := `
		SELECT id, first_name, surname, email, created_at, updated_at
		FROM customers
		WHERE id = $1
	`
	var (
		customer  models.Customer
		updatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID, &customer.FirstName, &customer.Surname, &customer.Email,
		&customer.CreatedAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %d: %w", id, domain.ErrCustomerNotFound)
	}
	if err != nil {
		return nil, storageErr("get customer", err)
	}
	if updatedAt.Valid {
		customer.UpdatedAt = &updatedAt.Time
	}

	accounts, err := r.listAccounts(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Accounts = accounts

	r.cache.Fill(ctx, cacheID, gen, &customer)
	return &customer, nil
}

func (r *CustomerReadRepository) listAccounts(ctx context.Context, customerID int64) ([]models.Account, error) {
	query := `
		SELECT id, customer_id, account_type, balance, created_at, updated_at
		FROM accounts
		WHERE customer_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storageErr("scan account", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list accounts", err)
	}
	return accounts, nil
}

// InvalidateCustomer removes the cached view of a customer.
func (r *CustomerReadRepository) InvalidateCustomer(ctx context.Context, id int64) {
	r.cache.Invalidate(ctx, strconv.FormatInt(id, 10))
}
