package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/corebank/banking/shared/models"
	sharedredis "github.com/corebank/banking/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const accountEntriesKeyPrefix = "ledger:account:"

// TransactionReadRepository handles all read operations for ledger entries.
// It uses Redis as the primary read store, falling back to PostgreSQL on a miss.
// The cached list of an account must be invalidated whenever one of its
// entries is written or deleted.
type TransactionReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[[]models.LedgerEntry]
}

func NewTransactionReadRepository(db *sql.DB, redisClient *goredis.Client, ttl time.Duration, logger *zap.Logger) *TransactionReadRepository {
	return &TransactionReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[[]models.LedgerEntry](redisClient, accountEntriesKeyPrefix, ttl, logger),
	}
}

// ListByAccount returns the account's entries newest first. An account with
// no entries yields an empty, non-nil slice.
func (r *TransactionReadRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.LedgerEntry, error) {
	cacheID := strconv.FormatInt(accountID, 10)
	if entries, ok := r.cache.Get(ctx, cacheID); ok && *entries != nil {
		return *entries, nil
	}
	gen := r.cache.Generation(ctx, cacheID)

	query := `
		SELECT id, account_id, amount, type, transacted_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY transacted_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Amount, &entry.Type, &entry.TransactedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	// Warm the cache
	r.cache.Fill(ctx, cacheID, gen, &entries)
	return entries, nil
}

func (r *TransactionReadRepository) InvalidateAccount(ctx context.Context, accountID int64) {
	r.cache.Invalidate(ctx, strconv.FormatInt(accountID, 10))
}
