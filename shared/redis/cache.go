package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ViewCache is a JSON-backed Redis cache for read model projections of type T.
// Every key is namespaced by prefix; a zero TTL means keys never expire.
// Cache failures are logged and treated as misses so the caller can always
// fall back to the source of truth.
//
// Each id carries a generation counter bumped by Invalidate. A reader takes
// the generation before querying the source and passes it to Fill; the fill
// is dropped when an invalidation happened in between, so a view read before
// a write can never overwrite the invalidation that followed the write.
type ViewCache[T any] struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewViewCache[T any](client *goredis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *ViewCache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *ViewCache[T]) Key(id string) string {
	return c.prefix + id
}

func (c *ViewCache[T]) generationKey(id string) string {
	return c.prefix + "gen:" + id
}

var errStaleGeneration = errors.New("view generation changed")

// Generation returns the current generation token for id, or "" when Redis
// cannot be read. Fill ignores an empty token.
func (c *ViewCache[T]) Generation(ctx context.Context, id string) string {
	gen, err := c.readGeneration(ctx, c.client, id)
	if err != nil {
		c.logger.Warn("view cache generation read failed", zap.String("key", c.generationKey(id)), zap.Error(err))
		return ""
	}
	return gen
}

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func (c *ViewCache[T]) readGeneration(ctx context.Context, cmd getter, id string) (string, error) {
	gen, err := cmd.Get(ctx, c.generationKey(id)).Result()
	if errors.Is(err, goredis.Nil) {
		return "0", nil
	}
	return gen, err
}

// Get returns (nil, false) on a miss or an undecodable entry.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	data, err := c.client.Get(ctx, c.Key(id)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("view cache read failed", zap.String("key", c.Key(id)), zap.Error(err))
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("view cache entry undecodable", zap.String("key", c.Key(id)), zap.Error(err))
		return nil, false
	}
	return &v, true
}

// Fill caches value for id if the generation is still gen.
func (c *ViewCache[T]) Fill(ctx context.Context, id, gen string, value *T) {
	if gen == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("view cache marshal failed", zap.String("key", c.Key(id)), zap.Error(err))
		return
	}

	err = c.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := c.readGeneration(ctx, tx, id)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, c.Key(id), data, c.ttl)
			return nil
		})
		return err
	}, c.generationKey(id))

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, goredis.TxFailedErr):
		c.logger.Debug("view cache fill skipped, entry invalidated meanwhile", zap.String("key", c.Key(id)))
	default:
		c.logger.Warn("view cache write failed", zap.String("key", c.Key(id)), zap.Error(err))
	}
}

func (c *ViewCache[T]) Invalidate(ctx context.Context, id string) {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(id))
		pipe.Del(ctx, c.Key(id))
		return nil
	})
	if err != nil {
		c.logger.Warn("view cache delete failed", zap.String("key", c.Key(id)), zap.Error(err))
	}
}
