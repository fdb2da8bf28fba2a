package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domaincatalog "github.com/m-r-khan/furnicraft5-sub000/internal/domain/catalog"
)

// RedisViewCounter reads the storefront's per-product view counters from a
// Redis hash maintained by the catalog collaborator.
type RedisViewCounter struct {
	client  *redis.Client
	hashKey string
}

// NewRedisViewCounter creates a view counter reading from the given hash.
// An empty hashKey defaults to "furnicraft:views".
func NewRedisViewCounter(client *redis.Client, hashKey string) *RedisViewCounter {
	if hashKey == "" {
		hashKey = "furnicraft:views"
	}
	return &RedisViewCounter{client: client, hashKey: hashKey}
}

// RecordView increments a product's view counter
func (c *RedisViewCounter) RecordView(ctx context.Context, id uuid.UUID) error {
	if err := c.client.HIncrBy(ctx, c.hashKey, id.String(), 1).Err(); err != nil {
		return fmt.Errorf("record view %s: %w", id, err)
	}
	return nil
}

// ViewCounts returns all per-product view counters. Entries that do not
// parse as product IDs or counts are skipped rather than failing the read.
func (c *RedisViewCounter) ViewCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	entries, err := c.client.HGetAll(ctx, c.hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read view counts: %w", err)
	}

	out := make(map[uuid.UUID]int64, len(entries))
	for field, value := range entries {
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		count, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		out[id] = count
	}
	return out, nil
}

var _ domaincatalog.ViewCounter = (*RedisViewCounter)(nil)
