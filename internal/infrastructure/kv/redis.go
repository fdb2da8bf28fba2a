package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the Store contract with one Redis hash per entity kind.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisOptions configures the Redis-backed store
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces all hashes, default "furnicraft"
	KeyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "furnicraft"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: opts.KeyPrefix}, nil
}

func (s *RedisStore) hashKey(kind string) string {
	return s.keyPrefix + ":" + kind
}

// Get returns the value for kind/key, or ErrKeyNotFound
func (s *RedisStore) Get(ctx context.Context, kind, key string) ([]byte, error) {
	value, err := s.client.HGet(ctx, s.hashKey(kind), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis hget %s/%s: %w", kind, key, err)
	}
	return value, nil
}

// Set writes the value for kind/key
func (s *RedisStore) Set(ctx context.Context, kind, key string, value []byte) error {
	if err := s.client.HSet(ctx, s.hashKey(kind), key, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s/%s: %w", kind, key, err)
	}
	return nil
}

// Delete removes kind/key
func (s *RedisStore) Delete(ctx context.Context, kind, key string) error {
	if err := s.client.HDel(ctx, s.hashKey(kind), key).Err(); err != nil {
		return fmt.Errorf("redis hdel %s/%s: %w", kind, key, err)
	}
	return nil
}

// List returns every record under kind
func (s *RedisStore) List(ctx context.Context, kind string) ([]Record, error) {
	entries, err := s.client.HGetAll(ctx, s.hashKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", kind, err)
	}

	records := make([]Record, 0, len(entries))
	for key, value := range entries {
		records = append(records, Record{Key: key, Value: []byte(value)})
	}
	return records, nil
}

// Client exposes the underlying connection for collaborators that share it,
// such as the product view counter
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
