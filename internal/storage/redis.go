package storage

import (
	"context"
	"fmt"
	"time"

	pkgredis "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/redis"
)

// RedisClient is the part of *redis.Client the store uses.
type RedisClient interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// RedisStore keeps artifacts as plain keys under a prefix, without expiry.
type RedisStore struct {
	client RedisClient
	prefix string
	owned  bool
}

// NewRedisStore wraps client. When owned is true Close also closes the
// client.
func NewRedisStore(client RedisClient, prefix string, owned bool) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, owned: owned}
}

func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+name, data, 0); err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.prefix+name)
	if pkgredis.IsNilError(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}
