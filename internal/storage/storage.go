// Package storage persists build artifacts by name. Backends share one
// contract: Put replaces an artifact atomically, Get returns the complete
// bytes of the last Put or an error wrapping ErrArtifactNotFound.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/redis"
)

type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Close() error
}

// Open creates the backend selected by cfg.Storage.Backend, wrapped with
// retries, a circuit breaker and the configured fetch timeout.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Storage.Backend {
	case "file":
		store, err = NewFileStore(cfg.Storage.Dir)
	case "bolt":
		store, err = NewBoltStore(cfg.Storage.BoltPath, cfg.Storage.BoltBucket)
	case "redis":
		var client *pkgredis.Client
		client, err = pkgredis.NewClient(cfg.Redis)
		if err == nil {
			store = NewRedisStore(client, cfg.Storage.RedisKeyPrefix, true)
		}
	case "s3":
		store, err = NewS3Store(ctx, cfg.Storage.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s artifact store: %w", cfg.Storage.Backend, err)
	}
	return NewResilient(store, cfg.Storage), nil
}

// validName rejects names that could escape a backend's namespace.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid artifact name %q", apperrors.ErrInvalidInput, name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrArtifactNotFound, name)
}
