package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/resilience"
)

// Resilient retries transient backend failures and stops calling a backend
// that keeps failing. Missing artifacts and invalid names fail at once.
type Resilient struct {
	store   Store
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
	timeout time.Duration
}

func NewResilient(store Store, cfg config.StorageConfig) *Resilient {
	return &Resilient{
		store: store,
		retry: resilience.RetryConfig{
			MaxAttempts:    cfg.MaxAttempts,
			InitialDelay:   cfg.RetryDelay,
			JitterFraction: 0.1,
		},
		breaker: resilience.NewBreaker("artifact-store:"+cfg.Backend, resilience.BreakerConfig{
			Failures: cfg.BreakerFailures,
			Reset:    cfg.BreakerReset,
		}),
		timeout: cfg.FetchTimeout,
	}
}

func (r *Resilient) Put(ctx context.Context, name string, data []byte) error {
	return r.breaker.Do(func() error {
		return resilience.Retry(ctx, "artifact put "+name, r.retry, func(ctx context.Context) error {
			_, err := resilience.WithTimeout(ctx, r.timeout, "put "+name, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, r.store.Put(ctx, name, data)
			})
			return classify(err)
		})
	})
}

func (r *Resilient) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := r.breaker.Do(func() error {
		return resilience.Retry(ctx, "artifact get "+name, r.retry, func(ctx context.Context) error {
			var err error
			data, err = resilience.WithTimeout(ctx, r.timeout, "get "+name, func(ctx context.Context) ([]byte, error) {
				return r.store.Get(ctx, name)
			})
			return classify(err)
		})
	})
	return data, err
}

func (r *Resilient) Close() error {
	return r.store.Close()
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrArtifactNotFound),
		errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, context.Canceled):
		return resilience.Permanent(err)
	default:
		return err
	}
}
