package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/redis"
)

type memBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	fail error
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]byte)}
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	v, ok := m.data[key]
	if !ok {
		return nil, pkgredis.ErrNil
	}
	return v, nil
}

func (m *memBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func sampleResult() *executor.SearchResult {
	return &executor.SearchResult{
		Query:         "cat",
		Tokens:        []string{"ca"},
		TotalHits:     2,
		IDs:           []document.ID{1, 2},
		Documents:     []document.Document{},
		CorpusVersion: "v1",
	}
}

func TestGetOrCompute(t *testing.T) {
	assert := require.New(t)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	c := New(newMemBackend(), time.Minute).WithMetrics(m)
	ctx := context.Background()
	key := Key{Version: "v1", Query: "cat", Limit: 10}

	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		return sampleResult(), nil
	}

	result, hit, err := c.GetOrCompute(ctx, key, compute)
	assert.NoError(err)
	assert.False(hit)
	assert.Equal(2, result.TotalHits)

	result, hit, err = c.GetOrCompute(ctx, key, compute)
	assert.NoError(err)
	assert.True(hit)
	assert.Equal([]document.ID{1, 2}, result.IDs)
	assert.Equal(int32(1), calls.Load())

	hits, misses := c.Stats()
	assert.Equal(int64(1), hits)
	assert.Equal(int64(1), misses)
	assert.Equal(1.0, testutil.ToFloat64(m.CacheHitsTotal))
}

func TestKeysAreVersioned(t *testing.T) {
	assert := require.New(t)
	a := Key{Version: "v1", Query: "cat", Limit: 10}
	assert.NotEqual(a.String(), Key{Version: "v2", Query: "cat", Limit: 10}.String())
	assert.NotEqual(a.String(), Key{Version: "v1", Query: "cat", Limit: 5}.String())
	assert.Equal(a.String(), Key{Version: "v1", Query: "cat", Limit: 10}.String())
}

func TestComputeErrorIsNotCached(t *testing.T) {
	assert := require.New(t)
	backend := newMemBackend()
	c := New(backend, time.Minute)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), Key{Version: "v1", Query: "x"}, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(err, boom)
	assert.Empty(backend.data)
}

func TestBackendFailureIsAMiss(t *testing.T) {
	backend := newMemBackend()
	backend.fail = errors.New("connection refused")
	_, ok := New(backend, time.Minute).Get(context.Background(), Key{Version: "v1", Query: "cat"})
	require.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	assert := require.New(t)
	backend := newMemBackend()
	c := New(backend, time.Minute)
	ctx := context.Background()

	c.Set(ctx, Key{Version: "v1", Query: "cat"}, sampleResult())
	c.Set(ctx, Key{Version: "v1", Query: "sat"}, sampleResult())
	backend.data["other"] = []byte("kept")

	deleted, err := c.Invalidate(ctx)
	assert.NoError(err)
	assert.Equal(int64(2), deleted)
	assert.Contains(backend.data, "other")
}
