package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/redis"
)

type memBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *memBackend) FlushByPattern(_ context.Context, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.data))
	m.data = make(map[string][]byte)
	return n, nil
}

type stubReloader struct {
	stats corpus.Stats
	err   error
}

func (s stubReloader) Reload(context.Context) (corpus.Stats, error) {
	return s.stats, s.err
}

var searchCfg = config.SearchConfig{MaxResults: 5, DefaultLimit: 2, MaxQueryLen: 32}

func sampleHolder(t *testing.T) *corpus.Holder {
	t.Helper()
	tok := tokenizer.Default()
	docs, err := document.Prepare(context.Background(), []document.RawDocument{
		{ID: 1, Title: "Cats", Author: "Ann", Content: "cat sat mat"},
		{ID: 2, Title: "Go", Author: "Bob", Content: "cat ran far"},
	}, tok)
	require.NoError(t, err)
	c, err := corpus.Build(context.Background(), indexer.NewEngineWithTokenizer(tok), docs)
	require.NoError(t, err)
	return corpus.NewHolder(c)
}

func newServer(t *testing.T, h *Handler) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func do(mux http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestSearch(t *testing.T) {
	assert := require.New(t)
	mux := newServer(t, New(executor.New(sampleHolder(t)), nil, nil, searchCfg))

	rec := do(mux, http.MethodGet, "/api/v1/search?q=cat")
	assert.Equal(http.StatusOK, rec.Code)
	var result executor.SearchResult
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(2, result.TotalHits)
	assert.Equal([]document.ID{1, 2}, result.IDs)
	assert.Equal([]string{"ca"}, result.Tokens)

	rec = do(mux, http.MethodGet, "/api/v1/search?q=cat&limit=1")
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(2, result.TotalHits)
	assert.Equal([]document.ID{1}, result.IDs)

	rec = do(mux, http.MethodGet, "/api/v1/search?q=zz")
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Zero(result.TotalHits)
	assert.Empty(result.IDs)
}

func TestSearchValidation(t *testing.T) {
	mux := newServer(t, New(executor.New(sampleHolder(t)), nil, nil, searchCfg))
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing q", "/api/v1/search", http.StatusBadRequest},
		{"blank q", "/api/v1/search?q=%20%20", http.StatusOK},
		{"bad limit", "/api/v1/search?q=cat&limit=abc", http.StatusBadRequest},
		{"zero limit", "/api/v1/search?q=cat&limit=0", http.StatusBadRequest},
		{"long query", "/api/v1/search?q=" + strings.Repeat("a", 33), http.StatusBadRequest},
		{"limit clamped", "/api/v1/search?q=cat&limit=500", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.status, do(mux, http.MethodGet, tt.target).Code)
		})
	}
}

func TestSearchWithoutCorpus(t *testing.T) {
	mux := newServer(t, New(executor.New(corpus.NewHolder(nil)), nil, nil, searchCfg))
	rec := do(mux, http.MethodGet, "/api/v1/search?q=cat")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "corpus not loaded")
}

func TestSearchUsesCache(t *testing.T) {
	assert := require.New(t)
	qc := cache.New(&memBackend{data: make(map[string][]byte)}, time.Minute)
	mux := newServer(t, New(executor.New(sampleHolder(t)), qc, nil, searchCfg))

	do(mux, http.MethodGet, "/api/v1/search?q=cat")
	do(mux, http.MethodGet, "/api/v1/search?q=%20cat%20")

	rec := do(mux, http.MethodGet, "/api/v1/cache/stats")
	var stats map[string]any
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(1.0, stats["hits"])
	assert.Equal(1.0, stats["misses"])

	rec = do(mux, http.MethodPost, "/api/v1/cache/invalidate")
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), `"keys_deleted":1`)
}

func TestCacheEndpointsWhenDisabled(t *testing.T) {
	mux := newServer(t, New(executor.New(sampleHolder(t)), nil, nil, searchCfg))
	require.Contains(t, do(mux, http.MethodGet, "/api/v1/cache/stats").Body.String(), "disabled")
	require.Equal(t, http.StatusServiceUnavailable, do(mux, http.MethodPost, "/api/v1/cache/invalidate").Code)
}

func TestReload(t *testing.T) {
	assert := require.New(t)
	exec := executor.New(sampleHolder(t))

	mux := newServer(t, New(exec, nil, nil, searchCfg))
	assert.Equal(http.StatusServiceUnavailable, do(mux, http.MethodPost, "/api/v1/corpus/reload").Code)

	mux = newServer(t, New(exec, nil, stubReloader{stats: corpus.Stats{Version: "abc", Documents: 2}}, searchCfg))
	rec := do(mux, http.MethodPost, "/api/v1/corpus/reload")
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), `"version":"abc"`)

	mux = newServer(t, New(exec, nil, stubReloader{err: errors.New("s3 down")}, searchCfg))
	rec = do(mux, http.MethodPost, "/api/v1/corpus/reload")
	assert.Equal(http.StatusInternalServerError, rec.Code)
	assert.NotContains(rec.Body.String(), "s3 down")
}
