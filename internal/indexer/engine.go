package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/metrics"
)

// progressEvery controls how often Build logs progress.
const progressEvery = 1000

// Engine builds inverted indexes from document collections. A build is a
// one-shot operation over a complete collection; there is no incremental
// mode.
type Engine struct {
	tok     tokenizer.Tokenizer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine creates an Engine using the tokenizer described by cfg.
func NewEngine(cfg config.IndexerConfig) (*Engine, error) {
	tok, err := tokenizer.New(cfg.NGramSize, cfg.IncludeFinalWindow)
	if err != nil {
		return nil, fmt.Errorf("configuring tokenizer: %w", err)
	}
	return NewEngineWithTokenizer(tok), nil
}

// NewEngineWithTokenizer creates an Engine around an existing tokenizer.
func NewEngineWithTokenizer(tok tokenizer.Tokenizer) *Engine {
	return &Engine{
		tok:    tok,
		logger: slog.Default().With("component", "indexer"),
	}
}

// WithMetrics attaches collectors updated by Build.
func (e *Engine) WithMetrics(m *metrics.Metrics) *Engine {
	e.metrics = m
	return e
}

func (e *Engine) Tokenizer() tokenizer.Tokenizer {
	return e.tok
}

// Build indexes docs and returns the frozen snapshot. The collection is
// validated before anything is indexed: duplicate ids or an oversized
// collection fail the whole build.
//
// Title and author are added as whole-string keys; the precomputed content
// n-grams already cover both fields.
func (e *Engine) Build(ctx context.Context, docs []document.Document) (*index.Snapshot, error) {
	start := time.Now()
	snap, err := e.build(ctx, docs)
	if e.metrics != nil {
		status := "success"
		if err != nil {
			status = "failure"
		}
		e.metrics.IndexBuildsTotal.WithLabelValues(status).Inc()
		e.metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		e.logger.Error("index build failed", "error", err, "documents", len(docs))
		return nil, err
	}
	e.logger.Info("index built",
		"documents", len(docs),
		"terms", snap.TermCount(),
		"postings", snap.PostingCount(),
		"duration", time.Since(start),
	)
	return snap, nil
}

func (e *Engine) build(ctx context.Context, docs []document.Document) (*index.Snapshot, error) {
	if _, err := document.NewCollection(docs); err != nil {
		return nil, fmt.Errorf("validating collection: %w", err)
	}
	store := index.NewStore()
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("index build cancelled after %d documents: %w", i, err)
		}
		e.addDocument(store, doc)
		if e.metrics != nil {
			e.metrics.DocsIndexedTotal.Inc()
		}
		if (i+1)%progressEvery == 0 {
			e.logger.Debug("index build progress",
				"documents", i+1,
				"terms", store.TermCount(),
				"mem_size", store.Size(),
			)
		}
	}
	return store.Freeze(), nil
}

func (e *Engine) addDocument(store *index.Store, doc document.Document) {
	for _, field := range []string{doc.Title, doc.Author} {
		if field != "" {
			store.Add(field, doc.ID)
		}
	}
	for _, tok := range doc.Content {
		store.Add(tok, doc.ID)
	}
}
