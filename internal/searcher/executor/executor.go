// Package executor resolves search queries against the active corpus.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/metrics"
)

type SearchResult struct {
	Query         string              `json:"query"`
	Tokens        []string            `json:"tokens"`
	TotalHits     int                 `json:"total_hits"`
	IDs           []document.ID       `json:"ids"`
	Documents     []document.Document `json:"documents"`
	CorpusVersion string              `json:"corpus_version"`
}

type Executor struct {
	holder  *corpus.Holder
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(holder *corpus.Holder) *Executor {
	return &Executor{
		holder: holder,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// WithMetrics attaches collectors updated by Execute.
func (e *Executor) WithMetrics(m *metrics.Metrics) *Executor {
	e.metrics = m
	return e
}

// Plan parses query with the tokenizer of the active corpus.
func (e *Executor) Plan(query string) (*parser.QueryPlan, *corpus.Corpus, error) {
	c, err := e.holder.Load()
	if err != nil {
		return nil, nil, err
	}
	return parser.Parse(query, c.Tokenizer), c, nil
}

// Execute runs query against the active corpus. TotalHits counts every
// matching document; at most limit of them are returned, or all when limit
// is not positive.
func (e *Executor) Execute(ctx context.Context, query string, limit int) (*SearchResult, error) {
	plan, c, err := e.Plan(query)
	if err != nil {
		return nil, err
	}
	return e.ExecutePlan(ctx, plan, c, limit)
}

// ExecutePlan runs a plan produced by Plan against c.
func (e *Executor) ExecutePlan(ctx context.Context, plan *parser.QueryPlan, c *corpus.Corpus, limit int) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	ids := NewResolver(c.Index, c.Tokenizer).Resolve(plan.Tokens)
	total := len(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	result := &SearchResult{
		Query:         plan.RawQuery,
		Tokens:        plan.Tokens,
		TotalHits:     total,
		IDs:           ids,
		Documents:     c.Documents.Resolve(ids),
		CorpusVersion: c.Version,
	}

	if e.metrics != nil {
		resultType := "hit"
		switch {
		case plan.Empty():
			resultType = "empty_query"
		case total == 0:
			resultType = "miss"
		}
		e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		e.metrics.SearchResultsCount.Observe(float64(total))
		e.metrics.SearchTokensCount.Observe(float64(len(plan.Tokens)))
	}
	e.logger.Info("query executed",
		"query", plan.RawQuery,
		"tokens", len(plan.Tokens),
		"hits", total,
		"returned", len(ids),
		"corpus_version", c.Version,
	)
	return result, nil
}
