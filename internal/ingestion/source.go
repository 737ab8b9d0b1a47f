// Package ingestion reads raw documents from the configured source (a CSV
// file, a JSON file or a PostgreSQL table) and prepares them for indexing.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/postgres"
)

// Source yields every raw document of a collection. Records are returned in
// source order and are not validated.
type Source interface {
	Load(ctx context.Context) ([]document.RawDocument, error)
}

// NewSource builds the source named by cfg.Indexer.Source. The returned
// close function releases any connection the source holds.
func NewSource(ctx context.Context, cfg *config.Config) (Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Indexer.Source {
	case "csv":
		return NewCSVSource(cfg.Indexer.SourcePath), noop, nil
	case "json":
		return NewJSONSource(cfg.Indexer.SourcePath), noop, nil
	case "postgres":
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresSource(client.DB, client.Table()), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown document source %q", cfg.Indexer.Source)
	}
}

// Load reads src and prepares its documents with tok. Any invalid record
// fails the whole load.
func Load(ctx context.Context, src Source, tok tokenizer.Tokenizer) ([]document.Document, error) {
	logger := slog.Default().With("component", "ingestion")
	start := time.Now()
	raws, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	docs, err := document.Prepare(ctx, raws, tok)
	if err != nil {
		return nil, fmt.Errorf("preparing documents: %w", err)
	}
	logger.Info("documents loaded",
		"source", fmt.Sprintf("%T", src),
		"documents", len(docs),
		"duration", time.Since(start),
	)
	return docs, nil
}
