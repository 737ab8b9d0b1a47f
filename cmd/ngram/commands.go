package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/storage"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
)

const (
	searchPrompt = "enter words to search, separated by spaces"
	excerptLen   = 25
	maxQueryLine = 1 << 20
)

func tokenize(ctx context.Context, cfg *config.Config, documentsPath string) error {
	engine, err := indexer.NewEngine(cfg.Indexer)
	if err != nil {
		return err
	}
	src, closeSrc, err := ingestion.NewSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	docs, err := ingestion.Load(ctx, src, engine.Tokenizer())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := document.WriteJSON(&buf, docs); err != nil {
		return err
	}
	store, err := storage.NewFileStore(filepath.Dir(documentsPath))
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Put(ctx, filepath.Base(documentsPath), buf.Bytes()); err != nil {
		return err
	}
	slog.Info("documents written", "path", documentsPath, "documents", len(docs))
	return nil
}

func buildIndex(ctx context.Context, cfg *config.Config, documentsPath, artifactPath string) error {
	engine, err := indexer.NewEngine(cfg.Indexer)
	if err != nil {
		return err
	}
	src, err := storage.NewFileStore(filepath.Dir(documentsPath))
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := src.Get(ctx, filepath.Base(documentsPath))
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	docs, err := document.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("reading %s: %w", documentsPath, err)
	}

	c, err := corpus.Build(ctx, engine, docs)
	if err != nil {
		return err
	}
	store, err := storage.NewFileStore(filepath.Dir(artifactPath))
	if err != nil {
		return err
	}
	defer store.Close()
	if err := corpus.Save(ctx, store, filepath.Base(artifactPath), c); err != nil {
		return err
	}
	stats := c.Stats()
	slog.Info("corpus written",
		"path", artifactPath,
		"version", stats.Version,
		"documents", stats.Documents,
		"terms", stats.Terms,
	)
	return nil
}

func search(ctx context.Context, artifactPath string, in io.Reader, out io.Writer) error {
	store, err := storage.NewFileStore(filepath.Dir(artifactPath))
	if err != nil {
		return err
	}
	defer store.Close()
	c, err := corpus.Fetch(ctx, store, filepath.Base(artifactPath))
	if err != nil {
		return err
	}
	exec := executor.New(corpus.NewHolder(c))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxQueryLine)
	for {
		fmt.Fprintf(out, "\n%s\n", searchPrompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		result, err := exec.Execute(ctx, scanner.Text(), 0)
		if err != nil {
			return err
		}
		printResult(out, result)
	}
}

func printResult(out io.Writer, result *executor.SearchResult) {
	fmt.Fprintf(out, "%d result(s) found\n", result.TotalHits)
	for _, doc := range result.Documents {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", doc.ID, doc.Title, doc.Author, doc.Excerpt(excerptLen))
	}
}
