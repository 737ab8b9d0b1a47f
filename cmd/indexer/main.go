// Command indexer builds a corpus from the configured document source,
// stores the artifact and announces it to searchers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/storage"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer",
		"source", cfg.Indexer.Source,
		"ngram_size", cfg.Indexer.NGramSize,
		"storage", cfg.Storage.Backend,
		"artifact", cfg.Indexer.Artifact,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("indexer failed", "error", err)
		os.Exit(1)
	}
	slog.Info("indexer finished")
}

func run(ctx context.Context, cfg *config.Config) error {
	engine, err := indexer.NewEngine(cfg.Indexer)
	if err != nil {
		return err
	}

	var (
		docs  []document.Document
		store storage.Store
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src, closeSrc, err := ingestion.NewSource(gctx, cfg)
		if err != nil {
			return err
		}
		defer closeSrc()
		docs, err = ingestion.Load(gctx, src, engine.Tokenizer())
		return err
	})
	g.Go(func() error {
		var err error
		store, err = storage.Open(gctx, cfg)
		return err
	})
	err = g.Wait()
	if store != nil {
		defer store.Close()
	}
	if err != nil {
		return err
	}

	c, err := corpus.Build(ctx, engine, docs)
	if err != nil {
		return err
	}
	if err := corpus.Save(ctx, store, cfg.Indexer.Artifact, c); err != nil {
		return err
	}
	stats := c.Stats()
	slog.Info("corpus stored",
		"artifact", cfg.Indexer.Artifact,
		"version", stats.Version,
		"documents", stats.Documents,
		"terms", stats.Terms,
		"postings", stats.Postings,
	)

	if !cfg.Kafka.Enabled {
		slog.Info("kafka disabled, searchers must reload explicitly")
		return nil
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CorpusRebuilt)
	defer producer.Close()
	ev := kafka.CorpusRebuilt{
		Artifact: cfg.Indexer.Artifact,
		Version:  stats.Version,
		Docs:     stats.Documents,
		Terms:    stats.Terms,
		BuiltAt:  time.Now().UTC(),
	}
	retryCfg := resilience.RetryConfig{
		MaxAttempts:  cfg.Storage.MaxAttempts,
		InitialDelay: cfg.Storage.RetryDelay,
	}
	if err := resilience.Retry(ctx, "publish-corpus-rebuilt", retryCfg, func(ctx context.Context) error {
		return producer.PublishCorpusRebuilt(ctx, ev)
	}); err != nil {
		return fmt.Errorf("announcing corpus %s: %w", stats.Version, err)
	}
	slog.Info("rebuild announced", "topic", cfg.Kafka.Topics.CorpusRebuilt, "version", stats.Version)
	return nil
}
