// Command ngram runs the n-gram search pipeline locally: tokenize a
// document source, index the documents into a corpus artifact, and search
// the artifact interactively.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/logger"
)

const usage = `usage: ngram <command> [flags]

commands:
  tokenize   read the document source and write prepared documents as JSON
  index      build a corpus artifact from prepared documents
  search     search a corpus artifact interactively
`

// options are the flags shared by every subcommand.
type options struct {
	configPath string
	input      string
	documents  string
	artifact   string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(0)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	var opts options
	fs.StringVar(&opts.configPath, "config", "configs/development.yaml", "path to config file")
	fs.StringVar(&opts.input, "input", "", "document source path (defaults to indexer.sourcePath)")
	fs.StringVar(&opts.documents, "documents", "file/documents.json", "prepared documents JSON")
	fs.StringVar(&opts.artifact, "artifact", "", "corpus artifact path (defaults to storage.dir/indexer.artifact)")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so they never interleave with search output.
	slog.SetDefault(logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))

	if opts.input != "" {
		cfg.Indexer.SourcePath = opts.input
	}
	if opts.artifact == "" {
		opts.artifact = filepath.Join(cfg.Storage.Dir, cfg.Indexer.Artifact)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, cfg, opts, os.Stdin, os.Stdout); err != nil {
		slog.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cfg *config.Config, opts options, in io.Reader, out io.Writer) error {
	switch command {
	case "tokenize":
		return tokenize(ctx, cfg, opts.documents)
	case "index":
		return buildIndex(ctx, cfg, opts.documents, opts.artifact)
	case "search":
		return search(ctx, opts.artifact, in, out)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
