// Package corpus bundles a document collection with the index built from it.
// A Corpus is the unit the indexer publishes and the searcher loads: it is
// immutable once built and identified by a fingerprint of its encoded form.
package corpus

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

type Corpus struct {
	Version   string
	Tokenizer tokenizer.Tokenizer
	Documents *document.Collection
	Index     *index.Snapshot
}

// Stats summarises a corpus for logs, events and status endpoints.
type Stats struct {
	Version   string `json:"version"`
	Documents int    `json:"documents"`
	Terms     int    `json:"terms"`
	Postings  int    `json:"postings"`
	NGramSize int    `json:"ngram_size"`
}

// Build indexes docs with engine and returns the verified corpus.
func Build(ctx context.Context, engine *indexer.Engine, docs []document.Document) (*Corpus, error) {
	coll, err := document.NewCollection(docs)
	if err != nil {
		return nil, fmt.Errorf("building collection: %w", err)
	}
	snap, err := engine.Build(ctx, docs)
	if err != nil {
		return nil, err
	}
	c := &Corpus{
		Tokenizer: engine.Tokenizer(),
		Documents: coll,
		Index:     snap,
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	payload, err := c.payload()
	if err != nil {
		return nil, err
	}
	c.Version = versionOf(fingerprint(payload))
	return c, nil
}

// Verify checks that every id referenced by the index belongs to a document
// of the collection.
func (c *Corpus) Verify() error {
	if c.Documents == nil || c.Index == nil {
		return fmt.Errorf("%w: corpus is missing documents or index", apperrors.ErrIntegrity)
	}
	for _, id := range c.Index.DocIDs() {
		if !c.Documents.Has(id) {
			return fmt.Errorf("%w: index references unknown document %d", apperrors.ErrIntegrity, id)
		}
	}
	return nil
}

// Lookup returns the posting list for token.
func (c *Corpus) Lookup(token string) (index.PostingList, bool) {
	return c.Index.Lookup(token)
}

func (c *Corpus) Stats() Stats {
	return Stats{
		Version:   c.Version,
		Documents: c.Documents.Len(),
		Terms:     c.Index.TermCount(),
		Postings:  c.Index.PostingCount(),
		NGramSize: c.Tokenizer.Size,
	}
}
