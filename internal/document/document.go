// Package document defines the records the engine indexes: the raw records
// read from a source, the prepared documents carrying their precomputed
// content n-grams, and the ordered collection that owns them.
package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

// RawDocument is a record as read from a document source.
type RawDocument struct {
	ID      int    `json:"id"`
	Title   string `json:"title" validate:"required,max=1024"`
	Author  string `json:"author" validate:"max=1024"`
	Content string `json:"content" validate:"required,max=1048576"`
}

// Document is a prepared record. Content holds the n-grams of the title,
// author and raw content read as one string, so the index can be rebuilt
// without retokenizing.
type Document struct {
	ID         ID       `json:"id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Content    []string `json:"content"`
	RawContent string   `json:"raw_content"`
}

// Prepare validates raw records and tokenizes title+author+content as a single
// run of text, so n-grams span field boundaries. It fails on the first
// invalid record; nothing is returned for a partially valid input.
func Prepare(ctx context.Context, raws []RawDocument, tok tokenizer.Tokenizer) ([]Document, error) {
	if err := CheckCapacity(len(raws)); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "document-prepare")
	docs := make([]Document, 0, len(raws))
	seen := make(map[int]int, len(raws))
	for i := range raws {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("preparing documents: %w", err)
		}
		raw := &raws[i]
		id, err := NewID(raw.ID)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := Validate(raw); err != nil {
			return nil, fmt.Errorf("record %d (id %d): %w", i, raw.ID, err)
		}
		if prev, dup := seen[raw.ID]; dup {
			return nil, fmt.Errorf("%w: id %d used by records %d and %d",
				apperrors.ErrDuplicateID, raw.ID, prev, i)
		}
		seen[raw.ID] = i
		docs = append(docs, Document{
			ID:         id,
			Title:      raw.Title,
			Author:     raw.Author,
			Content:    tok.Tokenize(raw.Title + raw.Author + raw.Content),
			RawContent: raw.Content,
		})
	}
	logger.Debug("documents prepared", "count", len(docs), "ngram_size", tok.Size)
	return docs, nil
}

// Collection is an ordered set of documents addressable by ID.
type Collection struct {
	docs []Document
	byID map[ID]int
}

// NewCollection indexes docs by ID, rejecting duplicates.
func NewCollection(docs []Document) (*Collection, error) {
	if err := CheckCapacity(len(docs)); err != nil {
		return nil, err
	}
	c := &Collection{
		docs: docs,
		byID: make(map[ID]int, len(docs)),
	}
	for i, d := range docs {
		if prev, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: id %d at positions %d and %d",
				apperrors.ErrDuplicateID, d.ID, prev, i)
		}
		c.byID[d.ID] = i
	}
	return c, nil
}

// Get returns the document with the given id.
func (c *Collection) Get(id ID) (Document, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Document{}, false
	}
	return c.docs[i], true
}

func (c *Collection) Has(id ID) bool {
	_, ok := c.byID[id]
	return ok
}

// Documents returns the documents in source order. The slice must not be
// modified.
func (c *Collection) Documents() []Document {
	return c.docs
}

func (c *Collection) Len() int {
	return len(c.docs)
}

// Resolve maps ids to documents, skipping ids the collection does not hold.
func (c *Collection) Resolve(ids []ID) []Document {
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := c.Get(id); ok {
			out = append(out, d)
		}
	}
	return out
}

// Excerpt returns at most n characters from the start of the raw content.
func (d Document) Excerpt(n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range d.RawContent {
		if count == n {
			return d.RawContent[:i]
		}
		count++
	}
	return d.RawContent
}
