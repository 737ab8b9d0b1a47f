package corpus

import (
	"context"
	"fmt"
	"sync/atomic"

	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

// Holder publishes the active corpus to concurrent readers. Replacing the
// corpus never disturbs queries already running against the previous one.
type Holder struct {
	current atomic.Pointer[Corpus]
}

// NewHolder returns a Holder serving c, which may be nil.
func NewHolder(c *Corpus) *Holder {
	h := &Holder{}
	if c != nil {
		h.current.Store(c)
	}
	return h
}

// Load returns the active corpus or ErrCorpusNotLoaded.
func (h *Holder) Load() (*Corpus, error) {
	c := h.current.Load()
	if c == nil {
		return nil, apperrors.ErrCorpusNotLoaded
	}
	return c, nil
}

// Swap installs c and returns the corpus it replaced.
func (h *Holder) Swap(c *Corpus) *Corpus {
	return h.current.Swap(c)
}

func (h *Holder) Loaded() bool {
	return h.current.Load() != nil
}

// Artifacts is the subset of an artifact store the corpus needs.
type Artifacts interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// Save encodes c and stores it under name.
func Save(ctx context.Context, store Artifacts, name string, c *Corpus) error {
	data, err := c.Encode()
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("storing corpus %q: %w", name, err)
	}
	return nil
}

// Fetch reads and decodes the corpus stored under name.
func Fetch(ctx context.Context, store Artifacts, name string) (*Corpus, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetching corpus %q: %w", name, err)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding corpus %q: %w", name, err)
	}
	return c, nil
}
