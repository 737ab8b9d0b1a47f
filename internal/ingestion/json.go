package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

// JSONSource reads {"docs": [{"id", "title", "author", "content"}, ...]}.
type JSONSource struct {
	path string
}

func NewJSONSource(path string) *JSONSource {
	return &JSONSource{path: path}
}

func (s *JSONSource) Load(ctx context.Context) ([]document.RawDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var file struct {
		Docs []document.RawDocument `json:"docs"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidDocument, s.path, err)
	}
	if file.Docs == nil {
		file.Docs = []document.RawDocument{}
	}
	return file.Docs, nil
}
