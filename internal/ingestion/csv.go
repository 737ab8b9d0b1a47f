package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

var csvColumns = []string{"id", "title", "author", "content"}

// CSVSource reads a CSV file whose header names the columns id, title,
// author and content, in any order.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Load(ctx context.Context) ([]document.RawDocument, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()
	docs, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return docs, nil
}

// ReadCSV parses documents from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]document.RawDocument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []document.RawDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	docs := []document.RawDocument{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d",
				apperrors.ErrInvalidDocument, line, len(record), len(header))
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[cols["id"]]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: id %q is not an integer",
				apperrors.ErrInvalidDocument, line, record[cols["id"]])
		}
		docs = append(docs, document.RawDocument{
			ID:      id,
			Title:   record[cols["title"]],
			Author:  record[cols["author"]],
			Content: record[cols["content"]],
		})
	}
	return docs, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	for _, want := range csvColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("%w: header is missing column %q", apperrors.ErrInvalidDocument, want)
		}
	}
	return cols, nil
}
