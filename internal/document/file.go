package document

import (
	"encoding/json"
	"fmt"
	"io"
)

// File is the on-disk form of a prepared document set.
type File struct {
	Docs []Document `json:"docs"`
}

// WriteJSON writes docs to w as a File.
func WriteJSON(w io.Writer, docs []Document) error {
	if docs == nil {
		docs = []Document{}
	}
	if err := json.NewEncoder(w).Encode(File{Docs: docs}); err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	return nil
}

// ReadJSON reads a File from r and checks that its ids are unique.
func ReadJSON(r io.Reader) ([]Document, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	if _, err := NewCollection(f.Docs); err != nil {
		return nil, err
	}
	return f.Docs, nil
}
