package index

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

// Snapshot is a read-only inverted index. Every posting list is a window of
// one shared arena; callers traverse them through cursors, so any number of
// queries may read a Snapshot concurrently.
type Snapshot struct {
	terms   []string
	offsets []int
	arena   []document.ID
	lookup  map[string]int
	docs    PostingList
}

// NewSnapshot builds a Snapshot from entries, which must be sorted by term
// with strictly ascending, non-empty posting lists. It is used when loading
// a persisted index.
func NewSnapshot(entries []TermEntry) (*Snapshot, error) {
	total := 0
	for _, e := range entries {
		total += len(e.Postings)
	}
	snap := &Snapshot{
		terms:   make([]string, 0, len(entries)),
		offsets: make([]int, 0, len(entries)+1),
		arena:   make([]document.ID, 0, total),
		lookup:  make(map[string]int, len(entries)),
	}
	docs := make(map[document.ID]struct{})
	for i, e := range entries {
		if i > 0 && e.Term <= entries[i-1].Term {
			return nil, fmt.Errorf("%w: term %q out of order", apperrors.ErrCorruptArtifact, e.Term)
		}
		if len(e.Postings) == 0 {
			return nil, fmt.Errorf("%w: term %q has no postings", apperrors.ErrCorruptArtifact, e.Term)
		}
		if !e.Postings.valid() {
			return nil, fmt.Errorf("%w: postings for %q not strictly ascending", apperrors.ErrCorruptArtifact, e.Term)
		}
		snap.terms = append(snap.terms, e.Term)
		snap.lookup[e.Term] = i
		snap.offsets = append(snap.offsets, len(snap.arena))
		snap.arena = append(snap.arena, e.Postings...)
		for _, id := range e.Postings {
			docs[id] = struct{}{}
		}
	}
	snap.offsets = append(snap.offsets, len(snap.arena))
	snap.docs = sortedIDs(docs)
	return snap, nil
}

// Lookup returns the posting list for token. The boolean is false when the
// token is not indexed; an indexed token always has at least one posting.
func (s *Snapshot) Lookup(token string) (PostingList, bool) {
	i, ok := s.lookup[token]
	if !ok {
		return nil, false
	}
	return s.list(i), true
}

func (s *Snapshot) list(i int) PostingList {
	start, end := s.offsets[i], s.offsets[i+1]
	return PostingList(s.arena[start:end:end])
}

// Terms returns the indexed tokens in ascending order. The slice must not be
// modified.
func (s *Snapshot) Terms() []string {
	return s.terms
}

func (s *Snapshot) TermCount() int {
	return len(s.terms)
}

// PostingCount is the total number of (token, id) pairs.
func (s *Snapshot) PostingCount() int {
	return len(s.arena)
}

// DocCount is the number of distinct ids referenced by any posting list.
func (s *Snapshot) DocCount() int {
	return len(s.docs)
}

// DocIDs returns every distinct id referenced by the index, ascending.
func (s *Snapshot) DocIDs() PostingList {
	return s.docs
}

// Each calls fn for every term in ascending order until fn returns false.
func (s *Snapshot) Each(fn func(term string, postings PostingList) bool) {
	for i, term := range s.terms {
		if !fn(term, s.list(i)) {
			return
		}
	}
}

// Entries returns the index as sorted term entries sharing the arena.
func (s *Snapshot) Entries() []TermEntry {
	entries := make([]TermEntry, 0, len(s.terms))
	s.Each(func(term string, postings PostingList) bool {
		entries = append(entries, TermEntry{Term: term, Postings: postings})
		return true
	})
	return entries
}

// Equal reports whether two snapshots hold identical terms and postings.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.terms) != len(other.terms) || len(s.arena) != len(other.arena) {
		return false
	}
	for i := range s.terms {
		if s.terms[i] != other.terms[i] || s.offsets[i] != other.offsets[i] {
			return false
		}
	}
	for i := range s.arena {
		if s.arena[i] != other.arena[i] {
			return false
		}
	}
	return true
}
