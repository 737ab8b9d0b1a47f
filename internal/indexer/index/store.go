// Package index holds the inverted index: a build-time Store that accumulates
// postings, and the immutable Snapshot it freezes into for querying.
package index

import (
	"sort"

	"github.com/huandu/skiplist"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
)

// Store maps tokens to ordered id sets while an index is being built. It is
// not safe for concurrent use; builds run with exclusive access.
type Store struct {
	postings map[string]*skiplist.SkipList
	docs     map[document.ID]struct{}
	size     int64
}

func NewStore() *Store {
	return &Store{
		postings: make(map[string]*skiplist.SkipList),
		docs:     make(map[document.ID]struct{}),
	}
}

// Add inserts id into the posting list for token. Adding the same pair twice
// leaves the list unchanged.
func (s *Store) Add(token string, id document.ID) {
	list, ok := s.postings[token]
	if !ok {
		list = skiplist.New(skiplist.Uint64)
		s.postings[token] = list
		s.size += int64(len(token) + 64)
	}
	key := uint64(id)
	if list.Get(key) == nil {
		list.Set(key, struct{}{})
		s.size += 8
	}
	s.docs[id] = struct{}{}
}

// Lookup returns a copy of the posting list for token. The boolean is false
// when the token was never added.
func (s *Store) Lookup(token string) (PostingList, bool) {
	list, ok := s.postings[token]
	if !ok {
		return nil, false
	}
	return materialize(list), true
}

func (s *Store) TermCount() int {
	return len(s.postings)
}

func (s *Store) DocCount() int {
	return len(s.docs)
}

// Size is a rough estimate of the memory held by the store, in bytes.
func (s *Store) Size() int64 {
	return s.size
}

// Freeze copies the store into an immutable Snapshot with sorted terms and a
// single contiguous posting arena.
func (s *Store) Freeze() *Snapshot {
	terms := make([]string, 0, len(s.postings))
	total := 0
	for term, list := range s.postings {
		terms = append(terms, term)
		total += list.Len()
	}
	sort.Strings(terms)

	snap := &Snapshot{
		terms:   terms,
		offsets: make([]int, 0, len(terms)+1),
		arena:   make([]document.ID, 0, total),
		lookup:  make(map[string]int, len(terms)),
	}
	for i, term := range terms {
		snap.lookup[term] = i
		snap.offsets = append(snap.offsets, len(snap.arena))
		for el := s.postings[term].Front(); el != nil; el = el.Next() {
			snap.arena = append(snap.arena, document.ID(el.Key().(uint64)))
		}
	}
	snap.offsets = append(snap.offsets, len(snap.arena))
	snap.docs = sortedIDs(s.docs)
	return snap
}

func materialize(list *skiplist.SkipList) PostingList {
	out := make(PostingList, 0, list.Len())
	for el := list.Front(); el != nil; el = el.Next() {
		out = append(out, document.ID(el.Key().(uint64)))
	}
	return out
}

func sortedIDs(set map[document.ID]struct{}) PostingList {
	ids := make(PostingList, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
