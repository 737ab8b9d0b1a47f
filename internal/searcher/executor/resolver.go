package executor

import (
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
)

// Resolver answers conjunctive n-gram queries against one index snapshot.
// It never modifies the snapshot, so a Resolver may be shared by concurrent
// callers.
type Resolver struct {
	snap *index.Snapshot
	tok  tokenizer.Tokenizer
}

func NewResolver(snap *index.Snapshot, tok tokenizer.Tokenizer) *Resolver {
	return &Resolver{snap: snap, tok: tok}
}

// Search returns, ascending, the ids of documents containing every n-gram of
// every word.
func (r *Resolver) Search(words []string) []document.ID {
	return r.Resolve(r.tok.TokenizeAll(words))
}

// Resolve intersects the posting lists of tokens. An empty token list or any
// unindexed token yields an empty result.
func (r *Resolver) Resolve(tokens []string) []document.ID {
	if len(tokens) == 0 {
		return []document.ID{}
	}
	lists := make([]index.PostingList, 0, len(tokens))
	for _, tok := range tokens {
		list, ok := r.snap.Lookup(tok)
		if !ok {
			return []document.ID{}
		}
		lists = append(lists, list)
	}
	return Intersect(lists...)
}

// Intersect returns the ids present in every list, ascending. Each list gets
// its own cursor; every round the largest current id becomes the target,
// lagging cursors seek up to it, and when all cursors agree the id is
// emitted and every cursor advances. The first exhausted cursor ends the
// walk.
func Intersect(lists ...index.PostingList) []document.ID {
	switch len(lists) {
	case 0:
		return []document.ID{}
	case 1:
		return lists[0].IDs()
	}

	shortest := lists[0].Len()
	lanes := make([]*index.Cursor, len(lists))
	for i, l := range lists {
		if l.Len() < shortest {
			shortest = l.Len()
		}
		lanes[i] = l.Cursor()
	}
	out := make([]document.ID, 0, shortest)

	for {
		var target document.ID
		for _, lane := range lanes {
			id, ok := lane.Peek()
			if !ok {
				return out
			}
			if id > target {
				target = id
			}
		}

		aligned := true
		for _, lane := range lanes {
			id, ok := lane.Seek(target)
			if !ok {
				return out
			}
			if id != target {
				aligned = false
			}
		}
		if !aligned {
			continue
		}

		out = append(out, target)
		for _, lane := range lanes {
			lane.Pop()
		}
	}
}
