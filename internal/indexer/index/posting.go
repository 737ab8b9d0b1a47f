package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
)

// PostingList is an ascending, duplicate-free sequence of document ids.
// Lists handed out by a Snapshot share its arena and must be treated as
// read-only; use Clone for a private copy or Cursor for traversal.
type PostingList []document.ID

// TermEntry pairs a token with its posting list.
type TermEntry struct {
	Term     string
	Postings PostingList
}

func (l PostingList) Len() int {
	return len(l)
}

// IDs returns a copy of the list as a plain slice.
func (l PostingList) IDs() []document.ID {
	out := make([]document.ID, len(l))
	copy(out, l)
	return out
}

func (l PostingList) Clone() PostingList {
	return PostingList(l.IDs())
}

func (l PostingList) Contains(id document.ID) bool {
	i := sort.Search(len(l), func(i int) bool { return l[i] >= id })
	return i < len(l) && l[i] == id
}

// Cursor returns a fresh cursor positioned on the smallest id.
func (l PostingList) Cursor() *Cursor {
	return &Cursor{list: l}
}

// valid reports whether the list is strictly ascending.
func (l PostingList) valid() bool {
	for i := 1; i < len(l); i++ {
		if l[i] <= l[i-1] {
			return false
		}
	}
	return true
}

// Cursor walks a PostingList in ascending order without modifying it.
type Cursor struct {
	list PostingList
	pos  int
}

func (c *Cursor) Exhausted() bool {
	return c.pos >= len(c.list)
}

// Peek returns the smallest remaining id.
func (c *Cursor) Peek() (document.ID, bool) {
	if c.Exhausted() {
		return 0, false
	}
	return c.list[c.pos], true
}

// Pop returns the smallest remaining id and moves past it.
func (c *Cursor) Pop() (document.ID, bool) {
	id, ok := c.Peek()
	if ok {
		c.pos++
	}
	return id, ok
}

// Seek moves the cursor to the first remaining id >= target and returns it.
// It gallops forward from the current position, so a run of seeks over one
// list costs at most a linear scan.
func (c *Cursor) Seek(target document.ID) (document.ID, bool) {
	if c.Exhausted() {
		return 0, false
	}
	if c.list[c.pos] >= target {
		return c.list[c.pos], true
	}
	lo, step := c.pos, 1
	hi := lo + step
	for hi < len(c.list) && c.list[hi] < target {
		lo = hi
		step <<= 1
		hi = lo + step
	}
	if hi > len(c.list) {
		hi = len(c.list)
	}
	// c.list[lo] < target; answer lies in (lo, hi].
	rest := c.list[lo+1 : hi]
	c.pos = lo + 1 + sort.Search(len(rest), func(i int) bool { return rest[i] >= target })
	return c.Peek()
}

// Remaining returns the ids the cursor has not yet passed.
func (c *Cursor) Remaining() PostingList {
	if c.Exhausted() {
		return nil
	}
	return c.list[c.pos:]
}
