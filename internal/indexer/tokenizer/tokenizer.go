// Package tokenizer splits text into fixed-length character n-grams.
// Windows are measured in Unicode code points, so multi-byte scripts are
// segmented per character rather than per byte. No case folding or other
// normalisation is applied.
package tokenizer

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultSize is the n-gram length used when none is configured.
const DefaultSize = 2

// ErrInvalidSize is returned by New for a non-positive n-gram size.
var ErrInvalidSize = errors.New("invalid n-gram size")

// Tokenizer produces n-grams of Size code points.
//
// By default the window starting at offset len-Size is not emitted, so a
// text of L > Size characters yields L-Size tokens. IncludeFinalWindow
// switches to the full sliding window (L-Size+1 tokens).
type Tokenizer struct {
	Size               int  `json:"size"`
	IncludeFinalWindow bool `json:"include_final_window"`
}

// New returns a Tokenizer after validating size.
func New(size int, includeFinalWindow bool) (Tokenizer, error) {
	if size < 1 {
		return Tokenizer{}, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return Tokenizer{Size: size, IncludeFinalWindow: includeFinalWindow}, nil
}

// Default returns the bigram tokenizer.
func Default() Tokenizer {
	return Tokenizer{Size: DefaultSize}
}

// Tokenize returns the n-grams of text using the exclusive window convention.
func Tokenize(n int, text string) []string {
	return Tokenizer{Size: n}.Tokenize(text)
}

// Tokenize returns the n-grams of text in left-to-right order. A text of at
// most Size characters is returned unchanged as a single token.
func (t Tokenizer) Tokenize(text string) []string {
	n := t.Size
	if n < 1 {
		n = 1
	}
	length := utf8.RuneCountInString(text)
	if length <= n {
		return []string{text}
	}

	// offsets[i] is the byte offset of the i-th rune; offsets[length] == len(text).
	offsets := make([]int, 0, length+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	windows := length - n
	if t.IncludeFinalWindow {
		windows++
	}
	tokens := make([]string, 0, windows)
	for i := 0; i < windows; i++ {
		tokens = append(tokens, text[offsets[i]:offsets[i+n]])
	}
	return tokens
}

// TokenizeAll tokenizes each word and flattens the result, preserving order.
func (t Tokenizer) TokenizeAll(words []string) []string {
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, t.Tokenize(w)...)
	}
	return tokens
}
