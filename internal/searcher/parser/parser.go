// Package parser turns raw query text into the tokens the resolver
// intersects. Words are separated by whitespace and every token is required;
// there are no operators.
package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
)

type QueryPlan struct {
	RawQuery string   `json:"query"`
	Words    []string `json:"words"`
	Tokens   []string `json:"tokens"`
}

// Parse splits query on whitespace and tokenizes each word with tok.
func Parse(query string, tok tokenizer.Tokenizer) *QueryPlan {
	words := strings.Fields(query)
	return &QueryPlan{
		RawQuery: query,
		Words:    words,
		Tokens:   tok.TokenizeAll(words),
	}
}

func (p *QueryPlan) Empty() bool {
	return len(p.Tokens) == 0
}

// Key is a canonical form of the plan: queries that differ only in
// whitespace share a key.
func (p *QueryPlan) Key() string {
	return strings.Join(p.Words, " ")
}
