package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/searcher/parser"
)

// stride returns every step-th id below MaxID.
func stride(step int) index.PostingList {
	var list index.PostingList
	for id := 0; id <= document.MaxID; id += step {
		list = append(list, document.ID(id))
	}
	return list
}

func BenchmarkQueryParse(b *testing.B) {
	tok := tokenizer.Default()
	queries := map[string]string{
		"single":   "search",
		"multi":    "distributed search index",
		"japanese": "東京 京都 検索",
	}
	for name, q := range queries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = parser.Parse(q, tok)
			}
		})
	}
}

// BenchmarkIntersect compares dense lanes against a sparse lane that lets
// the dense ones seek ahead.
func BenchmarkIntersect(b *testing.B) {
	cases := []struct {
		name  string
		lists []index.PostingList
	}{
		{"dense_pair", []index.PostingList{stride(2), stride(3)}},
		{"sparse_lane", []index.PostingList{stride(1), stride(2), stride(997)}},
		{"five_lanes", []index.PostingList{stride(2), stride(3), stride(5), stride(7), stride(11)}},
	}
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = executor.Intersect(tc.lists...)
			}
		})
	}
}

func BenchmarkExecute(b *testing.B) {
	for _, n := range []int{1000, 10000} {
		c, err := corpus.Build(context.Background(), indexer.NewEngineWithTokenizer(tokenizer.Default()), syntheticDocs(b, n))
		if err != nil {
			b.Fatal(err)
		}
		exec := executor.New(corpus.NewHolder(c))
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if _, err := exec.Execute(context.Background(), "search 検索", 100); err != nil {
						b.Error(err)
						return
					}
				}
			})
		})
	}
}
