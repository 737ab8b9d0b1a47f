package indexer

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/metrics"
)

func sampleDocs(t *testing.T) []document.Document {
	t.Helper()
	docs, err := document.Prepare(context.Background(), []document.RawDocument{
		{ID: 1, Title: "Cats", Author: "Ann", Content: "cat sat mat"},
		{ID: 2, Title: "Go", Author: "Bob", Content: "cat ran far"},
	}, tokenizer.Default())
	require.NoError(t, err)
	return docs
}

func TestBuildIndexesEveryField(t *testing.T) {
	assert := require.New(t)
	engine := NewEngineWithTokenizer(tokenizer.Default())
	snap, err := engine.Build(context.Background(), sampleDocs(t))
	assert.NoError(err)

	cases := map[string]index.PostingList{
		"ca": {1, 2},
		"at": {1, 2},
		"sa": {1},
		"ra": {2},
		"Ca": {1},
		"Go": {2},
		"An": {1},
		"Bo": {2},
		"ts": {1},
		"sA": {1},
		"bc": {2},
	}
	for token, want := range cases {
		got, ok := snap.Lookup(token)
		assert.True(ok, token)
		assert.Equal(want, got, token)
	}
	// "far" ends in the excluded final window.
	_, ok := snap.Lookup("ar")
	assert.False(ok)
	_, ok = snap.Lookup("")
	assert.False(ok)

	for token, want := range map[string]document.ID{"Cats": 1, "Ann": 1, "Bob": 2} {
		got, ok := snap.Lookup(token)
		assert.True(ok, token)
		assert.Equal(index.PostingList{want}, got, token)
	}
	assert.Equal(2, snap.DocCount())
}

func TestBuildFindsFieldTailsAndBoundaries(t *testing.T) {
	assert := require.New(t)
	tok := tokenizer.Default()
	docs, err := document.Prepare(context.Background(), []document.RawDocument{
		{ID: 1, Title: "吾輩は猫である", Author: "夏目漱石", Content: "名前はまだ無い"},
	}, tok)
	assert.NoError(err)
	snap, err := NewEngineWithTokenizer(tok).Build(context.Background(), docs)
	assert.NoError(err)

	for _, token := range []string{"漱石", "ある", "る夏", "石名", "吾輩は猫である", "夏目漱石"} {
		got, ok := snap.Lookup(token)
		assert.True(ok, token)
		assert.Equal(index.PostingList{1}, got, token)
	}
	// Only the last window of the combined text is excluded.
	_, ok := snap.Lookup("無い")
	assert.False(ok)
}

func TestBuildIsDeterministic(t *testing.T) {
	assert := require.New(t)
	engine := NewEngineWithTokenizer(tokenizer.Default())
	docs := sampleDocs(t)
	first, err := engine.Build(context.Background(), docs)
	assert.NoError(err)
	second, err := engine.Build(context.Background(), docs)
	assert.NoError(err)
	assert.True(first.Equal(second))
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	assert := require.New(t)
	engine := NewEngineWithTokenizer(tokenizer.Default())
	docs := []document.Document{
		{ID: 4, Title: "a", Content: []string{"aa"}},
		{ID: 4, Title: "b", Content: []string{"bb"}},
	}
	snap, err := engine.Build(context.Background(), docs)
	assert.ErrorIs(err, apperrors.ErrDuplicateID)
	assert.Nil(snap)
}

func TestBuildHonoursCancellation(t *testing.T) {
	assert := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngineWithTokenizer(tokenizer.Default()).Build(ctx, sampleDocs(t))
	assert.ErrorIs(err, context.Canceled)
}

func TestNewEngineValidatesConfig(t *testing.T) {
	assert := require.New(t)
	_, err := NewEngine(config.IndexerConfig{NGramSize: 0})
	assert.ErrorIs(err, tokenizer.ErrInvalidSize)

	engine, err := NewEngine(config.IndexerConfig{NGramSize: 3, IncludeFinalWindow: true})
	assert.NoError(err)
	assert.Equal(3, engine.Tokenizer().Size)
	assert.True(engine.Tokenizer().IncludeFinalWindow)
}

func TestBuildRecordsMetrics(t *testing.T) {
	assert := require.New(t)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	engine := NewEngineWithTokenizer(tokenizer.Default()).WithMetrics(m)

	_, err := engine.Build(context.Background(), sampleDocs(t))
	assert.NoError(err)
	assert.Equal(2.0, testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(1.0, testutil.ToFloat64(m.IndexBuildsTotal.WithLabelValues("success")))
}
