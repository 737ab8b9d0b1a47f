package document

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/ngram-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

func TestNewID(t *testing.T) {
	assert := require.New(t)

	id, err := NewID(42)
	assert.NoError(err)
	assert.Equal(ID(42), id)

	id, err = NewID(MaxID)
	assert.NoError(err)
	assert.Equal(ID(MaxID), id)

	_, err = NewID(MaxID + 1)
	assert.ErrorIs(err, apperrors.ErrIDOutOfRange)

	_, err = NewID(-1)
	assert.ErrorIs(err, apperrors.ErrIDOutOfRange)
}

func TestCheckCapacity(t *testing.T) {
	assert := require.New(t)
	assert.NoError(CheckCapacity(MaxID + 1))
	assert.ErrorIs(CheckCapacity(MaxID+2), apperrors.ErrIDOutOfRange)
}

func TestPrepareTokenizesContent(t *testing.T) {
	assert := require.New(t)
	raws := []RawDocument{
		{ID: 1, Title: "Cats", Author: "Ann", Content: "cat sat mat"},
		{ID: 2, Title: "Dogs", Author: "Bob", Content: "cat ran far"},
	}
	docs, err := Prepare(context.Background(), raws, tokenizer.Default())
	assert.NoError(err)
	assert.Len(docs, 2)
	assert.Equal(ID(1), docs[0].ID)
	assert.Equal([]string{"Ca", "at", "ts", "sA", "An", "nn", "nc", "ca", "at", "t ", " s", "sa", "at", "t ", " m", "ma"}, docs[0].Content)
	assert.Equal("cat ran far", docs[1].RawContent)
}

var prepareFailureCases = []struct {
	name     string
	raws     []RawDocument
	sentinel error
}{
	{
		name:     "Missing title",
		raws:     []RawDocument{{ID: 1, Content: "body"}},
		sentinel: apperrors.ErrInvalidDocument,
	},
	{
		name:     "Missing content",
		raws:     []RawDocument{{ID: 1, Title: "t"}},
		sentinel: apperrors.ErrInvalidDocument,
	},
	{
		name:     "Title too long",
		raws:     []RawDocument{{ID: 1, Title: strings.Repeat("x", 1025), Content: "c"}},
		sentinel: apperrors.ErrInvalidDocument,
	},
	{
		name:     "Identifier out of range",
		raws:     []RawDocument{{ID: MaxID + 1, Title: "t", Content: "c"}},
		sentinel: apperrors.ErrIDOutOfRange,
	},
	{
		name: "Duplicate identifier",
		raws: []RawDocument{
			{ID: 7, Title: "a", Content: "aa"},
			{ID: 7, Title: "b", Content: "bb"},
		},
		sentinel: apperrors.ErrDuplicateID,
	},
}

func TestPrepareFailsFast(t *testing.T) {
	for _, testCase := range prepareFailureCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			docs, err := Prepare(context.Background(), testCase.raws, tokenizer.Default())
			assert.ErrorIs(err, testCase.sentinel)
			assert.Nil(docs)
		})
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	assert := require.New(t)
	err := Validate(&RawDocument{ID: 1})
	var verr *ValidationError
	assert.ErrorAs(err, &verr)
	assert.Contains(verr.Fields, "title")
	assert.Contains(verr.Fields, "content")
	assert.Equal("content: is required; title: is required", verr.Error())
}

func TestCollection(t *testing.T) {
	assert := require.New(t)
	docs := []Document{
		{ID: 3, Title: "three", RawContent: "検索する単語"},
		{ID: 1, Title: "one", RawContent: "short"},
	}
	c, err := NewCollection(docs)
	assert.NoError(err)
	assert.Equal(2, c.Len())
	assert.True(c.Has(3))
	assert.False(c.Has(2))

	d, ok := c.Get(1)
	assert.True(ok)
	assert.Equal("one", d.Title)

	resolved := c.Resolve([]ID{1, 2, 3})
	assert.Len(resolved, 2)
	assert.Equal(ID(1), resolved[0].ID)
	assert.Equal(ID(3), resolved[1].ID)

	_, err = NewCollection([]Document{{ID: 1}, {ID: 1}})
	assert.ErrorIs(err, apperrors.ErrDuplicateID)
}

func TestExcerptCountsCharacters(t *testing.T) {
	assert := require.New(t)
	d := Document{RawContent: "検索する単語"}
	assert.Equal("検索", d.Excerpt(2))
	assert.Equal("検索する単語", d.Excerpt(25))
	assert.Equal("", d.Excerpt(0))
}

func TestDocumentsJSONRoundTrip(t *testing.T) {
	assert := require.New(t)
	docs := []Document{
		{ID: 1, Title: "Cats", Author: "Ann", Content: []string{"ca", "at"}, RawContent: "cat"},
		{ID: 2, Title: "Go", Content: []string{"go"}, RawContent: "go"},
	}
	var buf bytes.Buffer
	assert.NoError(WriteJSON(&buf, docs))
	assert.Contains(buf.String(), `"docs"`)

	got, err := ReadJSON(&buf)
	assert.NoError(err)
	assert.Equal(docs, got)

	_, err = ReadJSON(strings.NewReader(`{"docs":[{"id":3},{"id":3}]}`))
	assert.ErrorIs(err, apperrors.ErrDuplicateID)

	_, err = ReadJSON(strings.NewReader(`{"docs":[{"id":70000}]}`))
	assert.Error(err)
}
