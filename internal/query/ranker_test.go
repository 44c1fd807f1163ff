package query

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nsi/internal/index"
	"github.com/standardbeagle/nsi/internal/types"
)

func corpusStore(t *testing.T) *index.Store {
	t.Helper()
	batch := types.NewBatch()
	batch.AddFragment(types.Fragment{
		Source: "bbc",
		Date:   "2024-02-16",
		Index:  0,
		Articles: []types.Article{
			{DocID: "1", Title: "The Quick Brown Fox", Content: "Jumps over the lazy dog."},
			{DocID: "2", Title: "Quick news", Content: "Brown bears hibernate in winter."},
			{DocID: "3", Title: "Dog tales", Content: "Every dog has its day."},
		},
	})
	store, err := index.NewBuilder(testAnalyzer(), 2).Build(context.Background(), batch)
	require.NoError(t, err)
	return store
}

func TestRank_Ordering(t *testing.T) {
	ranker := NewRanker(corpusStore(t), testAnalyzer(), 150)
	results := ranker.Rank("quick brown dog")

	require.Len(t, results, 3)
	assert.Equal(t, "1", results[0].DocID, "three matching terms score highest")
	assert.Equal(t, "2", results[1].DocID)
	assert.Equal(t, "3", results[2].DocID)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRank_Scores(t *testing.T) {
	ranker := NewRanker(corpusStore(t), testAnalyzer(), 150)
	results := ranker.Rank("quick brown dog")
	require.Len(t, results, 3)

	// df(quick)=df(brown)=df(dog)=2, N=3. Every tf is 1 except dog in d3
	// where tf=2.
	idf := math.Log10(3.0 / 2.0)
	assert.InDelta(t, 3*idf, results[0].Score, 1e-9)
	assert.InDelta(t, 2*idf, results[1].Score, 1e-9)
	assert.InDelta(t, (1+math.Log10(2))*idf, results[2].Score, 1e-9)
}

func TestRank_CapsResults(t *testing.T) {
	ranker := NewRanker(corpusStore(t), testAnalyzer(), 2)
	results := ranker.Rank("quick brown dog")
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].DocID)
	assert.Equal(t, "2", results[1].DocID)
}

func TestRank_TieBreaksByDocID(t *testing.T) {
	ranker := NewRanker(corpusStore(t), testAnalyzer(), 150)

	// "quick" scores d1 and d2 identically: both tf=1.
	results := ranker.Rank("quick")
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].DocID)
	assert.Equal(t, "2", results[1].DocID)
	assert.InDelta(t, results[0].Score, results[1].Score, 1e-12)
}

func TestRank_UnknownTermsContributeNothing(t *testing.T) {
	ranker := NewRanker(corpusStore(t), testAnalyzer(), 150)

	assert.Empty(t, ranker.Rank("zebra"))

	with := ranker.Rank("dog")
	withNoise := ranker.Rank("dog zebra")
	require.Equal(t, len(with), len(withNoise))
	for i := range with {
		assert.Equal(t, with[i].DocID, withNoise[i].DocID)
		assert.InDelta(t, with[i].Score, withNoise[i].Score, 1e-12)
	}
}

func TestRank_StopWordsIgnored(t *testing.T) {
	ranker := NewRanker(corpusStore(t), testAnalyzer(), 150)

	plain := ranker.Rank("dog")
	stopped := ranker.Rank("the dog")
	require.Equal(t, len(plain), len(stopped))
	for i := range plain {
		assert.InDelta(t, plain[i].Score, stopped[i].Score, 1e-12)
	}
}

func TestRank_EmptyQuery(t *testing.T) {
	ranker := NewRanker(corpusStore(t), testAnalyzer(), 150)
	assert.Empty(t, ranker.Rank(""))
}
