package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nsi/internal/analysis"
	nsierrors "github.com/standardbeagle/nsi/internal/errors"
	"github.com/standardbeagle/nsi/internal/types"
)

var corpusStopWords = []string{"the", "over", "in", "its", "has", "every"}

// corpusBatch is the three-document corpus used across the engine tests.
func corpusBatch() *types.Batch {
	batch := types.NewBatch()
	batch.AddFragment(types.Fragment{
		Source: "bbc",
		Date:   "2024-02-16",
		Index:  0,
		Articles: []types.Article{
			{DocID: "1", Title: "The Quick Brown Fox", Content: "Jumps over the lazy dog."},
			{DocID: "2", Title: "Quick news", Content: "Brown bears hibernate in winter."},
		},
	})
	batch.AddFragment(types.Fragment{
		Source: "bbc",
		Date:   "2024-02-16",
		Index:  1,
		Articles: []types.Article{
			{DocID: "3", Title: "Dog tales", Content: "Every dog has its day."},
		},
	})
	return batch
}

func corpusAnalyzer() *analysis.Analyzer {
	return analysis.New(analysis.Options{Stopping: true, Stemming: true}, corpusStopWords)
}

func buildCorpus(t *testing.T, parallelism int) *Store {
	t.Helper()
	builder := NewBuilder(corpusAnalyzer(), parallelism)
	store, err := builder.Build(context.Background(), corpusBatch())
	require.NoError(t, err)
	return store
}

func TestBuilder_Universe(t *testing.T) {
	store := buildCorpus(t, 2)
	assert.Equal(t, []string{"1", "2", "3"}, store.Meta.DocIDs)
	assert.Equal(t, 3, store.Meta.DocumentSize)
}

func TestBuilder_Postings(t *testing.T) {
	store := buildCorpus(t, 2)

	// "dog" appears in d1 and d3.
	assert.Equal(t, []string{"1", "3"}, store.DocsFor("dog"))

	// d1 analyzes to quick brown fox jump lazi dog: "dog" lands at 6.
	assert.Equal(t, []int{6}, store.Positions("dog", "1"))

	// d3: dog(1) tale(2) dog(3) day(4) after stop removal.
	assert.Equal(t, []int{1, 3}, store.Positions("dog", "3"))

	// Stemming folds "bears" into "bear".
	assert.Equal(t, []string{"2"}, store.DocsFor("bear"))
	assert.Empty(t, store.DocsFor("bears"))
}

func TestBuilder_PositionsAscendingFromOne(t *testing.T) {
	store := buildCorpus(t, 4)
	for _, term := range store.Terms() {
		for _, docID := range store.DocsFor(term) {
			positions := store.Positions(term, docID)
			require.NotEmpty(t, positions)
			prev := 0
			for _, p := range positions {
				require.Greater(t, p, prev, "term %q doc %s", term, docID)
				prev = p
			}
		}
	}
}

func TestBuilder_ParallelismInvariant(t *testing.T) {
	// The index is the same value regardless of worker count.
	sequential := buildCorpus(t, 1)
	for _, parallelism := range []int{2, 4, 8} {
		parallel := buildCorpus(t, parallelism)
		require.Equal(t, sequential.Meta, parallel.Meta)
		require.Equal(t, sequential.Index, parallel.Index)
	}
}

func TestBuilder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := NewBuilder(corpusAnalyzer(), 2)
	_, err := builder.Build(ctx, corpusBatch())
	require.Error(t, err)

	var buildErr *nsierrors.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "bbc", buildErr.Source)
}

func TestBuilder_EmptyBatch(t *testing.T) {
	builder := NewBuilder(corpusAnalyzer(), 2)
	store, err := builder.Build(context.Background(), types.NewBatch())
	require.NoError(t, err)
	assert.Equal(t, 0, store.TermCount())
	assert.Equal(t, 0, store.Meta.DocumentSize)
}

func TestPartition(t *testing.T) {
	fragments := make([]types.Fragment, 7)
	for i := range fragments {
		fragments[i].Index = i
	}

	tests := []struct {
		name    string
		workers int
		want    [][]int // fragment indices per sub-batch
	}{
		{"remainder on last", 3, [][]int{{0, 1}, {2, 3}, {4, 5, 6}}},
		{"single worker", 1, [][]int{{0, 1, 2, 3, 4, 5, 6}}},
		{"more workers than fragments", 10, [][]int{{0}, {1}, {2}, {3}, {4}, {5}, {6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := partition(fragments, tt.workers)
			require.Len(t, batches, len(tt.want))
			for i, sub := range batches {
				got := make([]int, len(sub))
				for j, f := range sub {
					got[j] = f.Index
				}
				assert.Equal(t, tt.want[i], got)
			}
		})
	}
}

func TestPartition_Empty(t *testing.T) {
	assert.Nil(t, partition(nil, 4))
}
