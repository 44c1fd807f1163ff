package index

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/nsi/internal/analysis"
	"github.com/standardbeagle/nsi/internal/debug"
	nsierrors "github.com/standardbeagle/nsi/internal/errors"
	"github.com/standardbeagle/nsi/internal/types"
)

// Builder turns article batches into posting stores. Each source fans out
// into parallelism workers over contiguous fragment sub-batches; every
// worker fills a private store and the results merge at the join barrier.
// No store is shared while workers run.
type Builder struct {
	analyzer    *analysis.Analyzer
	parallelism int
}

// NewBuilder creates a builder. parallelism <= 0 auto-detects NumCPU.
func NewBuilder(analyzer *analysis.Analyzer, parallelism int) *Builder {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &Builder{analyzer: analyzer, parallelism: parallelism}
}

// Build assembles the positional inverted index for a batch. The document
// universe is taken from the batch up front, before workers start. A failed
// worker aborts the build for its source and the error surfaces; partial
// state is discarded with the store.
func (b *Builder) Build(ctx context.Context, batch *types.Batch) (*Store, error) {
	store := NewStore()
	store.SetUniverse(batch.DocIDs)

	for source, fragments := range batch.Fragments {
		start := time.Now()
		if err := b.buildSource(ctx, store, fragments); err != nil {
			return nil, nsierrors.NewBuildError(source, err)
		}
		debug.LogIndex("source %s: %d fragments indexed in %s\n", source, len(fragments), time.Since(start))
	}
	return store, nil
}

// buildSource indexes one source's fragments into dst.
func (b *Builder) buildSource(ctx context.Context, dst *Store, fragments []types.Fragment) error {
	subBatches := partition(fragments, b.parallelism)
	locals := make([]*Store, len(subBatches))

	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range subBatches {
		i, sub := i, sub
		g.Go(func() error {
			local := NewStore()
			for fi := range sub {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				b.indexFragment(local, &sub[fi])
			}
			locals[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Join barrier: locals cover disjoint docIDs by construction, so the
	// merge order does not matter.
	for _, local := range locals {
		dst.MergeLocal(local)
	}
	return nil
}

// indexFragment records every term occurrence of every article. Positions
// are 1-based offsets into the analyzed token stream of title + "\n" +
// content.
func (b *Builder) indexFragment(local *Store, fragment *types.Fragment) {
	for ai := range fragment.Articles {
		article := &fragment.Articles[ai]
		terms := b.analyzer.Analyze(article.IndexText())
		for pos, term := range terms {
			local.AddOccurrence(term, article.DocID, pos+1)
		}
	}
}

// partition cuts fragments into up to n contiguous sub-batches of equal
// size; the division remainder is appended to the last sub-batch so
// sub-batch boundaries stay contiguous.
func partition(fragments []types.Fragment, n int) [][]types.Fragment {
	if len(fragments) == 0 {
		return nil
	}
	if n > len(fragments) {
		n = len(fragments)
	}
	size := len(fragments) / n
	batches := make([][]types.Fragment, 0, n)
	for i := 0; i < n; i++ {
		lo := i * size
		hi := lo + size
		if i == n-1 {
			hi = len(fragments)
		}
		batches = append(batches, fragments[lo:hi])
	}
	return batches
}
