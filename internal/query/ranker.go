package query

import (
	"math"
	"sort"

	"github.com/standardbeagle/nsi/internal/analysis"
	"github.com/standardbeagle/nsi/internal/index"
)

// ScoredDoc is one ranked result row.
type ScoredDoc struct {
	DocID string
	Score float64
}

// Ranker scores free-text queries with TF-IDF over a frozen posting store.
type Ranker struct {
	store      *index.Store
	analyzer   *analysis.Analyzer
	maxResults int
}

// NewRanker creates a ranker returning at most maxResults rows per query.
func NewRanker(store *index.Store, analyzer *analysis.Analyzer, maxResults int) *Ranker {
	return &Ranker{
		store:      store,
		analyzer:   analyzer,
		maxResults: maxResults,
	}
}

// Rank analyzes the query, scores every document containing any query term
// and returns rows sorted by (-score, docID ascending), capped at
// maxResults. Terms absent from the index contribute nothing.
func (r *Ranker) Rank(queryText string) []ScoredDoc {
	terms := r.analyzer.Analyze(queryText)

	candidates := docSet{}
	for _, term := range terms {
		for docID := range r.store.Postings(term) {
			candidates[docID] = struct{}{}
		}
	}

	scored := make([]ScoredDoc, 0, len(candidates))
	for docID := range candidates {
		scored = append(scored, ScoredDoc{
			DocID: docID,
			Score: r.score(terms, docID),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return index.DocIDLess(scored[i].DocID, scored[j].DocID)
	})

	if len(scored) > r.maxResults {
		scored = scored[:r.maxResults]
	}
	return scored
}

// score sums (1 + log10 tf) * log10(N / df) over the query terms present in
// docID. Repeated query terms count once per occurrence in the query, as
// the sum runs over the term sequence.
func (r *Ranker) score(terms []string, docID string) float64 {
	n := float64(r.store.Meta.DocumentSize)
	total := 0.0
	for _, term := range terms {
		df := r.store.DocFrequency(term)
		if df == 0 {
			continue
		}
		positions := r.store.Positions(term, docID)
		if len(positions) == 0 {
			continue
		}
		tf := 1 + math.Log10(float64(len(positions)))
		idf := math.Log10(n / float64(df))
		total += tf * idf
	}
	return total
}
