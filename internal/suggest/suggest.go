package suggest

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/nsi/internal/index"
)

// MaxEditDistance bounds the candidate shortlist. Two edits covers the
// common typo classes (transposition, missing or doubled letter).
const MaxEditDistance = 2

// Suggester proposes in-vocabulary replacements for query terms that miss
// the index. It is a read-only view over a frozen posting store.
type Suggester struct {
	terms []string
	df    map[string]int
}

// New builds a suggester from the store's vocabulary.
func New(store *index.Store) *Suggester {
	terms := store.Terms()
	df := make(map[string]int, len(terms))
	for _, term := range terms {
		df[term] = store.DocFrequency(term)
	}
	return &Suggester{terms: terms, df: df}
}

type candidate struct {
	term       string
	similarity float32
	df         int
}

// Suggest returns up to max vocabulary terms within MaxEditDistance of
// term, ranked by Jaro-Winkler similarity, then document frequency, then
// term order. An in-vocabulary term needs no suggestion and returns nil.
func (s *Suggester) Suggest(term string, max int) []string {
	if max <= 0 {
		return nil
	}
	if _, ok := s.df[term]; ok {
		return nil
	}

	var candidates []candidate
	for _, vocab := range s.terms {
		if edlib.LevenshteinDistance(term, vocab) > MaxEditDistance {
			continue
		}
		similarity, err := edlib.StringsSimilarity(term, vocab, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			term:       vocab,
			similarity: similarity,
			df:         s.df[vocab],
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		if candidates[i].df != candidates[j].df {
			return candidates[i].df > candidates[j].df
		}
		return candidates[i].term < candidates[j].term
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.term
	}
	return out
}
