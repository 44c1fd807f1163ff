package query

import (
	"sort"

	"github.com/standardbeagle/nsi/internal/analysis"
	"github.com/standardbeagle/nsi/internal/debug"
	"github.com/standardbeagle/nsi/internal/index"
)

// docSet is the evaluator's working representation of a docID set.
type docSet map[string]struct{}

// Engine evaluates boolean queries against a frozen posting store. The
// store and the cached universe are read-only, so one engine serves
// concurrent queries.
type Engine struct {
	store    *index.Store
	compiler *Compiler
	universe docSet
}

// NewEngine creates an evaluator over store. The analyzer must use the
// options the index was built with.
func NewEngine(store *index.Store, analyzer *analysis.Analyzer) *Engine {
	universe := make(docSet, len(store.Meta.DocIDs))
	for _, id := range store.Meta.DocIDs {
		universe[id] = struct{}{}
	}
	return &Engine{
		store:    store,
		compiler: NewCompiler(analyzer),
		universe: universe,
	}
}

// Evaluate runs one boolean query and returns the matching docIDs sorted
// numerically ascending. Invalid queries log a diagnostic and return no
// results; missing terms resolve to empty sets, not errors.
func (e *Engine) Evaluate(queryText string) []string {
	postfix, err := e.compiler.Compile(queryText)
	if err != nil {
		debug.LogQuery("rejected query %q: %v\n", queryText, err)
		return nil
	}

	var stack []docSet
	pop := func() (docSet, bool) {
		if len(stack) == 0 {
			return nil, false
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, true
	}

	for _, tok := range postfix {
		if !tok.IsOperator() {
			stack = append(stack, e.resolve(tok))
			continue
		}
		switch tok.Text {
		case "NOT":
			operand, ok := pop()
			if !ok {
				debug.LogQuery("rejected query %q: NOT missing operand\n", queryText)
				return nil
			}
			stack = append(stack, e.complement(operand))
		default:
			right, okr := pop()
			left, okl := pop()
			if !okr || !okl {
				debug.LogQuery("rejected query %q: %s missing operands\n", queryText, tok.Text)
				return nil
			}
			if tok.Text == "AND" {
				stack = append(stack, intersect(left, right))
			} else {
				stack = append(stack, union(left, right))
			}
		}
	}

	result, ok := pop()
	if !ok || len(stack) != 0 {
		debug.LogQuery("rejected query %q: unbalanced evaluation\n", queryText)
		return nil
	}
	return sortedIDs(result)
}

// resolve turns an operand token into its docID set.
func (e *Engine) resolve(tok Token) docSet {
	switch tok.Kind {
	case TokenWord:
		return e.termDocs(tok.Text)
	case TokenPhrase:
		return e.phraseDocs(tok.Terms)
	case TokenProximity:
		return e.proximityDocs(tok.Distance, tok.Terms[0], tok.Terms[1])
	}
	return docSet{}
}

// termDocs returns all documents containing term. The empty term (a stop
// word operand) and missing terms resolve to the empty set.
func (e *Engine) termDocs(term string) docSet {
	set := docSet{}
	if term == "" {
		return set
	}
	for docID := range e.store.Postings(term) {
		set[docID] = struct{}{}
	}
	return set
}

// phraseDocs matches documents where the terms occur at consecutive
// positions in order. An empty phrase (all stop words) matches nothing.
func (e *Engine) phraseDocs(terms []string) docSet {
	set := docSet{}
	if len(terms) == 0 {
		return set
	}
	first := e.store.Postings(terms[0])
	for docID, positions := range first {
		for _, pos := range positions {
			if e.consecutiveFrom(terms, docID, pos) {
				set[docID] = struct{}{}
				break
			}
		}
	}
	return set
}

// consecutiveFrom checks terms[1:] at pos+1, pos+2, ... in docID.
func (e *Engine) consecutiveFrom(terms []string, docID string, pos int) bool {
	for i := 1; i < len(terms); i++ {
		if !containsPosition(e.store.Positions(terms[i], docID), pos+i) {
			return false
		}
	}
	return true
}

// containsPosition binary-searches an ascending position list.
func containsPosition(positions []int, pos int) bool {
	i := sort.SearchInts(positions, pos)
	return i < len(positions) && positions[i] == pos
}

// proximityDocs matches documents where w1 and w2 occur within n positions
// of each other, in either order.
func (e *Engine) proximityDocs(n int, w1, w2 string) docSet {
	set := docSet{}
	if w1 == "" || w2 == "" {
		return set
	}
	for docID, p1 := range e.store.Postings(w1) {
		p2 := e.store.Positions(w2, docID)
		if len(p2) == 0 {
			continue
		}
		if withinDistance(p1, p2, n) {
			set[docID] = struct{}{}
		}
	}
	return set
}

// withinDistance reports whether two ascending position lists hold a pair
// at most n apart. Linear merge: always advance the smaller head.
func withinDistance(a, b []int, n int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		diff := a[i] - b[j]
		if diff < 0 {
			diff = -diff
		}
		if diff <= n {
			return true
		}
		if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	return false
}

// complement returns universe \ set, the NOT semantics.
func (e *Engine) complement(set docSet) docSet {
	out := make(docSet, len(e.universe))
	for docID := range e.universe {
		if _, ok := set[docID]; !ok {
			out[docID] = struct{}{}
		}
	}
	return out
}

func intersect(a, b docSet) docSet {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := docSet{}
	for docID := range a {
		if _, ok := b[docID]; ok {
			out[docID] = struct{}{}
		}
	}
	return out
}

func union(a, b docSet) docSet {
	out := make(docSet, len(a)+len(b))
	for docID := range a {
		out[docID] = struct{}{}
	}
	for docID := range b {
		out[docID] = struct{}{}
	}
	return out
}

func sortedIDs(set docSet) []string {
	ids := make([]string, 0, len(set))
	for docID := range set {
		ids = append(ids, docID)
	}
	index.SortDocIDs(ids)
	return ids
}
