package index

import (
	"log"
	"sort"
	"strconv"

	nsierrors "github.com/standardbeagle/nsi/internal/errors"
)

// Meta describes the document universe a store covers. DocIDs is the
// complement target for NOT queries and is assembled before any parallel
// build work starts.
type Meta struct {
	DocumentSize int      `msgpack:"document_size" json:"document_size"`
	DocIDs       []string `msgpack:"doc_ids_list" json:"doc_ids_list"`
}

// Store is the positional inverted index: term -> docID -> ascending
// positions. Built monotonically, frozen before serialization, immutable
// after load. Writers own the store exclusively; concurrent readers need no
// locking.
type Store struct {
	Meta  Meta                        `msgpack:"meta" json:"meta"`
	Index map[string]map[string][]int `msgpack:"index" json:"index"`
}

// NewStore returns an empty store with no universe.
func NewStore() *Store {
	return &Store{
		Index: make(map[string]map[string][]int),
	}
}

// SetUniverse records the document universe. Must be called before the
// store is queried with NOT semantics.
func (s *Store) SetUniverse(docIDs []string) {
	s.Meta.DocumentSize = len(docIDs)
	s.Meta.DocIDs = docIDs
}

// AddOccurrence appends a position for (term, docID). The caller guarantees
// positions arrive in ascending order per (term, docID); the builder walks
// each document left to right so this holds by construction.
func (s *Store) AddOccurrence(term, docID string, position int) {
	docs, ok := s.Index[term]
	if !ok {
		docs = make(map[string][]int)
		s.Index[term] = docs
	}
	docs[docID] = append(docs[docID], position)
}

// Postings returns the docID -> positions map for a term, or nil when the
// term is absent. The returned map is shared; callers must not mutate it.
func (s *Store) Postings(term string) map[string][]int {
	return s.Index[term]
}

// Positions returns the position list for (term, docID), nil when absent.
func (s *Store) Positions(term, docID string) []int {
	if docs, ok := s.Index[term]; ok {
		return docs[docID]
	}
	return nil
}

// DocFrequency returns the number of documents containing term.
func (s *Store) DocFrequency(term string) int {
	return len(s.Index[term])
}

// TermCount returns the vocabulary size.
func (s *Store) TermCount() int {
	return len(s.Index)
}

// MergeLocal folds another store's postings into this one by concatenating
// position lists. The two stores are expected to cover disjoint docIDs (the
// builder partitions fragments, so each document is seen by exactly one
// worker); an overlap indicates an indexer bug and is logged, but the lists
// are still concatenated.
func (s *Store) MergeLocal(other *Store) {
	for term, docs := range other.Index {
		dst, ok := s.Index[term]
		if !ok {
			s.Index[term] = docs
			continue
		}
		for docID, positions := range docs {
			if existing, seen := dst[docID]; seen && len(existing) > 0 {
				log.Printf("WARNING: local merge saw document %s twice under term %q", docID, term)
			}
			dst[docID] = append(dst[docID], positions...)
		}
	}
}

// MergeChild folds a child index into this (global) store. Child docIDs
// must be disjoint from the global universe; a colliding (term, docID)
// keeps the existing global posting and is reported as a conflict. The
// merge always continues and the child's universe is appended.
func (s *Store) MergeChild(child *Store) []error {
	var conflicts []error
	for term, docs := range child.Index {
		dst, ok := s.Index[term]
		if !ok {
			s.Index[term] = docs
			continue
		}
		for docID, positions := range docs {
			if _, seen := dst[docID]; seen {
				log.Printf("WARNING: trying to add new documents under the same doc ID: %q %s", term, docID)
				conflicts = append(conflicts, nsierrors.NewMergeConflictError(term, docID))
				continue
			}
			dst[docID] = positions
		}
	}
	s.Meta.DocIDs = append(s.Meta.DocIDs, child.Meta.DocIDs...)
	s.Meta.DocumentSize = len(s.Meta.DocIDs)
	return conflicts
}

// Terms returns the vocabulary sorted in lexicographic byte order.
func (s *Store) Terms() []string {
	terms := make([]string, 0, len(s.Index))
	for term := range s.Index {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// DocsFor returns the docIDs holding term, sorted numerically ascending.
func (s *Store) DocsFor(term string) []string {
	docs := s.Index[term]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	SortDocIDs(ids)
	return ids
}

// SortDocIDs orders docIDs by their integer value ascending. IDs that do
// not parse as integers sort after all numeric ones, lexicographically.
func SortDocIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return DocIDLess(ids[i], ids[j])
	})
}

// DocIDLess is the docID ordering used everywhere results are emitted.
func DocIDLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}
