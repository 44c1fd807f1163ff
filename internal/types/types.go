package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StringMap holds the crawler's hypertext/figcaption payloads. Crawlers emit
// the field either as a JSON object or as a stringified object using single
// quotes; both decode to the same map.
type StringMap map[string]string

// UnmarshalJSON accepts an object, a quoted object string, or null.
func (m *StringMap) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = nil
		return nil
	}

	if data[0] == '{' {
		var direct map[string]string
		if err := json.Unmarshal(data, &direct); err != nil {
			return err
		}
		*m = direct
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("hypertext field is neither object nor string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*m = StringMap{}
		return nil
	}
	// Crawlers serialize python dicts with single quotes.
	normalized := strings.ReplaceAll(raw, "'", `"`)
	var parsed map[string]string
	if err := json.Unmarshal([]byte(normalized), &parsed); err != nil {
		return fmt.Errorf("stringified map does not parse: %w", err)
	}
	*m = parsed
	return nil
}

// Article is a single crawled news article.
type Article struct {
	DocID      string    `json:"doc_id"`
	Title      string    `json:"title"`
	Date       string    `json:"date"` // YYYY/MM/DD
	Content    string    `json:"content"`
	URL        string    `json:"url"`
	Hypertext  StringMap `json:"hypertext"`
	Figcaption StringMap `json:"figcaption"`
}

// IndexText returns the canonical text used for position numbering.
func (a *Article) IndexText() string {
	return a.Title + "\n" + a.Content
}

// Fragment is one crawler drop: the articles of a single (source, date, index)
// file.
type Fragment struct {
	Source   string
	Date     string // YYYY-MM-DD
	Index    int
	Articles []Article
}

// Batch groups the fragments loaded for one build run, keyed by source.
// DocIDs is the full document universe of the batch and is assembled before
// any parallel work starts.
type Batch struct {
	DocIDs    []string
	Indices   map[string][]int
	Fragments map[string][]Fragment
}

// NewBatch returns an empty batch with initialized maps.
func NewBatch() *Batch {
	return &Batch{
		Indices:   make(map[string][]int),
		Fragments: make(map[string][]Fragment),
	}
}

// AddFragment appends a fragment and records its articles in the universe.
func (b *Batch) AddFragment(f Fragment) {
	b.Indices[f.Source] = append(b.Indices[f.Source], f.Index)
	b.Fragments[f.Source] = append(b.Fragments[f.Source], f)
	for i := range f.Articles {
		b.DocIDs = append(b.DocIDs, f.Articles[i].DocID)
	}
}
