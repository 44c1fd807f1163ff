package analysis

import (
	"os"
	"strings"
	"unicode"

	"github.com/surgebase/porter2"

	nsierrors "github.com/standardbeagle/nsi/internal/errors"
)

// Options selects the analysis steps applied after tokenization. Index and
// query must run with identical options or terms will not line up.
type Options struct {
	Stopping bool
	Stemming bool
}

// Analyzer turns raw article or query text into index terms. It holds the
// stop-word set loaded once at startup and is safe for concurrent use; all
// methods are pure functions of their input.
type Analyzer struct {
	opts      Options
	stopWords map[string]struct{}
}

// New builds an analyzer. stopWords may be nil when stopping is disabled.
func New(opts Options, stopWords []string) *Analyzer {
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Analyzer{opts: opts, stopWords: set}
}

// Options returns the analysis options this analyzer was built with.
func (a *Analyzer) Options() Options {
	return a.opts
}

// LoadStopWords reads a newline-separated UTF-8 stop-word file.
func LoadStopWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nsierrors.NewFileError("read stop words", path, err)
	}
	lines := strings.Split(string(data), "\n")
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			words = append(words, line)
		}
	}
	return words, nil
}

// isWordRune reports whether r is part of a token: letters, digits and
// underscore. Everything else separates tokens.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits text on maximal runs of word characters. Empty tokens do
// not occur; the result preserves input order.
func Tokenize(text string) []string {
	var tokens []string
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// IsStopWord reports membership in the configured stop-word set. The check
// is on the lowercased token regardless of the stopping option.
func (a *Analyzer) IsStopWord(token string) bool {
	_, ok := a.stopWords[strings.ToLower(token)]
	return ok
}

// AnalyzeToken lowercases one token and applies stopping and stemming.
// Returns "" when the token is dropped as a stop word.
func (a *Analyzer) AnalyzeToken(token string) string {
	token = strings.ToLower(token)
	if a.opts.Stopping {
		if _, ok := a.stopWords[token]; ok {
			return ""
		}
	}
	if a.opts.Stemming {
		token = porter2.Stem(token)
	}
	return token
}

// Analyze converts text into the canonical term sequence: tokenize,
// lowercase, stop, stem. Dropped stop words do not occupy positions.
func (a *Analyzer) Analyze(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		term := a.AnalyzeToken(tok)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// AnalyzeQueryToken rewrites a query operand token. The boolean operator
// keywords pass through verbatim so the compiler still sees them; every
// other token is analyzed like index text. A stop word rewrites to "" and
// stays in the query as an always-empty operand.
func (a *Analyzer) AnalyzeQueryToken(token string) string {
	switch token {
	case "AND", "OR", "NOT":
		return token
	}
	return a.AnalyzeToken(token)
}
