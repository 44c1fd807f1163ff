package query

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/standardbeagle/nsi/internal/debug"
	nsierrors "github.com/standardbeagle/nsi/internal/errors"
)

// FileQuery is one line of a query input file: "<queryId> <queryText>".
type FileQuery struct {
	ID   string
	Text string
}

// ReadQueries parses a query file, one query per line. Lines without a
// query text are skipped with a diagnostic.
func ReadQueries(path string) ([]FileQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nsierrors.NewFileError("read queries", path, err)
	}
	defer f.Close()

	var queries []FileQuery
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, text, found := strings.Cut(line, " ")
		if !found || strings.TrimSpace(text) == "" {
			debug.LogQuery("skipping malformed query line %q in %s\n", line, path)
			continue
		}
		queries = append(queries, FileQuery{ID: id, Text: strings.TrimSpace(text)})
	}
	if err := scanner.Err(); err != nil {
		return nil, nsierrors.NewFileError("read queries", path, err)
	}
	return queries, nil
}

// RunBooleanFile evaluates every query in the file and writes
// "<queryId>,<docId>" rows, docIDs ascending per query.
func RunBooleanFile(engine *Engine, queriesPath string, w io.Writer) error {
	queries, err := ReadQueries(queriesPath)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, q := range queries {
		for _, docID := range engine.Evaluate(q.Text) {
			if _, err := fmt.Fprintf(bw, "%s,%s\n", q.ID, docID); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// RunRankedFile scores every query in the file and writes
// "<queryId>,<docId>,<score>" rows with four-decimal scores.
func RunRankedFile(ranker *Ranker, queriesPath string, w io.Writer) error {
	queries, err := ReadQueries(queriesPath)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, q := range queries {
		for _, doc := range ranker.Rank(q.Text) {
			if _, err := fmt.Fprintf(bw, "%s,%s,%.4f\n", q.ID, doc.DocID, doc.Score); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
