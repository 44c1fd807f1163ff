package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/nsi/internal/debug"
	nsierrors "github.com/standardbeagle/nsi/internal/errors"
	"github.com/standardbeagle/nsi/internal/types"
)

// FragmentStore provides crawler output to the index builder. Fragments are
// identified by (source, date, index); a batch is a contiguous index range.
type FragmentStore interface {
	ListIndices(source, date string) ([]int, error)
	LoadBatch(source, date string, start, end int) (*types.Batch, error)
}

// fragmentNamePattern matches crawler drops: {source}_{YYYY-MM-DD}_{index}.json
var fragmentNamePattern = regexp.MustCompile(`^(.+)_(\d{4}-\d{2}-\d{2})_(\d+)\.json$`)

// ParseFragmentName splits a fragment file name into its parts.
func ParseFragmentName(name string) (source, date string, index int, ok bool) {
	m := fragmentNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", 0, false
	}
	index, err := strconv.Atoi(m[3])
	if err != nil {
		return "", "", 0, false
	}
	return m[1], m[2], index, true
}

// FragmentFileName builds the canonical drop file name.
func FragmentFileName(source, date string, index int) string {
	return fmt.Sprintf("%s_%s_%d.json", source, date, index)
}

// DirStore reads fragments from a flat drop directory.
type DirStore struct {
	root string
}

// NewDirStore creates a fragment store over root.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// ListIndices enumerates the fragment indices present for (source, date),
// sorted ascending.
func (d *DirStore) ListIndices(source, date string) ([]int, error) {
	pattern := fmt.Sprintf("%s_%s_*.json", source, date)
	matches, err := doublestar.Glob(os.DirFS(d.root), pattern)
	if err != nil {
		return nil, nsierrors.NewFileError("list fragments", d.root, err)
	}

	indices := make([]int, 0, len(matches))
	for _, name := range matches {
		src, dt, idx, ok := ParseFragmentName(name)
		if !ok || src != source || dt != date {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	debug.LogStore("%s %s: %d fragments on disk\n", source, date, len(indices))
	return indices, nil
}

// LoadBatch loads the fragments of (source, date) whose index falls in
// [start, end]. Missing indices inside the range are skipped; crawler gaps
// are normal. The batch's docID universe is assembled here, before any
// parallel build work sees it.
func (d *DirStore) LoadBatch(source, date string, start, end int) (*types.Batch, error) {
	indices, err := d.ListIndices(source, date)
	if err != nil {
		return nil, err
	}

	batch := types.NewBatch()
	for _, idx := range indices {
		if idx < start || idx > end {
			continue
		}
		fragment, err := d.loadFragment(source, date, idx)
		if err != nil {
			return nil, err
		}
		batch.AddFragment(*fragment)
	}
	return batch, nil
}

// loadFragment decodes one drop file. Malformed JSON is an input error
// naming the file.
func (d *DirStore) loadFragment(source, date string, index int) (*types.Fragment, error) {
	path := filepath.Join(d.root, FragmentFileName(source, date, index))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nsierrors.NewFileError("read fragment", path, err)
	}

	var articles []types.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, nsierrors.NewInputError("decode fragment", path, err)
	}

	return &types.Fragment{
		Source:   source,
		Date:     date,
		Index:    index,
		Articles: articles,
	}, nil
}
