package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/nsi/internal/debug"
	nsierrors "github.com/standardbeagle/nsi/internal/errors"
	"github.com/standardbeagle/nsi/internal/store"
)

// ChildExt is the extension of child and global index files.
const ChildExt = ".nsi"

// childNamePattern matches {source}_{YYYY-MM-DD}_{start}_{end}.nsi
var childNamePattern = regexp.MustCompile(`^(.+)_(\d{4}-\d{2}-\d{2})_(\d+)_(\d+)\.nsi$`)

// ChildFileName builds a child index file name for a fragment range.
func ChildFileName(source, date string, first, last int) string {
	return fmt.Sprintf("%s_%s_%d_%d%s", source, date, first, last, ChildExt)
}

// ParseChildFileName extracts the fragment range from a child file name.
func ParseChildFileName(name string) (source, date string, first, last int, err error) {
	m := childNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", 0, 0, nsierrors.NewInputError("parse child file name", name, fmt.Errorf("name does not match {source}_{date}_{start}_{end}%s", ChildExt))
	}
	first, _ = strconv.Atoi(m[3])
	last, _ = strconv.Atoi(m[4])
	return m[1], m[2], first, last, nil
}

// Manager produces child indexes per (source, date, range) and merges them
// into the global index. Builds resume: fragment indices already covered by
// a child file on disk are never re-indexed.
type Manager struct {
	fragments store.FragmentStore
	builder   *Builder
	childDir  string
}

// NewManager creates a manager writing child files under childDir.
func NewManager(fragments store.FragmentStore, builder *Builder, childDir string) *Manager {
	return &Manager{
		fragments: fragments,
		builder:   builder,
		childDir:  childDir,
	}
}

// MaxExistingEnd scans childDir for child files of (source, date) and
// returns the highest end index seen, or -1 when none exist.
func (m *Manager) MaxExistingEnd(source, date string) (int, error) {
	if _, err := os.Stat(m.childDir); os.IsNotExist(err) {
		return -1, nil
	}

	pattern := fmt.Sprintf("%s_%s_*_*%s", source, date, ChildExt)
	matches, err := doublestar.Glob(os.DirFS(m.childDir), pattern)
	if err != nil {
		return -1, nsierrors.NewFileError("list child indexes", m.childDir, err)
	}

	maxEnd := -1
	for _, name := range matches {
		src, dt, _, last, err := ParseChildFileName(name)
		if err != nil || src != source || dt != date {
			continue
		}
		if last > maxEnd {
			maxEnd = last
		}
	}
	return maxEnd, nil
}

// BuildChildren indexes all new fragments of (source, date) in chunks of
// interval fragments and writes one child file per chunk. Returns the paths
// written. A build failure leaves previously written child files intact, so
// the next run resumes after them.
func (m *Manager) BuildChildren(ctx context.Context, source, date string, interval int) ([]string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, nsierrors.NewInputError("parse date", date, err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", interval)
	}
	if err := os.MkdirAll(m.childDir, 0755); err != nil {
		return nil, nsierrors.NewFileError("create child index dir", m.childDir, err)
	}

	maxEnd, err := m.MaxExistingEnd(source, date)
	if err != nil {
		return nil, err
	}

	indices, err := m.fragments.ListIndices(source, date)
	if err != nil {
		return nil, err
	}

	// Resume: drop everything a previous run already covered.
	fresh := indices[:0:0]
	for _, idx := range indices {
		if idx > maxEnd {
			fresh = append(fresh, idx)
		}
	}
	debug.LogIndex("%s %s: %d fragments, %d new (resume after %d)\n", source, date, len(indices), len(fresh), maxEnd)

	var written []string
	for lo := 0; lo < len(fresh); lo += interval {
		hi := lo + interval
		if hi > len(fresh) {
			hi = len(fresh)
		}
		chunk := fresh[lo:hi]

		batch, err := m.fragments.LoadBatch(source, date, chunk[0], chunk[len(chunk)-1])
		if err != nil {
			return written, err
		}
		child, err := m.builder.Build(ctx, batch)
		if err != nil {
			return written, err
		}

		path := filepath.Join(m.childDir, ChildFileName(source, date, chunk[0], chunk[len(chunk)-1]))
		if err := WriteFile(path, child); err != nil {
			return written, err
		}
		debug.LogIndex("wrote child index %s (%d terms, %d docs)\n", path, child.TermCount(), child.Meta.DocumentSize)
		written = append(written, path)
	}
	return written, nil
}

// ListChildren returns every child index file under childDir.
func (m *Manager) ListChildren() ([]string, error) {
	if _, err := os.Stat(m.childDir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(m.childDir), "*"+ChildExt)
	if err != nil {
		return nil, nsierrors.NewFileError("list child indexes", m.childDir, err)
	}
	paths := make([]string, 0, len(matches))
	for _, name := range matches {
		if _, _, _, _, err := ParseChildFileName(name); err != nil {
			debug.LogIndex("skipping unrecognized file %s\n", name)
			continue
		}
		paths = append(paths, filepath.Join(m.childDir, name))
	}
	return paths, nil
}

// MergeGlobal loads the given child files and merges them into a single
// global store. Conflicting (term, docID) pairs keep the first-merged
// posting; conflicts are logged and counted, never fatal.
func (m *Manager) MergeGlobal(paths ...string) (*Store, error) {
	global := NewStore()
	conflicts := 0
	for _, path := range paths {
		child, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		conflicts += len(global.MergeChild(child))
	}
	if conflicts > 0 {
		debug.LogIndex("global merge finished with %d conflicts\n", conflicts)
	}
	return global, nil
}
