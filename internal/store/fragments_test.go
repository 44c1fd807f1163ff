package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nsierrors "github.com/standardbeagle/nsi/internal/errors"
)

func TestParseFragmentName(t *testing.T) {
	source, date, index, ok := ParseFragmentName("bbc_2024-02-16_3.json")
	require.True(t, ok)
	assert.Equal(t, "bbc", source)
	assert.Equal(t, "2024-02-16", date)
	assert.Equal(t, 3, index)

	source, _, index, ok = ParseFragmentName("gb_news_2024-02-18_12.json")
	require.True(t, ok)
	assert.Equal(t, "gb_news", source)
	assert.Equal(t, 12, index)

	for _, name := range []string{
		"bbc_2024-02-16.json",
		"bbc_2024-02-16_3.csv",
		"readme.txt",
		"bbc_16-02-2024_3.json",
	} {
		_, _, _, ok := ParseFragmentName(name)
		assert.False(t, ok, "name %q should not parse", name)
	}
}

func writeFragmentFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

const articleJSON = `[
	{"doc_id": "7", "title": "Quick news", "date": "2024/02/16",
	 "content": "Brown bears hibernate.", "url": "https://example.com/7",
	 "hypertext": {"more": "https://example.com/img.png"}, "figcaption": {}}
]`

func TestDirStore_ListIndices(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "bbc_2024-02-16_2.json", articleJSON)
	writeFragmentFile(t, dir, "bbc_2024-02-16_0.json", articleJSON)
	writeFragmentFile(t, dir, "bbc_2024-02-16_10.json", articleJSON)
	writeFragmentFile(t, dir, "ind_2024-02-16_1.json", articleJSON)
	writeFragmentFile(t, dir, "bbc_2024-02-17_5.json", articleJSON)
	writeFragmentFile(t, dir, "notes.txt", "not a fragment")

	indices, err := NewDirStore(dir).ListIndices("bbc", "2024-02-16")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 10}, indices)
}

func TestDirStore_LoadBatch(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "bbc_2024-02-16_0.json",
		`[{"doc_id": "1", "title": "A", "date": "2024/02/16", "content": "one", "url": "u"}]`)
	writeFragmentFile(t, dir, "bbc_2024-02-16_1.json",
		`[{"doc_id": "2", "title": "B", "date": "2024/02/16", "content": "two", "url": "u"}]`)
	writeFragmentFile(t, dir, "bbc_2024-02-16_2.json",
		`[{"doc_id": "3", "title": "C", "date": "2024/02/16", "content": "three", "url": "u"}]`)

	batch, err := NewDirStore(dir).LoadBatch("bbc", "2024-02-16", 0, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, batch.DocIDs)
	assert.Equal(t, []int{0, 1}, batch.Indices["bbc"])
	require.Len(t, batch.Fragments["bbc"], 2)
	assert.Equal(t, "A", batch.Fragments["bbc"][0].Articles[0].Title)
}

func TestDirStore_LoadBatch_GapsAreNormal(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "bbc_2024-02-16_0.json",
		`[{"doc_id": "1", "title": "A", "date": "2024/02/16", "content": "one", "url": "u"}]`)
	writeFragmentFile(t, dir, "bbc_2024-02-16_4.json",
		`[{"doc_id": "2", "title": "B", "date": "2024/02/16", "content": "two", "url": "u"}]`)

	batch, err := NewDirStore(dir).LoadBatch("bbc", "2024-02-16", 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, batch.Indices["bbc"])
}

func TestDirStore_LoadBatch_StringifiedHypertext(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "bbc_2024-02-16_0.json",
		`[{"doc_id": "1", "title": "A", "date": "2024/02/16", "content": "one", "url": "u",
		   "hypertext": "{'read more': 'https://example.com/x'}"}]`)

	batch, err := NewDirStore(dir).LoadBatch("bbc", "2024-02-16", 0, 0)
	require.NoError(t, err)
	article := batch.Fragments["bbc"][0].Articles[0]
	assert.Equal(t, "https://example.com/x", article.Hypertext["read more"])
}

func TestDirStore_LoadBatch_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeFragmentFile(t, dir, "bbc_2024-02-16_0.json", `[{"doc_id": `)

	_, err := NewDirStore(dir).LoadBatch("bbc", "2024-02-16", 0, 0)
	var inputErr *nsierrors.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Input, "bbc_2024-02-16_0.json")
}

func TestDirStore_ListIndices_MissingDir(t *testing.T) {
	indices, err := NewDirStore(filepath.Join(t.TempDir(), "nope")).ListIndices("bbc", "2024-02-16")
	// doublestar treats an unreadable root as no matches, not a failure.
	require.NoError(t, err)
	assert.Empty(t, indices)
}
