package search

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paneapp/pane-server/internal/browse"
)

func setupTestIndex(t *testing.T) *ListingIndex {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	index, err := NewListingIndex(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func fileItem(name string, size int64, isDir bool) *browse.Item {
	return &browse.Item{
		Metadata: browse.Metadata{
			Name:    name,
			Size:    size,
			ModTime: time.Now(),
			IsDir:   isDir,
			Hidden:  len(name) > 0 && name[0] == '.',
		},
		Visible: true,
	}
}

func TestNewListingIndex_Empty(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestListingIndex_IndexItem(t *testing.T) {
	index := setupTestIndex(t)

	err := index.IndexItem(1, fileItem("report.pdf", 2048, false))
	require.NoError(t, err)

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestListingIndex_IndexItems_Batch(t *testing.T) {
	index := setupTestIndex(t)

	items := map[int]*browse.Item{
		1: fileItem("alpha.txt", 10, false),
		2: fileItem("beta.txt", 20, false),
		3: fileItem("photos", 0, true),
	}

	require.NoError(t, index.IndexItems(items))

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestListingIndex_RemoveItem(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("a.txt", 1, false)))
	require.NoError(t, index.IndexItem(2, fileItem("b.txt", 2, false)))

	require.NoError(t, index.RemoveItem(1))

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestListingIndex_Search_ByName(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("quarterly report.pdf", 100, false)))
	require.NoError(t, index.IndexItem(2, fileItem("holiday photos", 0, true)))
	require.NoError(t, index.IndexItem(3, fileItem("notes.txt", 50, false)))

	params := DefaultParams()
	params.Query = "report"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, 1, result.Hits[0].Index)
	assert.Equal(t, "quarterly report.pdf", result.Hits[0].Name)
	assert.Equal(t, KindFile, result.Hits[0].Kind)
	assert.Equal(t, "pdf", result.Hits[0].Ext)
}

func TestListingIndex_Search_PrefixMatch(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("readme.md", 10, false)))
	require.NoError(t, index.IndexItem(2, fileItem("changelog.md", 10, false)))

	params := DefaultParams()
	params.Query = "read"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "readme.md", result.Hits[0].Name)
}

func TestListingIndex_Search_KindFilter(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("docs", 0, true)))
	require.NoError(t, index.IndexItem(2, fileItem("docs.zip", 500, false)))

	params := DefaultParams()
	params.Query = "docs"
	params.Kind = "dir"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, KindDir, result.Hits[0].Kind)
}

func TestListingIndex_Search_ExtFilter(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("a.go", 10, false)))
	require.NoError(t, index.IndexItem(2, fileItem("b.go", 10, false)))
	require.NoError(t, index.IndexItem(3, fileItem("c.txt", 10, false)))

	params := DefaultParams()
	params.Exts = []string{"go"}

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestListingIndex_Search_HiddenExcludedByDefault(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem(".env", 10, false)))
	require.NoError(t, index.IndexItem(2, fileItem("env.example", 10, false)))

	params := DefaultParams()
	params.Query = "env"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "env.example", result.Hits[0].Name)

	params.IncludeHidden = true
	result, err = index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
}

func TestListingIndex_Search_SizeRange(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("small.bin", 100, false)))
	require.NoError(t, index.IndexItem(2, fileItem("large.bin", 10_000, false)))

	params := DefaultParams()
	params.MinSize = 1000

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "large.bin", result.Hits[0].Name)
}

func TestListingIndex_Search_SortByName(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("zebra.txt", 10, false)))
	require.NoError(t, index.IndexItem(2, fileItem("apple.txt", 10, false)))

	params := DefaultParams()
	params.SortBy = "name"
	params.SortOrder = "asc"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "apple.txt", result.Hits[0].Name)
}

func TestListingIndex_Search_Facets(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("a.go", 10, false)))
	require.NoError(t, index.IndexItem(2, fileItem("b.go", 10, false)))
	require.NoError(t, index.IndexItem(3, fileItem("c.txt", 10, false)))
	require.NoError(t, index.IndexItem(4, fileItem("src", 0, true)))

	params := DefaultParams()

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Facets.Kinds)
	assert.NotEmpty(t, result.Facets.Exts)
}

func TestListingIndex_Reset(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexItem(1, fileItem("a.txt", 10, false)))
	require.NoError(t, index.Reset())

	count, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestExtOf(t *testing.T) {
	tests := []struct {
		name  string
		isDir bool
		want  string
	}{
		{"report.PDF", false, "pdf"},
		{"archive.tar.gz", false, "gz"},
		{"Makefile", false, ""},
		{".bashrc", false, ""},
		{"src", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extOf(tt.name, tt.isDir))
		})
	}
}
