package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paneapp/pane-server/internal/browse"
)

func namedItem(name string, hidden bool) *browse.Item {
	return &browse.Item{Metadata: browse.Metadata{Name: name, Hidden: hidden}}
}

func TestFilter_EmptyPassesEverything(t *testing.T) {
	f := newEntryFilter()
	f.SetShowHidden(true)

	assert.False(t, f.IsFiltered(namedItem("report.pdf", false)))
	assert.False(t, f.IsFiltered(namedItem(".bashrc", true)))
}

func TestFilter_HiddenDefault(t *testing.T) {
	f := newEntryFilter()

	assert.False(t, f.IsFiltered(namedItem("report.pdf", false)))
	assert.True(t, f.IsFiltered(namedItem(".bashrc", true)))
}

func TestFilter_Wildcard(t *testing.T) {
	f := newEntryFilter()
	f.Set("*.txt")

	assert.False(t, f.IsFiltered(namedItem("notes.txt", false)))
	assert.False(t, f.IsFiltered(namedItem("NOTES.TXT", false)))
	assert.True(t, f.IsFiltered(namedItem("photo.jpg", false)))
}

func TestFilter_QuestionMark(t *testing.T) {
	f := newEntryFilter()
	f.Set("log?.txt")

	assert.False(t, f.IsFiltered(namedItem("log1.txt", false)))
	assert.True(t, f.IsFiltered(namedItem("log12.txt", false)))
}

func TestFilter_BareWordIsSubstring(t *testing.T) {
	f := newEntryFilter()
	f.Set("tax")

	assert.False(t, f.IsFiltered(namedItem("taxes-2025.xlsx", false)))
	assert.False(t, f.IsFiltered(namedItem("SYNTAX.md", false)))
	assert.True(t, f.IsFiltered(namedItem("receipts.pdf", false)))
}

func TestFilter_HiddenBeatsPattern(t *testing.T) {
	f := newEntryFilter()
	f.Set("*.conf")

	// Matching the pattern does not resurrect a hidden entry.
	assert.True(t, f.IsFiltered(namedItem(".server.conf", true)))

	f.SetShowHidden(true)
	assert.False(t, f.IsFiltered(namedItem(".server.conf", true)))
}

func TestFilter_ClearRestores(t *testing.T) {
	f := newEntryFilter()
	f.Set("*.txt")
	assert.True(t, f.IsFiltered(namedItem("photo.jpg", false)))

	f.Set("")
	assert.False(t, f.IsFiltered(namedItem("photo.jpg", false)))
	assert.Equal(t, "", f.Pattern())
}
