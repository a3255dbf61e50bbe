// Package search provides filename search over the current directory
// listing using Bleve. Entries are indexed as they appear and removed as
// they vanish, so queries always reflect the reconciled listing.
package search

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paneapp/pane-server/internal/browse"
)

// EntryKind discriminates files from directories in the index.
type EntryKind string

// Entry kinds.
const (
	KindFile EntryKind = "file"
	KindDir  EntryKind = "dir"
)

// EntryDocument is the document structure for the Bleve index. One
// document per listed entry, keyed by the entry's stable internal index.
type EntryDocument struct {
	ID   string    `json:"id"` // Internal item index, stringified
	Name string    `json:"name"`
	Ext  string    `json:"ext,omitempty"` // Lowercase, without the dot
	Kind EntryKind `json:"kind"`

	Size     int64 `json:"size"`
	Modified int64 `json:"modified"` // Unix millis
	Hidden   bool  `json:"hidden"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *EntryDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":       d.ID,
		"name":     d.Name,
		"kind":     string(d.Kind),
		"size":     d.Size,
		"modified": d.Modified,
		"hidden":   d.Hidden,
	}
	if d.Ext != "" {
		m["ext"] = d.Ext
	}
	return m
}

// ItemToDocument converts a listed item to an EntryDocument.
func ItemToDocument(internalIndex int, item *browse.Item) *EntryDocument {
	md := item.Metadata
	kind := KindFile
	if md.IsDir {
		kind = KindDir
	}

	return &EntryDocument{
		ID:       strconv.Itoa(internalIndex),
		Name:     md.Name,
		Ext:      extOf(md.Name, md.IsDir),
		Kind:     kind,
		Size:     md.Size,
		Modified: md.ModTime.UnixMilli(),
		Hidden:   md.Hidden,
	}
}

// extOf returns the lowercase extension without the leading dot.
// Directories and dotfiles like ".bashrc" have no extension.
func extOf(name string, isDir bool) string {
	if isDir {
		return ""
	}
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
