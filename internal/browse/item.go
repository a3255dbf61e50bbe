package browse

import (
	"io/fs"
	"time"
)

// Identity is the owned identity token of a directory entry: the absolute
// path it resolved to, plus the inode where the platform provides one.
// Identities are captured at resolution time and travel with the item, so
// downstream consumers never re-derive them from a possibly stale name.
type Identity struct {
	Path  string
	Inode uint64
}

// Metadata is the filesystem metadata cached for one item.
type Metadata struct {
	Name    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
	Hidden  bool
}

// Item is one entry of the watched directory. Items are addressed by their
// internal index in the ItemStore; the index is the only identity that
// selection, sorting, and column tasks may retain across mutations.
type Item struct {
	Metadata Metadata
	Identity Identity

	// Visible reports whether the item currently appears in the view
	// projection. Items filtered out by the active predicate stay in the
	// store with Visible false so a later rename can bring them back.
	Visible bool
}
