// Package fsmeta provides the real-filesystem identity and metadata
// collaborators the reconciler works against. Resolution failures are fast
// negative results: the entry vanished before the notification was
// processed, which the reconciler handles as routine.
package fsmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paneapp/pane-server/internal/browse"
)

// DirContext resolves names within a single watched directory.
type DirContext struct {
	dir string
}

// NewDirContext creates resolution context rooted at dir. The directory
// path is cleaned but not required to exist yet.
func NewDirContext(dir string) *DirContext {
	return &DirContext{dir: filepath.Clean(dir)}
}

// Dir returns the watched directory path.
func (c *DirContext) Dir() string {
	return c.dir
}

// Resolve implements browse.Resolver. The identity token is the absolute
// path plus the inode where the platform provides one.
func (c *DirContext) Resolve(name string) (browse.Identity, bool) {
	full := filepath.Join(c.dir, name)

	info, err := os.Lstat(full)
	if err != nil {
		return browse.Identity{}, false
	}

	return browse.Identity{
		Path:  full,
		Inode: getInode(info.Sys()),
	}, true
}

// Fetch implements browse.MetadataSource. It fails if the target vanished
// between resolution and fetch.
func (c *DirContext) Fetch(id browse.Identity) (browse.Metadata, error) {
	info, err := os.Lstat(id.Path)
	if err != nil {
		return browse.Metadata{}, fmt.Errorf("fetch metadata for %s: %w", id.Path, err)
	}

	name := filepath.Base(id.Path)
	return browse.Metadata{
		Name:    name,
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
		Hidden:  isHidden(name),
	}, nil
}

// ReadDir enumerates the directory into items for the initial listing.
// Unreadable entries are skipped rather than failing the whole load.
func (c *DirContext) ReadDir() ([]*browse.Item, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", c.dir, err)
	}

	items := make([]*browse.Item, 0, len(entries))
	for _, entry := range entries {
		id, ok := c.Resolve(entry.Name())
		if !ok {
			continue
		}
		meta, err := c.Fetch(id)
		if err != nil {
			continue
		}
		items = append(items, &browse.Item{Metadata: meta, Identity: id})
	}
	return items, nil
}

// isHidden reports whether a name is hidden by dotfile convention.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
