package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures which directory entries generate change records.
type Options struct {
	// IgnorePatterns are filepath.Match patterns checked against entry
	// names. Matching entries never reach the change queue.
	IgnorePatterns []string

	// IgnoreHidden drops dotfile entries entirely. Distinct from the view
	// filter: filtered items live in the item store, ignored entries are
	// invisible to the whole pipeline.
	IgnoreHidden bool

	// RenameWindow is how long a rename's old name waits for its paired
	// create before being treated as a move out of the directory.
	RenameWindow time.Duration
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			"*.tmp",
			"*.swp",
			"*~",
		}
	}
	if o.RenameWindow <= 0 {
		o.RenameWindow = defaultRenameWindow
	}
}

// shouldIgnore checks a bare entry name against the ignore configuration.
func (o *Options) shouldIgnore(name string) bool {
	if o.IgnoreHidden && strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}

	for _, pattern := range o.IgnorePatterns {
		matched, err := filepath.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}
