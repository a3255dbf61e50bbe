package service

import (
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/paneapp/pane-server/internal/browse"
)

// Group ids for the name sort. Non-letter names share the trailing bucket.
const nameGroupOther = 26

// ListingSorter orders listing items with locale-aware collation and
// assigns group ids for grouped views. It implements browse.SortGrouper.
//
// Directories always sort before files, matching what file browsers do
// regardless of the active sort column.
type ListingSorter struct {
	store    *browse.ItemStore
	collator *collate.Collator

	mu     sync.RWMutex
	sortBy string // "name", "size", "kind", "modified"
	desc   bool
}

// NewListingSorter creates a sorter over the given store, defaulting to
// ascending name order.
func NewListingSorter(store *browse.ItemStore) *ListingSorter {
	return &ListingSorter{
		store: store,
		// Numeric collation sorts "file2" before "file10".
		collator: collate.New(language.Und, collate.IgnoreCase, collate.Numeric),
		sortBy:   "name",
	}
}

// SetOrder switches the active sort column and direction.
func (ls *ListingSorter) SetOrder(sortBy, order string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.sortBy = sortBy
	ls.desc = order == "desc"
}

// SortedPosition returns the visual position item should occupy among the
// currently visible items. The item may already be in the store; it never
// counts against itself.
func (ls *ListingSorter) SortedPosition(item *browse.Item) int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	pos := 0
	ls.store.Each(func(_ int, other *browse.Item) bool {
		if other == item || !other.Visible {
			return true
		}
		if ls.less(other, item) {
			pos++
		}
		return true
	})
	return pos
}

// GroupFor returns the group id for item under the active sort column.
func (ls *ListingSorter) GroupFor(item *browse.Item) int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	switch ls.sortBy {
	case "size":
		return sizeGroup(item.Metadata.Size)
	case "modified":
		return ageGroup(item.Metadata.ModTime)
	case "kind":
		if item.Metadata.IsDir {
			return 0
		}
		return 1
	default:
		return nameGroup(item.Metadata.Name)
	}
}

// Less reports whether a sorts before b under the active order. Exposed
// for listing snapshots so the service sorts exactly as the view does.
func (ls *ListingSorter) Less(a, b *browse.Item) bool {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.less(a, b)
}

func (ls *ListingSorter) less(a, b *browse.Item) bool {
	// Directories first, independent of direction.
	if a.Metadata.IsDir != b.Metadata.IsDir {
		return a.Metadata.IsDir
	}

	var cmp int
	switch ls.sortBy {
	case "size":
		cmp = compareInt64(a.Metadata.Size, b.Metadata.Size)
	case "modified":
		cmp = compareTime(a.Metadata.ModTime, b.Metadata.ModTime)
	case "kind":
		cmp = ls.collator.CompareString(extKey(a), extKey(b))
	default:
		cmp = 0
	}
	if cmp == 0 {
		// Name is the tiebreaker for every column.
		cmp = ls.collator.CompareString(a.Metadata.Name, b.Metadata.Name)
	}

	if ls.desc {
		return cmp > 0
	}
	return cmp < 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func extKey(item *browse.Item) string {
	if item.Metadata.IsDir {
		return ""
	}
	name := item.Metadata.Name
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return ""
}

// nameGroup buckets by leading letter, case-folded; everything that does
// not start with an ASCII letter lands in the shared bucket.
func nameGroup(name string) int {
	if name == "" {
		return nameGroupOther
	}
	c := name[0]
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	default:
		return nameGroupOther
	}
}

// sizeGroup buckets sizes the way grouped size columns usually do.
func sizeGroup(size int64) int {
	switch {
	case size == 0:
		return 0
	case size < 16*1024:
		return 1
	case size < 1024*1024:
		return 2
	case size < 128*1024*1024:
		return 3
	case size < 1024*1024*1024:
		return 4
	default:
		return 5
	}
}

// ageGroup buckets modification times into today / this week / this
// month / this year / older.
func ageGroup(t time.Time) int {
	age := time.Since(t)
	switch {
	case age < 24*time.Hour:
		return 0
	case age < 7*24*time.Hour:
		return 1
	case age < 30*24*time.Hour:
		return 2
	case age < 365*24*time.Hour:
		return 3
	default:
		return 4
	}
}
