package browse

import "sync"

// ItemStore is the authoritative map from stable internal index to item
// metadata. Indices are assigned monotonically and never reused: removing
// an item leaves its slot permanently vacant, so an index handed to a
// collaborator can never silently come to mean a different path.
//
// Only the reconciliation goroutine mutates the store. The lock exists so
// status readers (totals, listing snapshots) on other goroutines observe a
// consistent view.
type ItemStore struct {
	mu sync.RWMutex

	items  map[int]*Item
	byName map[string]int
	next   int

	selected map[int]struct{}

	// Running sums, maintained by subtract-then-add pairs only. They are
	// never recomputed wholesale, so a failed metadata refresh zeroes an
	// item's contribution instead of leaving a stale value behind.
	totalSize    int64
	selectedSize int64
}

// NewItemStore creates an empty item store.
func NewItemStore() *ItemStore {
	s := &ItemStore{}
	s.reset()
	return s
}

func (s *ItemStore) reset() {
	s.items = make(map[int]*Item)
	s.byName = make(map[string]int)
	s.selected = make(map[int]struct{})
	s.totalSize = 0
	s.selectedSize = 0
	// next is deliberately not reset: indices stay unique across
	// navigations so a stale index from a prior listing can never match a
	// new item.
}

// Reset discards all items while preserving the index sequence. Called on
// navigation, after the generation counter has been bumped.
func (s *ItemStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Insert adds an item and returns its newly assigned internal index.
func (s *ItemStore) Insert(item *Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.next
	s.next++
	s.items[idx] = item
	s.byName[item.Metadata.Name] = idx
	s.totalSize += item.Metadata.Size
	return idx
}

// Remove deletes the item at idx, releasing its index permanently and
// subtracting its contributions from the running totals.
func (s *ItemStore) Remove(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[idx]
	if !ok {
		return
	}
	s.totalSize -= item.Metadata.Size
	if _, sel := s.selected[idx]; sel {
		s.selectedSize -= item.Metadata.Size
		delete(s.selected, idx)
	}
	delete(s.byName, item.Metadata.Name)
	delete(s.items, idx)
}

// Get returns the item at idx.
func (s *ItemStore) Get(idx int) (*Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[idx]
	return item, ok
}

// IndexByName returns the internal index of the live item with the given
// name. Names are unique within a directory, so this doubles as the
// identity lookup for rename resolution.
func (s *ItemStore) IndexByName(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byName[name]
	return idx, ok
}

// BeginRefresh subtracts the item's current size contribution from the
// running totals ahead of a metadata re-fetch. Every BeginRefresh must be
// paired with exactly one CompleteRefresh or FailRefresh.
func (s *ItemStore) BeginRefresh(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[idx]
	if !ok {
		return
	}
	s.totalSize -= item.Metadata.Size
	if _, sel := s.selected[idx]; sel {
		s.selectedSize -= item.Metadata.Size
	}
}

// CompleteRefresh installs freshly fetched metadata and adds the new size
// contribution back to the running totals. A rename is a refresh under a
// new name, so the name lookup is rewritten when it changes.
func (s *ItemStore) CompleteRefresh(idx int, meta Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[idx]
	if !ok {
		return
	}
	if item.Metadata.Name != meta.Name {
		delete(s.byName, item.Metadata.Name)
		s.byName[meta.Name] = idx
	}
	item.Metadata = meta
	s.totalSize += meta.Size
	if _, sel := s.selected[idx]; sel {
		s.selectedSize += meta.Size
	}
}

// FailRefresh zeroes the item's cached size after a re-fetch failed
// because the file vanished mid-update. The contribution was already
// subtracted by BeginRefresh; the remaining metadata is kept as-is.
func (s *ItemStore) FailRefresh(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.items[idx]; ok {
		item.Metadata.Size = 0
	}
}

// SetIdentity replaces the stored identity token for idx.
func (s *ItemStore) SetIdentity(idx int, id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.items[idx]; ok {
		item.Identity = id
	}
}

// SetSelected marks or unmarks the item as selected, keeping the
// selected-size running sum in step.
func (s *ItemStore) SetSelected(idx int, sel bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[idx]
	if !ok {
		return
	}
	_, cur := s.selected[idx]
	if sel == cur {
		return
	}
	if sel {
		s.selected[idx] = struct{}{}
		s.selectedSize += item.Metadata.Size
	} else {
		delete(s.selected, idx)
		s.selectedSize -= item.Metadata.Size
	}
}

// IsSelected reports whether the item at idx is selected.
func (s *ItemStore) IsSelected(idx int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[idx]
	return ok
}

// SetVisible records whether the item currently appears in the view
// projection.
func (s *ItemStore) SetVisible(idx int, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.items[idx]; ok {
		item.Visible = visible
	}
}

// Len returns the number of live items.
func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// TotalSize returns the running sum of all live items' sizes.
func (s *ItemStore) TotalSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalSize
}

// SelectedSize returns the running sum of the selected items' sizes.
func (s *ItemStore) SelectedSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedSize
}

// Each calls fn for every live item until fn returns false. The lock is
// held for the duration, so fn must not call back into the store.
func (s *ItemStore) Each(fn func(idx int, item *Item) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for idx, item := range s.items {
		if !fn(idx, item) {
			return
		}
	}
}
