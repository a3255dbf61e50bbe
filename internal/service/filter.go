package service

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/paneapp/pane-server/internal/browse"
)

// entryFilter is the active view filter: a wildcard pattern plus the
// show-hidden toggle. Filtered items stay in the item store; they just
// leave the view projection. Implements browse.Filter.
type entryFilter struct {
	mu         sync.RWMutex
	pattern    string
	showHidden bool
}

func newEntryFilter() *entryFilter {
	return &entryFilter{}
}

// Set replaces the wildcard pattern. Empty means no pattern filtering.
func (f *entryFilter) Set(pattern string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pattern = pattern
}

// SetShowHidden toggles dotfile visibility.
func (f *entryFilter) SetShowHidden(show bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showHidden = show
}

// Pattern returns the active wildcard pattern.
func (f *entryFilter) Pattern() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pattern
}

// IsFiltered implements browse.Filter.
func (f *entryFilter) IsFiltered(item *browse.Item) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.showHidden && item.Metadata.Hidden {
		return true
	}
	if f.pattern == "" {
		return false
	}

	name := strings.ToLower(item.Metadata.Name)
	pattern := strings.ToLower(f.pattern)

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return false
	}
	// A bare word is treated as a substring match, so "tax" finds
	// "taxes-2025.xlsx" without wildcard punctuation.
	if !strings.ContainsAny(pattern, "*?[") && strings.Contains(name, pattern) {
		return false
	}
	return true
}
