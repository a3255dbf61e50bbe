package search

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/paneapp/pane-server/internal/browse"
)

// ListingIndex wraps an in-memory Bleve index over the current directory
// listing. The index lives only as long as the process: it is rebuilt on
// navigation, so there is nothing to persist.
//
// Thread safety: all public methods are safe for concurrent use. The
// mutex protects against index swaps during Reset.
type ListingIndex struct {
	logger *slog.Logger

	mu    sync.RWMutex
	index bleve.Index
}

// NewListingIndex creates an empty in-memory listing index.
func NewListingIndex(logger *slog.Logger) (*ListingIndex, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create listing index: %w", err)
	}

	return &ListingIndex{
		logger: logger,
		index:  index,
	}, nil
}

// Close closes the index and releases resources.
func (s *ListingIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexItem adds or updates one entry in the index.
func (s *ListingIndex) IndexItem(internalIndex int, item *browse.Item) error {
	doc := ItemToDocument(internalIndex, item)

	s.mu.RLock()
	defer s.mu.RUnlock()
	// Convert to map so field names match the mapping (lowercase).
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexItems indexes the full initial listing in a batch. Significantly
// faster than calling IndexItem per entry for large directories.
func (s *ListingIndex) IndexItems(items map[int]*browse.Item) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	batch := s.index.NewBatch()
	n := 0
	for idx, item := range items {
		doc := ItemToDocument(idx, item)
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
		n++
		if n%batchSize == 0 {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("commit batch: %w", err)
			}
			batch = s.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}

	return nil
}

// RemoveItem deletes one entry from the index.
func (s *ListingIndex) RemoveItem(internalIndex int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(strconv.Itoa(internalIndex))
}

// Count returns the number of indexed entries.
func (s *ListingIndex) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Reset drops the index and starts empty. Called on navigation before
// the new listing is indexed.
func (s *ListingIndex) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Debug("listing index reset")

	return nil
}
