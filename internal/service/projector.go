package service

import (
	"log/slog"

	"github.com/paneapp/pane-server/internal/browse"
	"github.com/paneapp/pane-server/internal/search"
)

// indexingProjector tees view instructions to the real projector while
// keeping the listing search index in step with the visible listing.
// Rows entering the view get indexed, rows leaving it get removed, and
// metadata refreshes re-index in place.
type indexingProjector struct {
	next   browse.ViewProjector
	store  *browse.ItemStore
	index  *search.ListingIndex
	logger *slog.Logger
}

func newIndexingProjector(next browse.ViewProjector, store *browse.ItemStore, index *search.ListingIndex, logger *slog.Logger) *indexingProjector {
	return &indexingProjector{
		next:   next,
		store:  store,
		index:  index,
		logger: logger,
	}
}

func (p *indexingProjector) reindex(internalIndex int) {
	item, ok := p.store.Get(internalIndex)
	if !ok {
		return
	}
	if err := p.index.IndexItem(internalIndex, item); err != nil {
		p.logger.Warn("failed to index listing entry", "index", internalIndex, "error", err)
	}
}

func (p *indexingProjector) SuspendRedraw() { p.next.SuspendRedraw() }
func (p *indexingProjector) ResumeRedraw()  { p.next.ResumeRedraw() }

func (p *indexingProjector) InsertRow(position, internalIndex int) {
	p.next.InsertRow(position, internalIndex)
	p.reindex(internalIndex)
}

func (p *indexingProjector) RemoveRow(internalIndex int) {
	p.next.RemoveRow(internalIndex)
	if err := p.index.RemoveItem(internalIndex); err != nil {
		p.logger.Warn("failed to remove listing entry from index", "index", internalIndex, "error", err)
	}
}

func (p *indexingProjector) SetSelected(internalIndex int) { p.next.SetSelected(internalIndex) }
func (p *indexingProjector) SetFocused(internalIndex int)  { p.next.SetFocused(internalIndex) }
func (p *indexingProjector) EnsureVisible(internalIndex int) {
	p.next.EnsureVisible(internalIndex)
}

// SetCut fires on every metadata refresh, which makes it the natural
// re-index hook for modified entries.
func (p *indexingProjector) SetCut(internalIndex int, cut bool) {
	p.next.SetCut(internalIndex, cut)
	p.reindex(internalIndex)
}

// InvalidateIcon fires on renames, re-index under the new name.
func (p *indexingProjector) InvalidateIcon(internalIndex int) {
	p.next.InvalidateIcon(internalIndex)
	p.reindex(internalIndex)
}

func (p *indexingProjector) InvalidateColumns(internalIndex int) {
	p.next.InvalidateColumns(internalIndex)
}

func (p *indexingProjector) RequestResort() { p.next.RequestResort() }

func (p *indexingProjector) SetGroup(internalIndex, groupID int) {
	p.next.SetGroup(internalIndex, groupID)
}
