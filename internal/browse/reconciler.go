package browse

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Policy holds the view-policy knobs the reconciler consults while applying
// changes. They mirror the per-folder settings of the owning session.
type Policy struct {
	// InsertSorted places newly added items at their sorted position
	// instead of appending them. Items arriving from a drop operation are
	// appended regardless, so they land where the user dropped them.
	InsertSorted bool

	// DetailsView enables column bookkeeping: modified items get every
	// checked column queued for asynchronous refresh, and renamed items
	// get all columns invalidated.
	DetailsView bool

	// ShowInGroups enables group recomputation on modify and rename.
	ShowInGroups bool

	// Columns are the details-view columns; only checked ones are
	// refreshed.
	Columns []Column
}

// FlushResult summarizes one reconciliation pass for the owner.
type FlushResult struct {
	// Applied is the number of records applied in this pass.
	Applied int
	// Discarded is the number of records skipped by generation mismatch.
	Discarded int
	// Delta is the net change in live item count.
	Delta int
	// NewItemIndex is the internal index of the expected new item if it
	// completed insertion during this pass, -1 otherwise.
	NewItemIndex int
}

// deferredAdd remembers an Added event that could not be resolved to a
// real filesystem entry, anticipating a swift rename. At most one exists
// per filename.
type deferredAdd struct {
	name    string
	arrived time.Time
}

// awaitingAdd is an item staged for ordered insertion into the view.
type awaitingAdd struct {
	index    int
	position int // -1 = append
	dropped  bool
}

// renameSession is the transient disambiguation state for old/new name
// pairs within a single flush. It is owned by the pass, never by the
// process, so concurrent sessions on other directories cannot interfere.
type renameSession struct {
	pendingFreshAdd bool
	renamingIndex   int
}

// Reconciler drains the change queue and applies records to the item
// store, producing view-update instructions. All mutation happens on the
// single goroutine that calls FlushAndApply; the change queue is the only
// structure shared with the notification context.
type Reconciler struct {
	queue    *ChangeQueue
	store    *ItemStore
	resolver Resolver
	metadata MetadataSource
	filter   Filter
	sorter   SortGrouper
	columns  ColumnScheduler
	view     ViewProjector
	logger   *slog.Logger

	policy Policy

	generation atomic.Uint64

	// flushMu serializes FlushAndApply passes. The coalescing timer
	// already does this in normal operation; the mutex keeps the guarantee
	// when a caller forces a manual flush.
	flushMu sync.Mutex

	deferred map[string]deferredAdd
	awaiting []awaitingAdd

	// pendingSelection holds filenames whose items should be (re)selected
	// once they materialize. Order is preserved so focus lands on the
	// first requested name.
	pendingSelection []string
	pendingSet       map[string]struct{}

	// droppedNames are filenames arriving from a drag-drop operation;
	// their items are appended rather than insert-sorted, and the first
	// one to land is scrolled into view.
	droppedNames map[string]struct{}

	// expectedNewName is the filename the owner just created and wants
	// focused once its Added event lands.
	expectedNewName string
}

// NewReconciler wires a reconciler to its collaborators. Nil collaborators
// fall back to no-op implementations.
func NewReconciler(queue *ChangeQueue, store *ItemStore, resolver Resolver, metadata MetadataSource, view ViewProjector, logger *slog.Logger) *Reconciler {
	if view == nil {
		view = NoopProjector{}
	}
	return &Reconciler{
		queue:        queue,
		store:        store,
		resolver:     resolver,
		metadata:     metadata,
		filter:       AcceptAllFilter{},
		sorter:       AppendSorter{},
		columns:      NoopColumnScheduler{},
		view:         view,
		logger:       logger,
		deferred:     make(map[string]deferredAdd),
		pendingSet:   make(map[string]struct{}),
		droppedNames: make(map[string]struct{}),
	}
}

// SetFilter replaces the active filter predicate.
func (r *Reconciler) SetFilter(f Filter) {
	if f == nil {
		f = AcceptAllFilter{}
	}
	r.filter = f
}

// SetSortGrouper replaces the sort/group service.
func (r *Reconciler) SetSortGrouper(s SortGrouper) {
	if s == nil {
		s = AppendSorter{}
	}
	r.sorter = s
}

// SetColumnScheduler replaces the column task scheduler.
func (r *Reconciler) SetColumnScheduler(c ColumnScheduler) {
	if c == nil {
		c = NoopColumnScheduler{}
	}
	r.columns = c
}

// SetPolicy replaces the view-policy knobs.
func (r *Reconciler) SetPolicy(p Policy) {
	r.policy = p
}

// CurrentGeneration returns the generation new records must be tagged
// with. Safe to call from the notification context.
func (r *Reconciler) CurrentGeneration() uint64 {
	return r.generation.Load()
}

// Navigate bumps the generation counter and resets all per-directory
// state. Records still queued or in flight for the prior generation will
// be discarded rather than applied. Returns the new generation.
func (r *Reconciler) Navigate() uint64 {
	gen := r.generation.Add(1)

	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.store.Reset()
	r.deferred = make(map[string]deferredAdd)
	r.awaiting = nil
	r.pendingSelection = nil
	r.pendingSet = make(map[string]struct{})
	r.droppedNames = make(map[string]struct{})
	r.expectedNewName = ""

	return gen
}

// TotalSize returns the running total directory size.
func (r *Reconciler) TotalSize() int64 { return r.store.TotalSize() }

// SelectedSize returns the running selected-items size.
func (r *Reconciler) SelectedSize() int64 { return r.store.SelectedSize() }

// PendSelection asks for the named item to be selected once it appears.
// Misses are retried on every subsequent flush until the name matches.
func (r *Reconciler) PendSelection(name string) {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	if _, ok := r.pendingSet[name]; ok {
		return
	}
	r.pendingSet[name] = struct{}{}
	r.pendingSelection = append(r.pendingSelection, name)
}

// MarkDropped records that name is about to arrive from a drop operation.
func (r *Reconciler) MarkDropped(name string) {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()
	r.droppedNames[name] = struct{}{}
}

// ExpectNewItem marks name as the freshly created entry the owner wants
// reported (and focused) once its addition completes.
func (r *Reconciler) ExpectNewItem(name string) {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()
	r.expectedNewName = name
}

// FlushAndApply is the single entry point invoked per coalesced batch. It
// takes ownership of all queued records under the queue lock, then applies
// them in strict arrival order with redraw suspended. Records for a stale
// generation are discarded. One bad record never aborts the pass.
func (r *Reconciler) FlushAndApply() FlushResult {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	// Dequeue is the only step that touches the shared lock; resolution
	// and metadata work all happen on the batch we now own.
	batch := r.queue.TakeAll()

	result := FlushResult{NewItemIndex: -1}
	before := r.store.Len()

	r.view.SuspendRedraw()

	sess := renameSession{renamingIndex: -1}
	firstDropped := -1

	for _, rec := range batch {
		if rec.Generation != r.generation.Load() {
			result.Discarded++
			continue
		}

		switch rec.Action {
		case ActionAdded:
			r.logger.Debug("applying add", "name", rec.Name)
			r.applyAdded(rec.Name, &result, &firstDropped)
		case ActionModified:
			r.logger.Debug("applying modify", "name", rec.Name)
			r.applyModified(rec.Name)
		case ActionRemoved:
			r.logger.Debug("applying remove", "name", rec.Name)
			r.applyRemoved(rec.Name)
		case ActionRenamedOld:
			r.logger.Debug("rename old name received", "name", rec.Name)
			r.applyRenamedOld(rec.Name, &sess)
		case ActionRenamedNew:
			r.logger.Debug("rename new name received", "name", rec.Name)
			r.applyRenamedNew(rec.Name, &sess, &result, &firstDropped)
		default:
			r.logger.Warn("unknown change action", "action", int(rec.Action), "name", rec.Name)
		}
		result.Applied++
	}

	r.view.ResumeRedraw()

	// Scroll the first dropped item into view now that redraw is back on.
	if firstDropped != -1 {
		r.view.EnsureVisible(firstDropped)
	}

	r.restoreSelection()

	result.Delta = r.store.Len() - before
	return result
}

// applyAdded resolves a new entry and inserts it into the store and view.
// If resolution fails the name is buffered as a deferred add: the file was
// most likely renamed moments after creation, and the matching RenamedOld
// will claim the buffer entry.
func (r *Reconciler) applyAdded(name string, result *FlushResult, firstDropped *int) {
	if _, live := r.store.IndexByName(name); live {
		// Duplicate delivery for an entry that already made it in.
		r.logger.Debug("add for already live item, ignoring", "name", name)
		return
	}

	id, ok := r.resolver.Resolve(name)
	var meta Metadata
	if ok {
		var err error
		meta, err = r.metadata.Fetch(id)
		if err != nil {
			r.logger.Debug("metadata fetch failed on add", "name", name, "error", err)
			ok = false
		}
	}

	if !ok {
		// The entry no longer exists under this name. Remember it; the
		// rename that beat us here will re-add it under the new name.
		r.deferred[name] = deferredAdd{name: name, arrived: time.Now()}
		r.logger.Debug("add deferred, entry not resolvable", "name", name)
		return
	}

	// A successful add supersedes any deferred entry for the same name.
	delete(r.deferred, name)

	dropped := false
	if _, isDropped := r.droppedNames[name]; isDropped {
		dropped = true
		delete(r.droppedNames, name)
	}

	item := &Item{Metadata: meta, Identity: id}
	idx := r.store.Insert(item)

	aw := awaitingAdd{index: idx, position: -1, dropped: dropped}
	if r.policy.InsertSorted && !dropped {
		aw.position = r.sorter.SortedPosition(item)
	}
	r.awaiting = append(r.awaiting, aw)

	r.insertAwaitingItems(result, firstDropped)
}

// insertAwaitingItems moves staged items into the view projection,
// honoring the filter predicate and group placement.
func (r *Reconciler) insertAwaitingItems(result *FlushResult, firstDropped *int) {
	for _, aw := range r.awaiting {
		item, ok := r.store.Get(aw.index)
		if !ok {
			continue
		}

		if r.filter.IsFiltered(item) {
			// Filtered items stay in the store but never reach the view.
			r.store.SetVisible(aw.index, false)
			continue
		}

		r.store.SetVisible(aw.index, true)
		r.view.InsertRow(aw.position, aw.index)

		if r.policy.ShowInGroups {
			r.view.SetGroup(aw.index, r.sorter.GroupFor(item))
		}

		if aw.dropped && *firstDropped == -1 {
			*firstDropped = aw.index
		}
		if r.expectedNewName != "" && item.Metadata.Name == r.expectedNewName {
			result.NewItemIndex = aw.index
			r.expectedNewName = ""
		}
	}
	r.awaiting = r.awaiting[:0]
}

// applyModified refreshes a changed item's metadata. The size contribution
// is subtracted before the re-fetch and added back after, so a file that
// vanishes mid-update zeroes its contribution instead of corrupting the
// totals.
func (r *Reconciler) applyModified(name string) {
	idx, ok := r.store.IndexByName(name)
	if !ok {
		r.logger.Debug("modify for unknown item", "name", name)
		return
	}

	r.store.BeginRefresh(idx)

	id, resolved := r.resolver.Resolve(name)
	var meta Metadata
	var err error
	if resolved {
		meta, err = r.metadata.Fetch(id)
	}
	if !resolved || err != nil {
		// Renamed or deleted just after the modification was reported.
		// Keep the item with its stale non-size metadata; a follow-up
		// record will settle its fate.
		r.store.FailRefresh(idx)
		r.logger.Debug("modified entry vanished, size zeroed", "name", name, "error", err)
		return
	}

	r.store.CompleteRefresh(idx, meta)
	r.store.SetIdentity(idx, id)

	r.view.SetCut(idx, meta.Hidden)

	if r.policy.DetailsView {
		for _, col := range r.policy.Columns {
			if col.Checked {
				r.columns.QueueColumnRefresh(idx, col.Type)
			}
		}
	}

	if r.policy.ShowInGroups {
		if item, ok := r.store.Get(idx); ok {
			r.view.SetGroup(idx, r.sorter.GroupFor(item))
		}
	}
}

// applyRemoved removes an item, or cancels the deferred add if the entry
// never made it into the store.
func (r *Reconciler) applyRemoved(name string) {
	if _, ok := r.deferred[name]; ok {
		delete(r.deferred, name)
		r.logger.Debug("deferred add cancelled by removal", "name", name)
		return
	}

	idx, ok := r.store.IndexByName(name)
	if !ok {
		r.logger.Debug("remove for unknown item", "name", name)
		return
	}

	if item, exists := r.store.Get(idx); exists && item.Visible {
		r.view.RemoveRow(idx)
	}
	r.store.Remove(idx)
}

// applyRenamedOld resolves the source side of a rename pair. A deferred
// add matching the old name means the entry was renamed before it could be
// added; the paired new name must then be processed as a fresh addition.
func (r *Reconciler) applyRenamedOld(name string, sess *renameSession) {
	if _, ok := r.deferred[name]; ok {
		delete(r.deferred, name)
		sess.pendingFreshAdd = true
		return
	}

	idx, ok := r.store.IndexByName(name)
	if !ok {
		// Non-fatal: the record is dropped and the paired new name will
		// be dropped silently as well.
		r.logger.Warn("rename source not found", "name", name)
		return
	}
	sess.renamingIndex = idx
}

// applyRenamedNew completes a rename pair, either as a fresh add (the
// source was still deferred) or as an in-place rename of the recorded
// item.
func (r *Reconciler) applyRenamedNew(name string, sess *renameSession, result *FlushResult, firstDropped *int) {
	if sess.pendingFreshAdd {
		sess.pendingFreshAdd = false
		r.applyAdded(name, result, firstDropped)
		return
	}

	if sess.renamingIndex == -1 {
		// No matching old name was seen in this session.
		return
	}
	r.renameItem(sess.renamingIndex, name)
	sess.renamingIndex = -1
}

// renameItem re-resolves newName and replaces the stored item in place at
// the same internal index. Identity preservation is mandatory: selection
// and in-flight column tasks key off the index. Visibility transitions
// under the active filter are applied here.
func (r *Reconciler) renameItem(idx int, newName string) {
	id, ok := r.resolver.Resolve(newName)
	if !ok {
		r.logger.Debug("rename target not resolvable", "name", newName)
		return
	}
	meta, err := r.metadata.Fetch(id)
	if err != nil {
		r.logger.Debug("rename target metadata fetch failed", "name", newName, "error", err)
		return
	}

	item, exists := r.store.Get(idx)
	if !exists {
		return
	}
	wasVisible := item.Visible

	// A rename is a metadata refresh under a new name; the running totals
	// pick up any size difference through the usual subtract/add pair.
	r.store.BeginRefresh(idx)
	r.store.CompleteRefresh(idx, meta)
	r.store.SetIdentity(idx, id)

	item, _ = r.store.Get(idx)
	filtered := r.filter.IsFiltered(item)

	if !wasVisible {
		if !filtered {
			// The new name no longer matches the filter; bring the item
			// back into the projection.
			r.store.SetVisible(idx, true)
			r.view.InsertRow(-1, idx)
			r.view.RequestResort()
		}
		return
	}

	if filtered {
		// Filtered out by its new name: gone from the view, retained in
		// the store.
		r.store.SetVisible(idx, false)
		r.view.RemoveRow(idx)
		return
	}

	r.view.InvalidateIcon(idx)

	if r.policy.DetailsView {
		// Other columns than the name may change with a rename (kind,
		// extension), so all of them are invalidated rather than working
		// out which ones actually did.
		r.view.InvalidateColumns(idx)
	}

	r.view.RequestResort()

	if r.policy.ShowInGroups {
		r.view.SetGroup(idx, r.sorter.GroupFor(item))
	}
}

// restoreSelection re-selects items whose names were pended, focusing the
// first match and scrolling it into view. Names that have not materialized
// yet remain pending for a future flush.
func (r *Reconciler) restoreSelection() {
	if len(r.pendingSelection) == 0 {
		return
	}

	focusSet := false
	remaining := r.pendingSelection[:0]

	for _, name := range r.pendingSelection {
		idx, ok := r.store.IndexByName(name)
		if !ok {
			remaining = append(remaining, name)
			continue
		}

		r.store.SetSelected(idx, true)
		r.view.SetSelected(idx)

		if !focusSet {
			r.view.SetFocused(idx)
			r.view.EnsureVisible(idx)
			focusSet = true
		}
		delete(r.pendingSet, name)
	}

	r.pendingSelection = remaining
}

// DeferredCount reports how many adds are currently buffered awaiting a
// rename or removal.
func (r *Reconciler) DeferredCount() int {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()
	return len(r.deferred)
}
