// Package service wires the reconciliation pipeline into a browsing
// session: one watched directory, its item store, the change watcher,
// persisted folder settings, the listing search index, and the view
// event stream.
package service

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paneapp/pane-server/internal/browse"
	domainerrors "github.com/paneapp/pane-server/internal/errors"
	"github.com/paneapp/pane-server/internal/fsmeta"
	"github.com/paneapp/pane-server/internal/id"
	"github.com/paneapp/pane-server/internal/search"
	"github.com/paneapp/pane-server/internal/settings"
	"github.com/paneapp/pane-server/internal/watcher"
)

// dirResolver forwards identity resolution to the current directory
// context. Navigation swaps the context; records from the old directory
// are already fenced off by the generation counter.
type dirResolver struct {
	ctx atomic.Pointer[fsmeta.DirContext]
}

func (d *dirResolver) Resolve(name string) (browse.Identity, bool) {
	c := d.ctx.Load()
	if c == nil {
		return browse.Identity{}, false
	}
	return c.Resolve(name)
}

func (d *dirResolver) Fetch(identity browse.Identity) (browse.Metadata, error) {
	c := d.ctx.Load()
	if c == nil {
		return browse.Metadata{}, domainerrors.Internal("no directory open")
	}
	return c.Fetch(identity)
}

// Entry is one listing row as handed to API clients. Index is the stable
// internal index; Position follows the active sort order.
type Entry struct {
	Index    int       `json:"index"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Mode     string    `json:"mode"`
	ModTime  time.Time `json:"modTime"`
	IsDir    bool      `json:"isDir"`
	Hidden   bool      `json:"hidden"`
	Visible  bool      `json:"visible"`
	Selected bool      `json:"selected"`
}

// Status is the session summary for status-bar style consumers.
type Status struct {
	SessionID     string `json:"sessionId"`
	Path          string `json:"path"`
	Generation    uint64 `json:"generation"`
	ItemCount     int    `json:"itemCount"`
	TotalSize     int64  `json:"totalSize"`
	SelectedSize  int64  `json:"selectedSize"`
	DeferredAdds  int    `json:"deferredAdds"`
	FilterPattern string `json:"filterPattern,omitempty"`
}

// BrowserService owns one directory browsing session end to end.
type BrowserService struct {
	logger   *slog.Logger
	settings *settings.Store
	index    *search.ListingIndex

	store      *browse.ItemStore
	queue      *browse.ChangeQueue
	receiver   *browse.Receiver
	reconciler *browse.Reconciler
	resolver   *dirResolver
	sorter     *ListingSorter
	filter     *entryFilter
	columns    *ColumnRefresher
	view       browse.ViewProjector

	sessionID     string
	coalesceDelay time.Duration
	watchOpts     watcher.Options
	insertSorted  bool
	backupDir     string

	mu          sync.Mutex
	dirCtx      *fsmeta.DirContext
	watcher     *watcher.DirWatcher
	watchCancel context.CancelFunc
}

// Config carries the browse knobs the service needs from the app config.
type Config struct {
	CoalesceDelay    time.Duration
	RenamePairWindow time.Duration
	IgnoreHidden     bool
	InsertSorted     bool
	// BackupDir is where settings snapshots land. Empty disables backups.
	BackupDir string
}

// NewBrowserService assembles a session. No directory is open until the
// first Open call; Start typically opens the configured root.
func NewBrowserService(cfg Config, settingsStore *settings.Store, viewProjector browse.ViewProjector, index *search.ListingIndex, logger *slog.Logger) *BrowserService {
	store := browse.NewItemStore()
	queue := browse.NewChangeQueue()
	resolver := &dirResolver{}
	sorter := NewListingSorter(store)
	filter := newEntryFilter()

	view := newIndexingProjector(viewProjector, store, index, logger)
	columns := NewColumnRefresher(view, logger)

	reconciler := browse.NewReconciler(queue, store, resolver, resolver, view, logger)
	reconciler.SetFilter(filter)
	reconciler.SetSortGrouper(sorter)
	reconciler.SetColumnScheduler(columns)

	s := &BrowserService{
		logger:        logger,
		settings:      settingsStore,
		index:         index,
		store:         store,
		queue:         queue,
		reconciler:    reconciler,
		resolver:      resolver,
		sorter:        sorter,
		filter:        filter,
		columns:       columns,
		view:          view,
		sessionID:     id.MustGenerate("dir"),
		coalesceDelay: cfg.CoalesceDelay,
		insertSorted:  cfg.InsertSorted,
		backupDir:     cfg.BackupDir,
		watchOpts: watcher.Options{
			IgnoreHidden: cfg.IgnoreHidden,
			RenameWindow: cfg.RenamePairWindow,
		},
	}
	s.receiver = browse.NewReceiver(queue, cfg.CoalesceDelay, s.flush, logger)

	return s
}

// SessionID returns the stable id of this browsing session.
func (s *BrowserService) SessionID() string { return s.sessionID }

// Start opens the root directory and runs the column refresher until the
// context is cancelled.
func (s *BrowserService) Start(ctx context.Context, root string) error {
	go s.columns.Start(ctx)
	return s.Open(ctx, root)
}

// flush is the coalescing timer callback: one reconciliation pass.
func (s *BrowserService) flush() {
	result := s.reconciler.FlushAndApply()

	s.logger.Debug("reconciliation pass complete",
		"session_id", s.sessionID,
		"applied", result.Applied,
		"discarded", result.Discarded,
		"delta", result.Delta,
	)
	if result.NewItemIndex != -1 {
		s.view.SetFocused(result.NewItemIndex)
		s.view.EnsureVisible(result.NewItemIndex)
	}
}

// Open points the session at a directory: the generation is bumped so
// in-flight records from the old directory die, state is reset, saved
// folder settings are applied, the listing is loaded, and a fresh
// watcher is started.
func (s *BrowserService) Open(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return domainerrors.NotFoundf("directory %q not found", path).WithCause(err)
	}
	if !info.IsDir() {
		return domainerrors.Validationf("%q is not a directory", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcherLocked()

	gen := s.reconciler.Navigate()
	if err := s.index.Reset(); err != nil {
		s.logger.Warn("failed to reset listing index", "error", err)
	}

	dirCtx := fsmeta.NewDirContext(path)
	s.dirCtx = dirCtx
	s.resolver.ctx.Store(dirCtx)

	if err := s.applySettingsLocked(dirCtx.Dir()); err != nil {
		s.logger.Warn("failed to load folder settings, using defaults", "path", path, "error", err)
	}

	if err := s.loadListingLocked(dirCtx); err != nil {
		return err
	}

	w, err := watcher.New(dirCtx.Dir(), s.receiver, s.reconciler, s.watchOpts, s.logger)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "start directory watcher")
	}
	s.watcher = w

	watchCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel
	go func() {
		if err := w.Start(watchCtx); err != nil {
			s.logger.Warn("watcher stopped with error", "path", path, "error", err)
		}
	}()

	s.logger.Info("directory opened",
		"session_id", s.sessionID,
		"path", dirCtx.Dir(),
		"generation", gen,
		"items", s.store.Len(),
	)
	return nil
}

// applySettingsLocked loads the saved folder settings and pushes them
// into the reconciler policy, sorter, and filter.
func (s *BrowserService) applySettingsLocked(path string) error {
	fs, err := s.settings.Get(path)
	if err != nil {
		fs = settings.Defaults(path)
	}

	s.sorter.SetOrder(fs.SortBy, fs.SortOrder)
	s.filter.SetShowHidden(fs.ShowHidden)
	s.reconciler.SetPolicy(browse.Policy{
		InsertSorted: s.insertSorted,
		DetailsView:  fs.DetailsView,
		ShowInGroups: fs.ShowInGroups,
		Columns:      fs.Columns,
	})
	return err
}

// loadListingLocked enumerates the directory into the store and view.
func (s *BrowserService) loadListingLocked(dirCtx *fsmeta.DirContext) error {
	items, err := dirCtx.ReadDir()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "read directory")
	}

	s.view.SuspendRedraw()
	defer s.view.ResumeRedraw()

	for _, item := range items {
		idx := s.store.Insert(item)
		if s.filter.IsFiltered(item) {
			s.store.SetVisible(idx, false)
			continue
		}
		s.store.SetVisible(idx, true)
		s.view.InsertRow(-1, idx)
	}
	return nil
}

// stopWatcherLocked tears down the active watcher, if any.
func (s *BrowserService) stopWatcherLocked() {
	if s.watcher == nil {
		return
	}
	if s.watchCancel != nil {
		s.watchCancel()
	}
	if err := s.watcher.Stop(); err != nil {
		s.logger.Warn("failed to stop watcher", "error", err)
	}
	s.watcher = nil
	s.watchCancel = nil
}

// Path returns the currently open directory, or empty before the first
// Open.
func (s *BrowserService) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirCtx == nil {
		return ""
	}
	return s.dirCtx.Dir()
}

// Listing returns a snapshot of the listing in the active sort order.
// Hidden-by-filter items are included with Visible=false so clients can
// show filter state.
func (s *BrowserService) Listing() []Entry {
	type row struct {
		idx  int
		item browse.Item
	}
	var rows []row
	s.store.Each(func(idx int, item *browse.Item) bool {
		rows = append(rows, row{idx: idx, item: *item})
		return true
	})

	sort.Slice(rows, func(i, j int) bool {
		return s.sorter.Less(&rows[i].item, &rows[j].item)
	})

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		md := r.item.Metadata
		entries = append(entries, Entry{
			Index:    r.idx,
			Name:     md.Name,
			Size:     md.Size,
			Mode:     md.Mode.String(),
			ModTime:  md.ModTime,
			IsDir:    md.IsDir,
			Hidden:   md.Hidden,
			Visible:  r.item.Visible,
			Selected: s.store.IsSelected(r.idx),
		})
	}
	return entries
}

// Status returns the session summary.
func (s *BrowserService) Status() Status {
	return Status{
		SessionID:     s.sessionID,
		Path:          s.Path(),
		Generation:    s.reconciler.CurrentGeneration(),
		ItemCount:     s.store.Len(),
		TotalSize:     s.reconciler.TotalSize(),
		SelectedSize:  s.reconciler.SelectedSize(),
		DeferredAdds:  s.reconciler.DeferredCount(),
		FilterPattern: s.filter.Pattern(),
	}
}

// Select marks the named entry selected. Names not yet listed are pended
// and selected when they materialize, which covers paste and unpack
// flows where selection is requested before the files land.
func (s *BrowserService) Select(name string) {
	idx, ok := s.store.IndexByName(name)
	if !ok {
		s.reconciler.PendSelection(name)
		return
	}
	s.store.SetSelected(idx, true)
	s.view.SetSelected(idx)
}

// Deselect clears the named entry's selection. Unknown names are a no-op.
func (s *BrowserService) Deselect(name string) {
	if idx, ok := s.store.IndexByName(name); ok {
		s.store.SetSelected(idx, false)
	}
}

// ExpectNewItem marks name as the entry the client just created; once
// its addition lands it is focused and scrolled into view.
func (s *BrowserService) ExpectNewItem(name string) {
	s.reconciler.ExpectNewItem(name)
}

// MarkDropped records names arriving from a drop operation so they are
// appended rather than insert-sorted.
func (s *BrowserService) MarkDropped(names ...string) {
	for _, name := range names {
		s.reconciler.MarkDropped(name)
	}
}

// Search queries the listing index.
func (s *BrowserService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// IndexCount returns the number of entries in the listing index.
func (s *BrowserService) IndexCount() (uint64, error) {
	return s.index.Count()
}

// SetFilter replaces the wildcard filter pattern and re-projects the
// listing under it.
func (s *BrowserService) SetFilter(pattern string) {
	s.filter.Set(pattern)
	s.reapplyFilter()
}

// UpdateSettings persists new folder settings for the open directory and
// applies them to the live session.
func (s *BrowserService) UpdateSettings(fs *settings.FolderSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirCtx == nil {
		return domainerrors.Conflict("no directory open")
	}
	fs.Path = s.dirCtx.Dir()

	if err := s.settings.Put(fs); err != nil {
		return err
	}

	s.sorter.SetOrder(fs.SortBy, fs.SortOrder)
	s.filter.SetShowHidden(fs.ShowHidden)
	s.reconciler.SetPolicy(browse.Policy{
		InsertSorted: s.insertSorted,
		DetailsView:  fs.DetailsView,
		ShowInGroups: fs.ShowInGroups,
		Columns:      fs.Columns,
	})

	s.reapplyFilter()
	s.view.RequestResort()

	return nil
}

// Settings returns the saved settings for the open directory.
func (s *BrowserService) Settings() (*settings.FolderSettings, error) {
	path := s.Path()
	if path == "" {
		return nil, domainerrors.Conflict("no directory open")
	}
	return s.settings.Get(path)
}

// BackupSettings snapshots the settings database into the configured
// backup directory.
func (s *BrowserService) BackupSettings() (*settings.BackupResult, error) {
	if s.backupDir == "" {
		return nil, domainerrors.Conflict("no backup directory configured")
	}
	return s.settings.Backup(s.backupDir)
}

// reapplyFilter walks the store and applies visibility transitions under
// the current filter. Indices are collected first; the store must not be
// mutated inside Each.
func (s *BrowserService) reapplyFilter() {
	type change struct {
		idx  int
		show bool
	}
	var changes []change

	s.store.Each(func(idx int, item *browse.Item) bool {
		filtered := s.filter.IsFiltered(item)
		if item.Visible && filtered {
			changes = append(changes, change{idx: idx, show: false})
		} else if !item.Visible && !filtered {
			changes = append(changes, change{idx: idx, show: true})
		}
		return true
	})

	if len(changes) == 0 {
		return
	}

	s.view.SuspendRedraw()
	for _, ch := range changes {
		s.store.SetVisible(ch.idx, ch.show)
		if ch.show {
			s.view.InsertRow(-1, ch.idx)
		} else {
			s.view.RemoveRow(ch.idx)
		}
	}
	s.view.ResumeRedraw()
	s.view.RequestResort()
}

// Flush forces an immediate reconciliation pass. Mainly for tests and
// for clients that just performed a filesystem operation and want the
// listing settled before reading it back.
func (s *BrowserService) Flush() browse.FlushResult {
	return s.reconciler.FlushAndApply()
}

// Shutdown stops the watcher and coalescing timers. The settings store
// and search index are owned by the container and closed separately.
func (s *BrowserService) Shutdown(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcherLocked()
	s.receiver.Close()

	s.logger.Info("browser session stopped", "session_id", s.sessionID)
	return nil
}
