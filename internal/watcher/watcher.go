// Package watcher translates raw fsnotify events on a single watched
// directory into change records for the reconciliation pipeline. It runs
// on its own goroutine; the change queue behind the sink is the only state
// shared with the reconciliation context.
package watcher

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/paneapp/pane-server/internal/browse"
)

// defaultRenameWindow is how long a rename's old name waits for its
// paired create before being treated as a move out of the directory.
const defaultRenameWindow = 100 * time.Millisecond

// Sink receives translated change records. *browse.Receiver satisfies it.
type Sink interface {
	Enqueue(action browse.ChangeAction, name string, generation, eventID uint64)
}

// GenerationSource supplies the generation id new records must carry.
// *browse.Reconciler satisfies it.
type GenerationSource interface {
	CurrentGeneration() uint64
}

// DirWatcher watches one directory, non-recursively, and feeds the sink.
type DirWatcher struct {
	dir    string
	sink   Sink
	gens   GenerationSource
	opts   Options
	logger *slog.Logger

	fsw *fsnotify.Watcher

	// mu guards the rename pairing state. fsnotify reports a rename
	// within the directory as a Rename op on the old name followed by a
	// Create on the new name; the old name is parked here until its pair
	// arrives or the window expires.
	mu            sync.Mutex
	pendingRename string
	renameTimer   *time.Timer

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for dir feeding sink. Records are tagged with the
// generation current at delivery time, so events raced by a navigation are
// discarded downstream instead of corrupting the new listing.
func New(dir string, sink Sink, gens GenerationSource, opts Options, logger *slog.Logger) (*DirWatcher, error) {
	opts.setDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := fsw.Add(filepath.Clean(dir)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &DirWatcher{
		dir:    filepath.Clean(dir),
		sink:   sink,
		gens:   gens,
		opts:   opts,
		logger: logger,
		fsw:    fsw,
		done:   make(chan struct{}),
	}, nil
}

// Start processes events until the context is cancelled or Stop is called.
func (w *DirWatcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	select {
	case <-ctx.Done():
	case <-w.done:
	}
	return nil
}

// Stop stops the watcher and releases resources.
func (w *DirWatcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	w.mu.Lock()
	if w.renameTimer != nil {
		w.renameTimer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *DirWatcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}

// handleEvent translates one fsnotify event into change records.
func (w *DirWatcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)

	// Only direct children of the watched directory matter.
	if filepath.Dir(event.Name) != w.dir {
		return
	}
	if w.opts.shouldIgnore(name) {
		return
	}

	switch {
	case event.Op&fsnotify.Rename != 0:
		// Park the old name; the paired create decides whether this was
		// a rename within the directory or a move out of it.
		w.parkRename(name)

	case event.Op&fsnotify.Create != 0:
		if old, ok := w.claimRename(); ok {
			w.emit(browse.ActionRenamedOld, old)
			w.emit(browse.ActionRenamedNew, name)
			return
		}
		w.emit(browse.ActionAdded, name)

	case event.Op&fsnotify.Remove != 0:
		w.emit(browse.ActionRemoved, name)

	case event.Op&(fsnotify.Write|fsnotify.Chmod) != 0:
		w.emit(browse.ActionModified, name)
	}
}

// parkRename stores the old name of a rename pair and arms the expiry
// timer. An unpaired old name becomes a removal: the entry was moved to
// another directory.
func (w *DirWatcher) parkRename(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pendingRename != "" {
		// Two renames back to back without a create in between; the
		// first one left the directory.
		w.emit(browse.ActionRemoved, w.pendingRename)
	}
	w.pendingRename = name

	if w.renameTimer != nil {
		w.renameTimer.Stop()
	}
	w.renameTimer = time.AfterFunc(w.opts.RenameWindow, w.expireRename)
}

// claimRename consumes the parked old name, if any.
func (w *DirWatcher) claimRename() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pendingRename == "" {
		return "", false
	}
	old := w.pendingRename
	w.pendingRename = ""
	if w.renameTimer != nil {
		w.renameTimer.Stop()
	}
	return old, true
}

func (w *DirWatcher) expireRename() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pendingRename == "" {
		return
	}
	w.emit(browse.ActionRemoved, w.pendingRename)
	w.pendingRename = ""
}

// emit forwards a record to the sink, tagged with the current generation
// and a per-name event id so bursts on one file coalesce into one flush.
func (w *DirWatcher) emit(action browse.ChangeAction, name string) {
	w.sink.Enqueue(action, name, w.gens.CurrentGeneration(), eventID(name))
}

// eventID derives a stable coalescing id from the filename. A hash
// collision merely merges two coalescing windows, which is harmless.
func eventID(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}
