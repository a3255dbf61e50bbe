package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paneapp/pane-server/internal/browse"
)

// recordedChange is one change delivered to the test sink.
type recordedChange struct {
	action     browse.ChangeAction
	name       string
	generation uint64
}

// chanSink forwards enqueued records to a channel.
type chanSink struct {
	ch chan recordedChange
}

func newChanSink() *chanSink {
	return &chanSink{ch: make(chan recordedChange, 64)}
}

func (s *chanSink) Enqueue(action browse.ChangeAction, name string, generation, _ uint64) {
	s.ch <- recordedChange{action: action, name: name, generation: generation}
}

// fixedGen always reports the same generation.
type fixedGen struct {
	mu  sync.Mutex
	gen uint64
}

func (g *fixedGen) CurrentGeneration() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}

func (g *fixedGen) set(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen = gen
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// startWatcher creates a watcher over dir and starts it in the background.
func startWatcher(t *testing.T, dir string, sink Sink, gens GenerationSource) *DirWatcher {
	t.Helper()

	w, err := New(dir, sink, gens, Options{}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() }) //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx) //nolint:errcheck // Test goroutine

	// Give fsnotify a moment to establish the watch.
	time.Sleep(50 * time.Millisecond)
	return w
}

// waitFor reads records until one matches or the timeout elapses.
func waitFor(t *testing.T, sink *chanSink, action browse.ChangeAction, name string) recordedChange {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case rec := <-sink.ch:
			if rec.action == action && rec.name == name {
				return rec
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s %q", action, name)
		}
	}
}

func TestDirWatcher_Create(t *testing.T) {
	dir := t.TempDir()
	sink := newChanSink()
	gens := &fixedGen{gen: 3}
	startWatcher(t, dir, sink, gens)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644))

	rec := waitFor(t, sink, browse.ActionAdded, "new.txt")
	assert.Equal(t, uint64(3), rec.generation)
}

func TestDirWatcher_Write(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "busy.log")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	sink := newChanSink()
	startWatcher(t, dir, sink, &fixedGen{})

	require.NoError(t, os.WriteFile(file, []byte("xy"), 0o644))
	waitFor(t, sink, browse.ActionModified, "busy.log")
}

func TestDirWatcher_Remove(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doomed.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	sink := newChanSink()
	startWatcher(t, dir, sink, &fixedGen{})

	require.NoError(t, os.Remove(file))
	waitFor(t, sink, browse.ActionRemoved, "doomed.txt")
}

func TestDirWatcher_RenameWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "before.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	sink := newChanSink()
	startWatcher(t, dir, sink, &fixedGen{})

	require.NoError(t, os.Rename(file, filepath.Join(dir, "after.txt")))

	waitFor(t, sink, browse.ActionRenamedOld, "before.txt")
	waitFor(t, sink, browse.ActionRenamedNew, "after.txt")
}

func TestDirWatcher_MoveOutBecomesRemoval(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	file := filepath.Join(dir, "leaving.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	sink := newChanSink()
	startWatcher(t, dir, sink, &fixedGen{})

	require.NoError(t, os.Rename(file, filepath.Join(other, "leaving.txt")))

	// No create follows inside the watched directory, so the parked old
	// name expires into a removal.
	waitFor(t, sink, browse.ActionRemoved, "leaving.txt")
}

func TestDirWatcher_GenerationTagging(t *testing.T) {
	dir := t.TempDir()
	sink := newChanSink()
	gens := &fixedGen{gen: 1}
	startWatcher(t, dir, sink, gens)

	gens.set(2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0o644))

	rec := waitFor(t, sink, browse.ActionAdded, "late.txt")
	assert.Equal(t, uint64(2), rec.generation)
}

func TestDirWatcher_IgnoredEntries(t *testing.T) {
	dir := t.TempDir()
	sink := newChanSink()
	startWatcher(t, dir, sink, &fixedGen{})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.txt"), []byte("x"), 0o644))

	// Only the non-ignored entry arrives.
	rec := waitFor(t, sink, browse.ActionAdded, "kept.txt")
	assert.Equal(t, "kept.txt", rec.name)

	select {
	case rec := <-sink.ch:
		assert.NotEqual(t, "scratch.tmp", rec.name)
	default:
	}
}

func TestEventID_StablePerName(t *testing.T) {
	assert.Equal(t, eventID("a.txt"), eventID("a.txt"))
	assert.NotEqual(t, eventID("a.txt"), eventID("b.txt"))
}
