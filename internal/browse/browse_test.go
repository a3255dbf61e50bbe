package browse

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"
)

// testLogger returns a quiet logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// fakeFS is a scripted Resolver + MetadataSource. Entries exist by name;
// failFetch simulates a file vanishing between resolution and fetch.
type fakeFS struct {
	mu        sync.Mutex
	entries   map[string]Metadata
	failFetch map[string]bool
	inodes    uint64
	inodeFor  map[string]uint64
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		entries:   make(map[string]Metadata),
		failFetch: make(map[string]bool),
		inodeFor:  make(map[string]uint64),
	}
}

func (f *fakeFS) put(name string, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[name] = Metadata{Name: name, Size: size, ModTime: time.Now()}
	if _, ok := f.inodeFor[name]; !ok {
		f.inodes++
		f.inodeFor[name] = f.inodes
	}
}

func (f *fakeFS) remove(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, name)
}

func (f *fakeFS) vanishOnFetch(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFetch[name] = true
}

func (f *fakeFS) Resolve(name string) (Identity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[name]; !ok {
		return Identity{}, false
	}
	return Identity{Path: path.Join("/watched", name), Inode: f.inodeFor[name]}, true
}

func (f *fakeFS) Fetch(id Identity) (Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := path.Base(id.Path)
	if f.failFetch[name] {
		return Metadata{}, fmt.Errorf("fetch %s: entry vanished", name)
	}
	meta, ok := f.entries[name]
	if !ok {
		return Metadata{}, fmt.Errorf("fetch %s: no such entry", name)
	}
	return meta, nil
}

// recordingProjector captures every view instruction in order.
type recordingProjector struct {
	calls     []string
	suspended int
	resumed   int
}

func (p *recordingProjector) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *recordingProjector) SuspendRedraw() { p.suspended++; p.record("suspend") }
func (p *recordingProjector) ResumeRedraw()  { p.resumed++; p.record("resume") }
func (p *recordingProjector) InsertRow(pos, idx int) {
	p.record("insert pos=%d idx=%d", pos, idx)
}
func (p *recordingProjector) RemoveRow(idx int)     { p.record("remove idx=%d", idx) }
func (p *recordingProjector) SetSelected(idx int)   { p.record("select idx=%d", idx) }
func (p *recordingProjector) SetFocused(idx int)    { p.record("focus idx=%d", idx) }
func (p *recordingProjector) EnsureVisible(idx int) { p.record("visible idx=%d", idx) }
func (p *recordingProjector) SetCut(idx int, cut bool) {
	p.record("cut idx=%d cut=%v", idx, cut)
}
func (p *recordingProjector) InvalidateIcon(idx int)    { p.record("icon idx=%d", idx) }
func (p *recordingProjector) InvalidateColumns(idx int) { p.record("columns idx=%d", idx) }
func (p *recordingProjector) RequestResort()            { p.record("resort") }
func (p *recordingProjector) SetGroup(idx, group int) {
	p.record("group idx=%d group=%d", idx, group)
}

func (p *recordingProjector) has(call string) bool {
	for _, c := range p.calls {
		if c == call {
			return true
		}
	}
	return false
}

// nameFilter filters items whose name matches any of the given names.
type nameFilter struct {
	names map[string]bool
}

func filterNames(names ...string) *nameFilter {
	f := &nameFilter{names: make(map[string]bool)}
	for _, n := range names {
		f.names[n] = true
	}
	return f
}

func (f *nameFilter) IsFiltered(item *Item) bool {
	return f.names[item.Metadata.Name]
}

// fixedSorter always reports the same sorted position.
type fixedSorter struct {
	position int
	group    int
}

func (s fixedSorter) SortedPosition(*Item) int { return s.position }
func (s fixedSorter) GroupFor(*Item) int       { return s.group }

// recordingScheduler captures queued column refreshes.
type recordingScheduler struct {
	queued []string
}

func (s *recordingScheduler) QueueColumnRefresh(idx int, col ColumnType) {
	s.queued = append(s.queued, fmt.Sprintf("idx=%d col=%d", idx, col))
}

// newTestReconciler builds a reconciler over a fake filesystem with a
// recording projector.
func newTestReconciler(fs *fakeFS) (*Reconciler, *ChangeQueue, *recordingProjector) {
	queue := NewChangeQueue()
	store := NewItemStore()
	proj := &recordingProjector{}
	rec := NewReconciler(queue, store, fs, fs, proj, testLogger())
	return rec, queue, proj
}

// enqueue tags a record with the reconciler's current generation.
func enqueue(q *ChangeQueue, r *Reconciler, action ChangeAction, name string) {
	q.Enqueue(ChangeRecord{Action: action, Name: name, Generation: r.CurrentGeneration()})
}
