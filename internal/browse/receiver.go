package browse

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultCoalesceDelay is the window during which repeated notifications
// for the same event source are merged into a single reconciliation pass.
const DefaultCoalesceDelay = 200 * time.Millisecond

// Receiver accepts raw change notifications from the watcher goroutine,
// enqueues them, and arms a coalescing timer per event id. When a timer
// fires it posts exactly one flush signal; events arriving for the same id
// before expiry simply restart the timer, so a burst of changes collapses
// into one flush. The receiver never drops a record itself; only the
// reconciler discards records, and only on generation mismatch.
type Receiver struct {
	queue  *ChangeQueue
	delay  time.Duration
	flush  func()
	logger *slog.Logger

	mu     sync.Mutex
	timers map[uint64]*time.Timer
	closed bool
}

// NewReceiver creates a receiver that appends to queue and invokes flush
// once per coalescing window. A non-positive delay falls back to
// DefaultCoalesceDelay.
func NewReceiver(queue *ChangeQueue, delay time.Duration, flush func(), logger *slog.Logger) *Receiver {
	if delay <= 0 {
		delay = DefaultCoalesceDelay
	}
	return &Receiver{
		queue:  queue,
		delay:  delay,
		flush:  flush,
		logger: logger,
		timers: make(map[uint64]*time.Timer),
	}
}

// Enqueue records a change and (re)arms the coalescing timer for eventID.
func (r *Receiver) Enqueue(action ChangeAction, name string, generation, eventID uint64) {
	r.queue.Enqueue(ChangeRecord{
		Action:     action,
		Name:       name,
		Generation: generation,
	})

	r.logger.Debug("change enqueued",
		"action", action.String(),
		"name", name,
		"generation", generation,
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	if t, ok := r.timers[eventID]; ok {
		t.Reset(r.delay)
		return
	}

	r.timers[eventID] = time.AfterFunc(r.delay, func() {
		r.fire(eventID)
	})
}

// fire retires the timer for eventID and posts the flush signal.
func (r *Receiver) fire(eventID uint64) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	delete(r.timers, eventID)
	r.mu.Unlock()

	r.flush()
}

// Close stops all pending timers. Records already queued remain available
// to the reconciler; no further flush signals are posted.
func (r *Receiver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}
