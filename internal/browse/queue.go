package browse

import "sync"

// ChangeQueue is the ordered buffer of pending change records. It is the
// only state shared between the notification-delivery goroutine and the
// reconciliation goroutine, so the lock is held just long enough to append
// or swap the backing slice. No resolution or metadata work ever happens
// under this lock.
type ChangeQueue struct {
	mu      sync.Mutex
	records []ChangeRecord
}

// NewChangeQueue creates an empty change queue.
func NewChangeQueue() *ChangeQueue {
	return &ChangeQueue{}
}

// Enqueue appends a record in arrival order.
func (q *ChangeQueue) Enqueue(rec ChangeRecord) {
	q.mu.Lock()
	q.records = append(q.records, rec)
	q.mu.Unlock()
}

// TakeAll atomically removes and returns every queued record. The caller
// owns the returned slice; records enqueued after the swap land in a fresh
// batch.
func (q *ChangeQueue) TakeAll() []ChangeRecord {
	q.mu.Lock()
	batch := q.records
	q.records = nil
	q.mu.Unlock()
	return batch
}

// Len returns the number of currently queued records.
func (q *ChangeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}
