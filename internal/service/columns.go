package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/paneapp/pane-server/internal/browse"
)

// columnRequest is one queued column recomputation.
type columnRequest struct {
	index  int
	column browse.ColumnType
}

// ColumnRefresher consumes column refresh requests off the reconciliation
// path and turns them into column invalidations on the view, deduplicated
// per item. Implements browse.ColumnScheduler.
//
// Requests are dropped rather than blocking a flush when the buffer
// fills; the client re-fetches the whole row on the next invalidation
// anyway.
type ColumnRefresher struct {
	view   browse.ViewProjector
	logger *slog.Logger

	requests chan columnRequest
	wg       sync.WaitGroup
}

// NewColumnRefresher creates a refresher feeding view.
func NewColumnRefresher(view browse.ViewProjector, logger *slog.Logger) *ColumnRefresher {
	return &ColumnRefresher{
		view:     view,
		logger:   logger,
		requests: make(chan columnRequest, 256),
	}
}

// QueueColumnRefresh implements browse.ColumnScheduler. Never blocks.
func (c *ColumnRefresher) QueueColumnRefresh(internalIndex int, column browse.ColumnType) {
	select {
	case c.requests <- columnRequest{index: internalIndex, column: column}:
	default:
		c.logger.Warn("column refresh queue full, dropping request",
			"index", internalIndex,
			"column", int(column),
		)
	}
}

// Start consumes requests until the context is cancelled. Call once in a
// goroutine.
func (c *ColumnRefresher) Start(ctx context.Context) {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.requests:
			c.drainFor(req.index)
			c.view.InvalidateColumns(req.index)
		}
	}
}

// drainFor swallows queued requests for the same item; one invalidation
// covers all of its pending columns.
func (c *ColumnRefresher) drainFor(index int) {
	for {
		select {
		case req := <-c.requests:
			if req.index != index {
				// Different item, put the invalidation through directly.
				c.view.InvalidateColumns(req.index)
				continue
			}
		default:
			return
		}
	}
}

// Wait blocks until the consumer goroutine has exited.
func (c *ColumnRefresher) Wait() {
	c.wg.Wait()
}
