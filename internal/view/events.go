// Package view broadcasts view-update instructions from the reconciler to
// connected clients over a server-sent event stream. The reconciler talks
// to an abstract projector; this package is its network-facing
// realization. Actual rendering happens client-side.
package view

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of view instruction event.
type EventType string

const (
	// EventRedrawSuspended tells clients to stop painting while a batch
	// of updates is applied.
	EventRedrawSuspended EventType = "redraw.suspended"
	// EventRedrawResumed tells clients to paint again.
	EventRedrawResumed EventType = "redraw.resumed"

	// EventRowInserted announces a new row at a position (-1 = append).
	EventRowInserted EventType = "row.inserted"
	// EventRowRemoved announces a removed row.
	EventRowRemoved EventType = "row.removed"

	// EventRowSelected marks a row selected.
	EventRowSelected EventType = "row.selected"
	// EventRowFocused moves keyboard focus to a row.
	EventRowFocused EventType = "row.focused"
	// EventRowCut toggles the dimmed "cut" visual state of a row.
	EventRowCut EventType = "row.cut"
	// EventEnsureVisible asks clients to scroll a row into view.
	EventEnsureVisible EventType = "row.ensure_visible"

	// EventIconInvalidated asks clients to re-fetch a row's icon.
	EventIconInvalidated EventType = "icon.invalidated"
	// EventColumnsInvalidated asks clients to re-fetch all column text.
	EventColumnsInvalidated EventType = "columns.invalidated"

	// EventResortRequested asks clients to re-apply the current sort.
	EventResortRequested EventType = "resort.requested"
	// EventGroupChanged announces a row's new group membership.
	EventGroupChanged EventType = "group.changed"

	// EventHeartbeat is a connection keepalive.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one view instruction sent to clients. Index is the stable
// internal index of the affected item, not its visual position.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Index     int       `json:"index,omitempty"`
	Position  int       `json:"position,omitempty"`
	GroupID   int       `json:"groupId,omitempty"`
	Cut       bool      `json:"cut,omitempty"`
}

// newEvent creates an event with a fresh id and timestamp.
func newEvent(t EventType) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat)
}
