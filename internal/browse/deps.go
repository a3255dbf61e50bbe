package browse

// ColumnType identifies a details-view column whose value is computed
// asynchronously by the column task scheduler.
type ColumnType int

const (
	ColumnName ColumnType = iota
	ColumnSize
	ColumnKind
	ColumnModified
	ColumnAttributes
)

// Column is one details-view column and whether it is currently shown.
type Column struct {
	Type    ColumnType `json:"type"`
	Checked bool       `json:"checked"`
}

// Resolver resolves a name within the watched directory to an identity
// token. A false result means the entry does not exist (typically because
// it was renamed or deleted before the notification was processed); it is
// a fast negative, never an error worth retrying synchronously.
type Resolver interface {
	Resolve(name string) (Identity, bool)
}

// MetadataSource fetches filesystem metadata for a resolved identity. It
// fails if the target vanished between resolution and fetch.
type MetadataSource interface {
	Fetch(id Identity) (Metadata, error)
}

// Filter is the active filter predicate. Filtered items stay in the item
// store but are removed from the view projection.
type Filter interface {
	IsFiltered(item *Item) bool
}

// SortGrouper computes sorted positions and group membership for items.
// The comparator itself lives with the owner of the view.
type SortGrouper interface {
	SortedPosition(item *Item) int
	GroupFor(item *Item) int
}

// ColumnScheduler queues asynchronous recomputation of a single column
// value for an item in details view.
type ColumnScheduler interface {
	QueueColumnRefresh(internalIndex int, column ColumnType)
}

// ViewProjector receives view-update instructions from the reconciler.
// Positions are visual; internal indices are stable item identities. A
// position of -1 on InsertRow means "append".
type ViewProjector interface {
	SuspendRedraw()
	ResumeRedraw()
	InsertRow(position int, internalIndex int)
	RemoveRow(internalIndex int)
	SetSelected(internalIndex int)
	SetFocused(internalIndex int)
	EnsureVisible(internalIndex int)
	SetCut(internalIndex int, cut bool)
	InvalidateIcon(internalIndex int)
	InvalidateColumns(internalIndex int)
	RequestResort()
	SetGroup(internalIndex int, groupID int)
}

// NoopProjector discards every view instruction. Useful for tests and for
// headless sessions that only need the item store kept consistent.
type NoopProjector struct{}

func (NoopProjector) SuspendRedraw()            {}
func (NoopProjector) ResumeRedraw()             {}
func (NoopProjector) InsertRow(int, int)        {}
func (NoopProjector) RemoveRow(int)             {}
func (NoopProjector) SetSelected(int)           {}
func (NoopProjector) SetFocused(int)            {}
func (NoopProjector) EnsureVisible(int)         {}
func (NoopProjector) SetCut(int, bool)          {}
func (NoopProjector) InvalidateIcon(int)        {}
func (NoopProjector) InvalidateColumns(int)     {}
func (NoopProjector) RequestResort()            {}
func (NoopProjector) SetGroup(int, int)         {}

// AcceptAllFilter filters nothing.
type AcceptAllFilter struct{}

// IsFiltered always returns false.
func (AcceptAllFilter) IsFiltered(*Item) bool { return false }

// AppendSorter places every item at the end and in a single group.
type AppendSorter struct{}

// SortedPosition always returns -1 (append).
func (AppendSorter) SortedPosition(*Item) int { return -1 }

// GroupFor always returns group 0.
func (AppendSorter) GroupFor(*Item) int { return 0 }

// NoopColumnScheduler drops column refresh requests.
type NoopColumnScheduler struct{}

// QueueColumnRefresh is a no-op.
func (NoopColumnScheduler) QueueColumnRefresh(int, ColumnType) {}
