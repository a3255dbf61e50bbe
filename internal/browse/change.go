// Package browse maintains a live, consistent in-memory view of a single
// directory's contents while filesystem change notifications arrive out of
// band. The reconciler coalesces raw change records, applies them to an
// authoritative item store, and emits view instructions for connected
// clients.
package browse

// ChangeAction identifies the kind of filesystem change a record describes.
type ChangeAction int

const (
	// ActionAdded is emitted when a new entry appears in the directory.
	ActionAdded ChangeAction = iota
	// ActionModified is emitted when an existing entry's metadata changes.
	ActionModified
	// ActionRemoved is emitted when an entry is deleted.
	ActionRemoved
	// ActionRenamedOld carries the previous name of a renamed entry.
	ActionRenamedOld
	// ActionRenamedNew carries the new name of a renamed entry and always
	// follows a matching ActionRenamedOld from the same source.
	ActionRenamedNew
)

// String returns the string representation of the action.
func (a ChangeAction) String() string {
	switch a {
	case ActionAdded:
		return "added"
	case ActionModified:
		return "modified"
	case ActionRemoved:
		return "removed"
	case ActionRenamedOld:
		return "renamed-old"
	case ActionRenamedNew:
		return "renamed-new"
	default:
		return "unknown"
	}
}

// ChangeRecord is one pending directory change.
//
// Generation identifies which incarnation of the watched directory the
// record belongs to. Navigating to a new directory bumps the generation;
// records tagged with an older generation are discarded during a flush
// instead of being applied to the freshly loaded listing.
type ChangeRecord struct {
	Action     ChangeAction
	Name       string
	Generation uint64
}
