package view

// Projector adapts the event manager to the reconciler's view-projector
// interface. Every instruction becomes one broadcast event.
type Projector struct {
	manager *Manager
}

// NewProjector creates a projector emitting through manager.
func NewProjector(manager *Manager) *Projector {
	return &Projector{manager: manager}
}

// SuspendRedraw signals clients to stop painting.
func (p *Projector) SuspendRedraw() {
	p.manager.Emit(newEvent(EventRedrawSuspended))
}

// ResumeRedraw signals clients to paint again.
func (p *Projector) ResumeRedraw() {
	p.manager.Emit(newEvent(EventRedrawResumed))
}

// InsertRow announces a new row. A position of -1 means append.
func (p *Projector) InsertRow(position, internalIndex int) {
	e := newEvent(EventRowInserted)
	e.Index = internalIndex
	e.Position = position
	p.manager.Emit(e)
}

// RemoveRow announces a removed row.
func (p *Projector) RemoveRow(internalIndex int) {
	e := newEvent(EventRowRemoved)
	e.Index = internalIndex
	p.manager.Emit(e)
}

// SetSelected marks a row selected.
func (p *Projector) SetSelected(internalIndex int) {
	e := newEvent(EventRowSelected)
	e.Index = internalIndex
	p.manager.Emit(e)
}

// SetFocused moves keyboard focus to a row.
func (p *Projector) SetFocused(internalIndex int) {
	e := newEvent(EventRowFocused)
	e.Index = internalIndex
	p.manager.Emit(e)
}

// EnsureVisible asks clients to scroll a row into view.
func (p *Projector) EnsureVisible(internalIndex int) {
	e := newEvent(EventEnsureVisible)
	e.Index = internalIndex
	p.manager.Emit(e)
}

// SetCut toggles the dimmed visual state of a row.
func (p *Projector) SetCut(internalIndex int, cut bool) {
	e := newEvent(EventRowCut)
	e.Index = internalIndex
	e.Cut = cut
	p.manager.Emit(e)
}

// InvalidateIcon asks clients to re-fetch a row's icon.
func (p *Projector) InvalidateIcon(internalIndex int) {
	e := newEvent(EventIconInvalidated)
	e.Index = internalIndex
	p.manager.Emit(e)
}

// InvalidateColumns asks clients to re-fetch all column text for a row.
func (p *Projector) InvalidateColumns(internalIndex int) {
	e := newEvent(EventColumnsInvalidated)
	e.Index = internalIndex
	p.manager.Emit(e)
}

// RequestResort asks clients to re-apply the current sort.
func (p *Projector) RequestResort() {
	p.manager.Emit(newEvent(EventResortRequested))
}

// SetGroup announces a row's new group membership.
func (p *Projector) SetGroup(internalIndex, groupID int) {
	e := newEvent(EventGroupChanged)
	e.Index = internalIndex
	e.GroupID = groupID
	p.manager.Emit(e)
}
