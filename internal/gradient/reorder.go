package gradient

// SwapPositions exchanges the positions of the stops at sorted indices from
// and to. Only the Position field of those two stops changes; ids, colors,
// list order and every other stop are untouched. Equal or out-of-range
// indices leave the list as is.
func (l List) SwapPositions(from, to int) (List, bool) {
	sorted := l.Sorted()
	if from == to || from < 0 || to < 0 || from >= len(sorted) || to >= len(sorted) {
		return l, false
	}

	src, dst := sorted[from], sorted[to]
	next := l.clone()
	next.stops[next.index(src.ID)].Position = dst.Position
	next.stops[next.index(dst.ID)].Position = src.Position
	return next, true
}

// Drag tracks a drag-and-drop reorder gesture over the sorted stop view.
type Drag struct {
	source int
	active bool
}

// Start records the sorted index of the stop being dragged.
func (d *Drag) Start(sortedIndex int) {
	d.source = sortedIndex
	d.active = true
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.active
}

// Source returns the sorted index captured by Start.
func (d *Drag) Source() int {
	return d.source
}

// Cancel abandons the gesture.
func (d *Drag) Cancel() {
	d.active = false
}

// Drop finishes the gesture on target, swapping positions with the dragged
// stop. Without an active drag the list is returned unchanged.
func (d *Drag) Drop(l List, target int) (List, bool) {
	if !d.active {
		return l, false
	}
	d.active = false
	return l.SwapPositions(d.source, target)
}
