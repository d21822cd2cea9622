package engine

import "slices"

// View precedence: sorted wins over filtered, filtered wins over base.
// An empty derived list means "not applied", not "matched nothing", so
// non-emptiness is the activation test throughout.

// Visible returns the list observers should render: the most specific
// derived view currently active.
func (e *Engine[T]) Visible() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visibleLocked()
}

func (e *Engine[T]) visibleLocked() []T {
	switch {
	case len(e.sorted) > 0:
		return e.sorted
	case len(e.filtered) > 0:
		return e.filtered
	default:
		return e.base
	}
}

// Base returns the full result list from the last completed search, or
// the seeded suggestions before any search.
func (e *Engine[T]) Base() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.base
}

// Sort records cmp as the active comparator and rebuilds the sorted
// view from the filtered list when a filter is active, else from the
// base list. Delivers the sorted view; no status transition.
func (e *Engine[T]) Sort(cmp Compare[T]) {
	e.mu.Lock()
	e.lastCompare = cmp
	src := e.base
	if len(e.filtered) > 0 {
		src = e.filtered
	}
	e.sorted = slices.Clone(src)
	slices.SortStableFunc(e.sorted, cmp)
	visible := e.sorted
	e.mu.Unlock()

	e.updates.Notify(visible)
}

// Filter rebuilds the filtered view by testing pred over the sorted
// list when a sort is active, else over the base list, preserving
// relative order. Delivers the filtered view; no status transition.
func (e *Engine[T]) Filter(pred Predicate[T]) {
	e.mu.Lock()
	src := e.base
	if len(e.sorted) > 0 {
		src = e.sorted
	}
	e.filtered = e.filtered[:0:0]
	for _, item := range src {
		if pred(item) {
			e.filtered = append(e.filtered, item)
		}
	}
	visible := e.filtered
	e.mu.Unlock()

	e.updates.Notify(visible)
}

// RemoveFilter drops the filtered view. When a comparator is active
// the sorted view is rebuilt from the full base list with it, so
// unfiltering keeps the established order; otherwise the base list is
// delivered as-is. No status transition.
func (e *Engine[T]) RemoveFilter() {
	e.mu.Lock()
	e.filtered = nil
	var visible []T
	if e.lastCompare == nil {
		visible = e.base
	} else {
		e.sorted = slices.Clone(e.base)
		slices.SortStableFunc(e.sorted, e.lastCompare)
		visible = e.sorted
	}
	e.mu.Unlock()

	e.updates.Notify(visible)
}

// RemoveSort drops the sorted view and forgets the comparator,
// delivering the filtered view when one is active, else the base list.
// No status transition.
func (e *Engine[T]) RemoveSort() {
	e.mu.Lock()
	e.sorted = nil
	e.lastCompare = nil
	visible := e.base
	if len(e.filtered) > 0 {
		visible = e.filtered
	}
	e.mu.Unlock()

	e.updates.Notify(visible)
}
