// Package engine implements the search orchestration core:
// asynchronous search dispatch with cancellation of superseded
// requests, derived filtered/sorted views over the result list, and
// lifecycle status broadcasting.
package engine

import (
	"context"
	"log"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/ben-xx/flappy-search-bar/status"
)

// Engine owns the current result list and its derived views, runs
// cancelable search dispatch, and publishes lifecycle transitions.
//
// Concurrency: all operations may be called from any goroutine; state
// is mutex-guarded because a search commit runs on the goroutine that
// executed the SearchFunc. At most one search operation is in flight
// at a time; starting a new one cancels the previous one, and a
// canceled operation's result is never committed and never surfaces as
// an error.
type Engine[T any] struct {
	mu           sync.Mutex
	base         []T
	filtered     []T
	sorted       []T
	queryText    string
	lastQuery    string
	lastSearchFn SearchFunc[T]
	lastCompare  Compare[T]
	pending      *operation
	lastErr      error
	minChars     int

	statuses *status.Channel[status.Status]
	updates  *status.Channel[[]T]
}

// New creates an engine. minChars is the minimum query length (in
// runes) that InjectSearch will dispatch; direct Search calls are not
// gated. The status channel starts at Cleared.
func New[T any](minChars int) *Engine[T] {
	return &Engine[T]{
		minChars: minChars,
		statuses: status.NewChannel(status.Cleared),
		updates:  status.NewChannel[[]T](nil),
	}
}

// Statuses returns the lifecycle status channel. Observers re-read
// engine state (Visible, LastError) on each notification; the status
// itself carries no data.
func (e *Engine[T]) Statuses() *status.Channel[status.Status] {
	return e.statuses
}

// Updates returns the channel on which the engine delivers the visible
// list after every operation that changes it, including ones that emit
// no status transition (Filter, Sort, RemoveFilter, RemoveSort,
// SetSuggestions).
func (e *Engine[T]) Updates() *status.Channel[[]T] {
	return e.updates
}

// Search dispatches an asynchronous search for query. It cancels any
// in-flight search, notifies Loading synchronously before the search
// function runs, and returns immediately; completion is observed
// through the status channel. On success the result list replaces the base view
// and any filter or sort is reset. On failure the failure is recorded
// and Error is notified with no change to the lists. A search that was
// superseded before completing commits nothing at all.
func (e *Engine[T]) Search(query string, fn SearchFunc[T]) {
	// The superseded operation must lose its commit slot before Loading
	// is observable and before the new goroutine starts; a late
	// completion then fails the identity check in run no matter how the
	// goroutines interleave.
	e.mu.Lock()
	if e.pending != nil {
		e.pending.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	op := &operation{ctx: ctx, cancel: cancel, query: query}
	e.pending = op
	e.queryText = query
	e.mu.Unlock()

	e.statuses.Notify(status.Loading)

	go e.run(op, query, fn)
}

// run executes the search function and commits its outcome, unless the
// operation was superseded in the meantime.
func (e *Engine[T]) run(op *operation, query string, fn SearchFunc[T]) {
	results, err := fn(op.ctx, query)

	e.mu.Lock()
	if e.pending != op || op.ctx.Err() != nil {
		e.mu.Unlock()
		log.Printf("search for %q superseded, discarding result", query)
		return
	}
	e.pending = nil

	if err != nil {
		e.lastErr = err
		e.mu.Unlock()
		log.Printf("search for %q failed: %v", query, err)
		e.statuses.Notify(status.Error)
		return
	}

	e.base = results
	e.filtered = nil
	e.sorted = nil
	e.lastCompare = nil
	e.lastErr = nil
	e.lastQuery = query
	e.lastSearchFn = fn
	visible := e.visibleLocked()
	e.mu.Unlock()

	if len(visible) > 0 {
		e.statuses.Notify(status.ListChanged)
	}
	e.updates.Notify(visible)
}

// InjectSearch programmatically sets the query text and dispatches a
// search, but only when the query is at least minChars runes long.
// Below the threshold it is a no-op: no status transition, no
// mutation.
func (e *Engine[T]) InjectSearch(query string, fn SearchFunc[T]) {
	if utf8.RuneCountInString(query) < e.minChars {
		return
	}
	e.Search(query, fn)
}

// ReplayLastSearch re-runs the most recently committed search with its
// original query and search function. No-op when no search has
// completed yet.
func (e *Engine[T]) ReplayLastSearch() {
	e.mu.Lock()
	query, fn := e.lastQuery, e.lastSearchFn
	e.mu.Unlock()

	if fn == nil {
		return
	}
	e.Search(query, fn)
}

// Clear notifies observers of a clear request. It does not touch the
// result lists itself; the presentation layer owns the follow-up
// resets. Kept as a pure cross-cutting signal.
func (e *Engine[T]) Clear() {
	e.statuses.Notify(status.Cleared)
}

// MarkReady cancels any in-flight search and notifies Ready. The
// search bar calls this when the input drops below the minimum query
// length and the component returns to its idle state.
func (e *Engine[T]) MarkReady() {
	e.mu.Lock()
	if e.pending != nil {
		e.pending.cancel()
		e.pending = nil
	}
	e.mu.Unlock()

	e.statuses.Notify(status.Ready)
}

// SetSuggestions seeds the base list shown before any search has run.
// Any active filter or sort is reset. Delivers the new visible list
// without a status transition.
func (e *Engine[T]) SetSuggestions(items []T) {
	e.mu.Lock()
	e.base = slices.Clone(items)
	e.filtered = nil
	e.sorted = nil
	e.lastCompare = nil
	visible := e.visibleLocked()
	e.mu.Unlock()

	e.updates.Notify(visible)
}

// Searching reports whether a search operation is in flight.
func (e *Engine[T]) Searching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending != nil
}

// QueryText returns the externally visible query text, as set by the
// last Search or InjectSearch call.
func (e *Engine[T]) QueryText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queryText
}

// LastQuery returns the query of the last successfully committed
// search, or "" when none has completed.
func (e *Engine[T]) LastQuery() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastQuery
}

// LastError returns the failure recorded by the most recent failed
// search, or nil after a successful one.
func (e *Engine[T]) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// MinChars returns the minimum query length enforced by InjectSearch.
func (e *Engine[T]) MinChars() int {
	return e.minChars
}
