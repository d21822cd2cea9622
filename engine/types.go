package engine

import "context"

// SearchFunc produces results for a query. It is supplied by the
// caller and never owned by the engine; the context is canceled when a
// newer search supersedes this one.
type SearchFunc[T any] func(ctx context.Context, query string) ([]T, error)

// Compare orders two items: negative means a before b, zero means
// equal, positive means a after b. Sorting is stable.
type Compare[T any] func(a, b T) int

// Predicate reports whether an item passes a filter.
type Predicate[T any] func(item T) bool

// operation is one cancelable in-flight search. The engine holds at
// most one; a superseded operation's result is discarded by identity
// check at commit time.
type operation struct {
	ctx    context.Context
	cancel context.CancelFunc
	query  string
}
