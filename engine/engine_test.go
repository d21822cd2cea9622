package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ben-xx/flappy-search-bar/status"
)

// watchStatuses subscribes to the engine's status channel and returns
// a channel carrying every transition in order.
func watchStatuses[T any](e *Engine[T]) chan status.Status {
	ch := make(chan status.Status, 16)
	e.Statuses().Subscribe(func(s status.Status) {
		ch <- s
	})
	return ch
}

// watchUpdates subscribes to the engine's list deliveries.
func watchUpdates[T any](e *Engine[T]) chan []T {
	ch := make(chan []T, 16)
	e.Updates().Subscribe(func(items []T) {
		ch <- items
	})
	return ch
}

func nextStatus(t *testing.T, ch chan status.Status) status.Status {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status")
		return 0
	}
}

func nextUpdate[T any](t *testing.T, ch chan []T) []T {
	t.Helper()
	select {
	case items := <-ch:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for list delivery")
		return nil
	}
}

func requireNoStatus(t *testing.T, ch chan status.Status) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("unexpected status %v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func staticSearch(results []string) SearchFunc[string] {
	return func(ctx context.Context, query string) ([]string, error) {
		return results, nil
	}
}

func TestSearchDeliversLoadingThenListChanged(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	statuses := watchStatuses(e)
	updates := watchUpdates(e)

	e.Search("cat", staticSearch([]string{"cat1", "cat2"}))

	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.ListChanged, nextStatus(t, statuses))
	require.Equal(t, []string{"cat1", "cat2"}, nextUpdate(t, updates))
	require.Equal(t, []string{"cat1", "cat2"}, e.Visible())
	require.Equal(t, "cat", e.LastQuery())
	require.NoError(t, e.LastError())
}

func TestSearchEmptyResultSuppressesListChanged(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	statuses := watchStatuses(e)
	updates := watchUpdates(e)

	e.Search("nothing", staticSearch(nil))

	require.Equal(t, status.Loading, nextStatus(t, statuses))
	// The empty list is still delivered, but no ListChanged fires.
	require.Empty(t, nextUpdate(t, updates))
	requireNoStatus(t, statuses)
	require.Equal(t, "nothing", e.LastQuery())
}

func TestSearchFailureNotifiesErrorWithoutMutation(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	e.SetSuggestions([]string{"keep"})

	statuses := watchStatuses(e)
	netErr := errors.New("network unreachable")

	e.Search("cat", func(ctx context.Context, query string) ([]string, error) {
		return nil, netErr
	})

	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.Error, nextStatus(t, statuses))
	require.ErrorIs(t, e.LastError(), netErr)
	require.Equal(t, []string{"keep"}, e.Base(), "failed search must not touch the lists")
	require.Empty(t, e.LastQuery(), "failed search must not be recorded for replay")
}

func TestSupersededSearchIsNeverCommitted(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	statuses := watchStatuses(e)
	updates := watchUpdates(e)

	release := make(chan struct{})
	slow := func(ctx context.Context, query string) ([]string, error) {
		<-release
		return []string{"slow"}, nil
	}

	e.Search("c", slow)
	require.Equal(t, status.Loading, nextStatus(t, statuses))

	e.Search("ca", staticSearch([]string{"fast"}))
	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.ListChanged, nextStatus(t, statuses))
	require.Equal(t, []string{"fast"}, nextUpdate(t, updates))

	// Let the superseded search finish; it ignores its own
	// cancellation and returns a result, which must be discarded.
	close(release)
	requireNoStatus(t, statuses)
	require.Equal(t, []string{"fast"}, e.Visible())
	require.Equal(t, "ca", e.LastQuery())
}

func TestSupersededSearchCannotCommitDuringDispatch(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	updates := watchUpdates(e)

	release := make(chan struct{})
	slow := func(ctx context.Context, query string) ([]string, error) {
		<-release
		return []string{"old"}, nil
	}

	// Let the slow search race the second dispatch: the moment the
	// superseding Loading fires, the slow search is released and given
	// time to finish. Its commit slot must already be gone by then.
	loadings := 0
	e.Statuses().Subscribe(func(s status.Status) {
		if s != status.Loading {
			return
		}
		loadings++
		if loadings == 2 {
			close(release)
			time.Sleep(50 * time.Millisecond)
		}
	})

	e.Search("c", slow)
	e.Search("ca", staticSearch([]string{"new"}))

	require.Equal(t, []string{"new"}, nextUpdate(t, updates))

	select {
	case items := <-updates:
		t.Fatalf("superseded result was delivered: %v", items)
	case <-time.After(100 * time.Millisecond):
	}
	require.Equal(t, []string{"new"}, e.Visible())
	require.Equal(t, "ca", e.LastQuery())
}

func TestSupersededSearchFailureIsSuppressed(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	statuses := watchStatuses(e)

	canceled := func(ctx context.Context, query string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	e.Search("c", canceled)
	require.Equal(t, status.Loading, nextStatus(t, statuses))

	e.Search("ca", staticSearch([]string{"ca1"}))
	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.ListChanged, nextStatus(t, statuses))

	// The canceled search's context error must not surface.
	requireNoStatus(t, statuses)
	require.NoError(t, e.LastError())
}

func TestInjectSearchBelowMinCharsIsNoOp(t *testing.T) {
	t.Parallel()
	e := New[string](3)
	statuses := watchStatuses(e)

	called := false
	e.InjectSearch("ab", func(ctx context.Context, query string) ([]string, error) {
		called = true
		return []string{"x"}, nil
	})

	requireNoStatus(t, statuses)
	require.False(t, called, "sub-threshold query must not dispatch")
	require.Empty(t, e.QueryText())
	require.Empty(t, e.Visible())
}

func TestInjectSearchAtThresholdDispatches(t *testing.T) {
	t.Parallel()
	e := New[string](3)
	statuses := watchStatuses(e)

	e.InjectSearch("cat", staticSearch([]string{"cat1"}))

	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.ListChanged, nextStatus(t, statuses))
	require.Equal(t, "cat", e.QueryText())
}

func TestDirectSearchBelowMinCharsStillDispatches(t *testing.T) {
	t.Parallel()
	e := New[string](3)
	statuses := watchStatuses(e)

	e.Search("ab", staticSearch([]string{"ab1"}))

	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.ListChanged, nextStatus(t, statuses))
}

func TestReplayLastSearch(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	statuses := watchStatuses(e)

	calls := 0
	var queries []string
	fn := func(ctx context.Context, query string) ([]string, error) {
		calls++
		queries = append(queries, query)
		return []string{"r"}, nil
	}

	e.Search("cat", fn)
	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.ListChanged, nextStatus(t, statuses))

	e.ReplayLastSearch()
	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.ListChanged, nextStatus(t, statuses))

	require.Equal(t, 2, calls)
	require.Equal(t, []string{"cat", "cat"}, queries)
}

func TestReplayWithoutPriorSearchIsNoOp(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	statuses := watchStatuses(e)

	e.ReplayLastSearch()

	requireNoStatus(t, statuses)
}

func TestClearNotifiesWithoutMutation(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	e.SetSuggestions([]string{"a", "b"})
	statuses := watchStatuses(e)

	e.Clear()

	require.Equal(t, status.Cleared, nextStatus(t, statuses))
	require.Equal(t, []string{"a", "b"}, e.Visible(), "clear is a signal, not a reset")
}

func TestMarkReadyCancelsPendingSearch(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	statuses := watchStatuses(e)

	e.Search("cat", func(ctx context.Context, query string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.True(t, e.Searching())

	e.MarkReady()
	require.Equal(t, status.Ready, nextStatus(t, statuses))
	require.False(t, e.Searching())

	// The canceled operation must not report anything.
	requireNoStatus(t, statuses)
	require.NoError(t, e.LastError())
}

func TestSearchResetsFilterAndSort(t *testing.T) {
	t.Parallel()
	e := New[int](0)
	e.SetSuggestions([]int{3, 1, 2})
	e.Sort(func(a, b int) int { return a - b })
	e.Filter(func(n int) bool { return n > 1 })
	statuses := watchStatuses(e)
	updates := watchUpdates(e)

	e.Search("fresh", func(ctx context.Context, query string) ([]int, error) {
		return []int{9, 8}, nil
	})

	require.Equal(t, status.Loading, nextStatus(t, statuses))
	require.Equal(t, status.ListChanged, nextStatus(t, statuses))
	require.Equal(t, []int{9, 8}, nextUpdate(t, updates), "fresh results arrive unfiltered and unsorted")
	require.Equal(t, []int{9, 8}, e.Visible())
}

func TestStatusZeroValueIsCleared(t *testing.T) {
	t.Parallel()
	e := New[string](0)
	require.Equal(t, status.Cleared, e.Statuses().Value())
}
