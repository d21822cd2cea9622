// Package searchbar provides a Bubble Tea search-input component: a
// text field coupled to a results list, with debounced dispatch into a
// search engine and pluggable rendering for suggestion, loading,
// empty, and error states.
package searchbar

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ben-xx/flappy-search-bar/engine"
	"github.com/ben-xx/flappy-search-bar/status"
)

const defaultDebounce = 300 * time.Millisecond

// debounceMsg fires after the debounce delay; it is ignored unless its
// generation still matches the model's, so only the latest keystroke's
// timer dispatches a search.
type debounceMsg struct {
	gen int
}

// statusMsg carries an engine lifecycle transition into the update loop
type statusMsg struct {
	status status.Status
}

// itemsMsg carries a delivered visible list into the update loop
type itemsMsg[T any] struct {
	items []T
}

// Model is the search bar component. Create one with New and embed it
// in a parent model, or run it directly as a program.
type Model[T any] struct {
	Input  textinput.Model
	KeyMap KeyMap

	eng      *engine.Engine[T]
	searchFn engine.SearchFunc[T]
	debounce time.Duration
	gen      int

	spin   spinner.Model
	styles *Styles
	cursor int
	items  []T
	st     status.Status
	msgCh  chan tea.Msg

	renderItem func(item T, selected bool) string
	onSelect   func(item T) tea.Cmd
	errorText  func(err error) string

	loadingText string
	emptyText   string
	maxVisible  int

	// option staging; the engine is built after all options applied
	minChars    int
	suggestions []T
}

// Option configures a Model.
type Option[T any] func(*Model[T])

// WithMinChars sets the minimum query length (in runes) below which
// keystrokes do not dispatch a search.
func WithMinChars[T any](n int) Option[T] {
	return func(m *Model[T]) { m.minChars = n }
}

// WithDebounce sets the delay between the last keystroke and dispatch.
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(m *Model[T]) { m.debounce = d }
}

// WithPlaceholder sets the input placeholder text.
func WithPlaceholder[T any](s string) Option[T] {
	return func(m *Model[T]) { m.Input.Placeholder = s }
}

// WithLoadingText sets the text shown next to the spinner.
func WithLoadingText[T any](s string) Option[T] {
	return func(m *Model[T]) { m.loadingText = s }
}

// WithEmptyText sets the text shown when a search returns no results.
func WithEmptyText[T any](s string) Option[T] {
	return func(m *Model[T]) { m.emptyText = s }
}

// WithErrorText sets the renderer for the error state.
func WithErrorText[T any](fn func(err error) string) Option[T] {
	return func(m *Model[T]) { m.errorText = fn }
}

// WithRenderItem sets the renderer for a single result row.
func WithRenderItem[T any](fn func(item T, selected bool) string) Option[T] {
	return func(m *Model[T]) { m.renderItem = fn }
}

// WithOnSelect sets the command run when a result is chosen.
func WithOnSelect[T any](fn func(item T) tea.Cmd) Option[T] {
	return func(m *Model[T]) { m.onSelect = fn }
}

// WithSuggestions seeds the list shown before any search has run.
func WithSuggestions[T any](items []T) Option[T] {
	return func(m *Model[T]) { m.suggestions = items }
}

// WithMaxVisible caps how many result rows are rendered.
func WithMaxVisible[T any](n int) Option[T] {
	return func(m *Model[T]) { m.maxVisible = n }
}

// WithStyles overrides the default styles.
func WithStyles[T any](s *Styles) Option[T] {
	return func(m *Model[T]) { m.styles = s }
}

// New creates a search bar that dispatches queries to fn. Options may
// be given in any order.
func New[T any](fn engine.SearchFunc[T], opts ...Option[T]) *Model[T] {
	input := textinput.New()
	input.Placeholder = "Search..."
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	m := &Model[T]{
		Input:       input,
		KeyMap:      DefaultKeyMap(),
		searchFn:    fn,
		debounce:    defaultDebounce,
		spin:        spin,
		styles:      NewStyles(),
		msgCh:       make(chan tea.Msg, 64),
		loadingText: "Searching...",
		emptyText:   "No results",
		errorText: func(err error) string {
			return fmt.Sprintf("Search failed: %v", err)
		},
		maxVisible: 10,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.eng = engine.New[T](m.minChars)
	if m.suggestions != nil {
		m.eng.SetSuggestions(m.suggestions)
	}

	m.items = m.eng.Visible()
	m.st = m.eng.Statuses().Value()

	m.eng.Statuses().Subscribe(func(s status.Status) {
		m.forward(statusMsg{status: s})
	})
	m.eng.Updates().Subscribe(func(items []T) {
		m.forward(itemsMsg[T]{items: items})
	})

	return m
}

// forward pushes an engine notification into the update loop
func (m *Model[T]) forward(msg tea.Msg) {
	select {
	case m.msgCh <- msg:
	default:
		log.Println("searchbar message channel full, dropping message")
	}
}

// listen returns a command that waits for the next engine notification
func (m *Model[T]) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.msgCh
	}
}

// Engine exposes the underlying search engine, for callers that drive
// filtering and sorting directly.
func (m *Model[T]) Engine() *engine.Engine[T] {
	return m.eng
}

// Visible returns the currently rendered result list.
func (m *Model[T]) Visible() []T {
	return m.items
}

// Status returns the last observed engine lifecycle state.
func (m *Model[T]) Status() status.Status {
	return m.st
}

// Cursor returns the index of the highlighted result.
func (m *Model[T]) Cursor() int {
	return m.cursor
}

// InjectSearch programmatically sets the input text and dispatches a
// search, subject to the engine's minimum query length.
func (m *Model[T]) InjectSearch(query string) {
	if utf8.RuneCountInString(query) < m.eng.MinChars() {
		return
	}
	m.gen++
	m.Input.SetValue(query)
	m.eng.InjectSearch(query, m.searchFn)
}

// Replay re-runs the last completed search, if any.
func (m *Model[T]) Replay() {
	m.gen++
	m.eng.ReplayLastSearch()
}

// Init implements tea.Model.
func (m *Model[T]) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.listen())
}

// Update implements tea.Model.
func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case debounceMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		query := m.Input.Value()
		if utf8.RuneCountInString(query) < m.eng.MinChars() {
			return m, nil
		}
		m.eng.Search(query, m.searchFn)
		return m, nil

	case statusMsg:
		m.st = msg.status
		m.clampCursor()
		return m, m.listen()

	case itemsMsg[T]:
		m.items = msg.items
		m.clampCursor()
		return m, m.listen()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m.updateInput(msg)
}

func (m *Model[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.KeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.KeyMap.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.KeyMap.Select):
		if m.onSelect != nil && m.cursor < len(m.items) {
			return m, m.onSelect(m.items[m.cursor])
		}
		return m, nil

	case key.Matches(msg, m.KeyMap.Clear):
		m.gen++
		m.cursor = 0
		m.Input.SetValue("")
		m.eng.Clear()
		m.eng.MarkReady()
		return m, nil
	}

	return m.updateInput(msg)
}

// updateInput feeds a message to the text input and schedules a
// debounced dispatch when the text changed.
func (m *Model[T]) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.Input.Value()
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	value := m.Input.Value()

	if value == before {
		return m, cmd
	}

	m.gen++
	if utf8.RuneCountInString(value) < m.eng.MinChars() {
		m.eng.MarkReady()
		return m, cmd
	}

	gen := m.gen
	debounced := tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{gen: gen}
	})
	return m, tea.Batch(cmd, debounced)
}

func (m *Model[T]) clampCursor() {
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m *Model[T]) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Input.Render(m.Input.View()))
	b.WriteString("\n")

	switch {
	case m.st == status.Loading:
		b.WriteString(m.styles.Loading.Render(m.spin.View() + " " + m.loadingText))

	case m.st == status.Error:
		b.WriteString(m.styles.Error.Render(m.errorText(m.eng.LastError())))

	case len(m.items) == 0 && m.eng.LastQuery() != "":
		b.WriteString(m.styles.Empty.Render(m.emptyText))

	case len(m.items) == 0:
		b.WriteString(m.styles.Placeholder.Render("Type to search"))

	default:
		b.WriteString(m.viewItems())
	}

	return b.String()
}

func (m *Model[T]) viewItems() string {
	var b strings.Builder
	count := len(m.items)
	if count > m.maxVisible {
		count = m.maxVisible
	}

	for i := 0; i < count; i++ {
		selected := i == m.cursor
		row := m.rowText(m.items[i], selected)
		if selected {
			b.WriteString(m.styles.Selected.Render("> " + row))
		} else {
			b.WriteString(m.styles.Item.Render(row))
		}
		b.WriteString("\n")
	}

	if len(m.items) > count {
		b.WriteString(m.styles.Counter.Render(
			fmt.Sprintf("%d of %d results shown", count, len(m.items))))
	}
	return b.String()
}

func (m *Model[T]) rowText(item T, selected bool) string {
	if m.renderItem != nil {
		return m.renderItem(item, selected)
	}
	return fmt.Sprintf("%v", item)
}
