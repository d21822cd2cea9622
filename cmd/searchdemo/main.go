// Command searchdemo runs the search bar against a word list, with
// simulated backend latency so the loading, empty, and error states
// are all reachable interactively.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ben-xx/flappy-search-bar/engine"
	"github.com/ben-xx/flappy-search-bar/internal/config"
	"github.com/ben-xx/flappy-search-bar/searchbar"
)

var defaultWords = []string{
	"archive", "argument", "artifact", "assembly", "balance", "bandwidth",
	"baseline", "binary", "bitmask", "boundary", "buffer", "cache",
	"callback", "channel", "checksum", "cipher", "closure", "cluster",
	"compiler", "context", "cursor", "daemon", "deadlock", "decoder",
	"delegate", "digest", "dispatch", "document", "encoder", "endpoint",
	"fixture", "fragment", "gateway", "generic", "handler", "heap",
	"index", "inode", "iterator", "journal", "kernel", "keyword",
	"lattice", "ledger", "listener", "machine", "manifest", "mutex",
	"namespace", "network", "observer", "operand", "packet", "parser",
	"payload", "pipeline", "pointer", "protocol", "query", "queue",
	"record", "registry", "replica", "runtime", "scanner", "schema",
	"segment", "semaphore", "session", "socket", "stream", "symbol",
	"thread", "token", "trigger", "tuple", "vector", "widget",
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "searchdemo",
	Short: "Interactive demo of the flappy-search-bar component",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Set up logging
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("Could not open log file: %v", err)
		} else {
			defer logFile.Close()
			log.SetOutput(logFile)
		}
	}

	words, err := loadWords(cfg.DataFile)
	if err != nil {
		return err
	}

	latency := time.Duration(cfg.Search.LatencyMS) * time.Millisecond
	searchFn := wordSearch(words, latency)

	suggestions := words
	if len(suggestions) > 8 {
		suggestions = suggestions[:8]
	}

	bar := searchbar.New(searchFn,
		searchbar.WithMinChars[string](cfg.Search.MinChars),
		searchbar.WithDebounce[string](time.Duration(cfg.Search.DebounceMS)*time.Millisecond),
		searchbar.WithPlaceholder[string](cfg.UISettings.Placeholder),
		searchbar.WithMaxVisible[string](cfg.UISettings.MaxVisible),
		searchbar.WithSuggestions[string](suggestions),
		searchbar.WithOnSelect[string](func(item string) tea.Cmd {
			log.Printf("selected %q", item)
			return nil
		}),
	)

	app := newApp(bar)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	svc := config.NewConfigService()
	if configPath != "" {
		return svc.LoadFromPath(configPath)
	}
	return svc.Load()
}

// loadWords reads one word per line from path, or returns the built-in
// list when no path is configured.
func loadWords(path string) ([]string, error) {
	if path == "" {
		return defaultWords, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return words, nil
}

// wordSearch returns a SearchFunc doing case-insensitive substring
// matching over words, sleeping for latency first so cancellation and
// the loading state are observable.
func wordSearch(words []string, latency time.Duration) engine.SearchFunc[string] {
	return func(ctx context.Context, query string) ([]string, error) {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		q := strings.ToLower(query)
		var matches []string
		for _, w := range words {
			if strings.Contains(strings.ToLower(w), q) {
				matches = append(matches, w)
			}
		}
		return matches, nil
	}
}

// app wraps the search bar with demo key bindings that exercise the
// engine's sort, filter, and replay operations.
type app struct {
	bar      *searchbar.Model[string]
	sorted   bool
	filtered bool
	help     string
}

func newApp(bar *searchbar.Model[string]) *app {
	helpStyle := lipgloss.NewStyle().Faint(true).MarginTop(1)
	return &app{
		bar: bar,
		help: helpStyle.Render(
			"ctrl+s sort · ctrl+f filter (≥6 chars) · ctrl+r replay · ctrl+c quit"),
	}
}

func (a *app) Init() tea.Cmd {
	return a.bar.Init()
}

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return a, tea.Quit

		case "ctrl+r":
			a.bar.Replay()
			return a, nil

		case "ctrl+s":
			if a.sorted {
				a.bar.Engine().RemoveSort()
			} else {
				a.bar.Engine().Sort(strings.Compare)
			}
			a.sorted = !a.sorted
			return a, nil

		case "ctrl+f":
			if a.filtered {
				a.bar.Engine().RemoveFilter()
			} else {
				a.bar.Engine().Filter(func(w string) bool {
					return len(w) >= 6
				})
			}
			a.filtered = !a.filtered
			return a, nil
		}
	}

	model, cmd := a.bar.Update(msg)
	a.bar = model.(*searchbar.Model[string])
	return a, cmd
}

func (a *app) View() string {
	return a.bar.View() + "\n" + a.help
}
