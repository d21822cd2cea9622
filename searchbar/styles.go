package searchbar

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the search bar
type Styles struct {
	Input       lipgloss.Style
	Item        lipgloss.Style
	Selected    lipgloss.Style
	Loading     lipgloss.Style
	Empty       lipgloss.Style
	Error       lipgloss.Style
	Placeholder lipgloss.Style
	Counter     lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		Item: lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().
			PaddingLeft(0).
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Loading:     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Empty:       lipgloss.NewStyle().Faint(true),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Placeholder: lipgloss.NewStyle().Faint(true),
		Counter: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
	}
}
