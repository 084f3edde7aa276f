package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/converse"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Title      lipgloss.Style
	Transcript lipgloss.Style
	Response   lipgloss.Style
	Recording  lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Muted      lipgloss.Style
	Notice     lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t converse.Theme) Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Transcript: lipgloss.NewStyle().Foreground(ansiColor(t.Transcript)).Bold(true),
		Response:   lipgloss.NewStyle().Foreground(ansiColor(t.Response)).Bold(true),
		Recording:  lipgloss.NewStyle().Foreground(ansiColor(t.Recording)).Bold(true),
		Error:      lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:    lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:      lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Notice: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ansiColor(t.Error)).
			Padding(0, 1),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
