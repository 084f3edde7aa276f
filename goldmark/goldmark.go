// Package goldmark renders backend responses, which are usually markdown
// produced by a language model, as styled terminal text.
package goldmark

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/converse"
)

const defaultWidth = 80

// Render parses source as markdown and returns styled output wrapped to
// width. Escape sequences embedded in source are removed before parsing so
// backend text cannot drive the terminal.
func Render(source string, width int, theme converse.Theme) string {
	source = Sanitize(source)
	if strings.TrimSpace(source) == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme).render([]byte(source), width)
}

// Sanitize strips ANSI escape sequences and control characters other than
// tab and newline from s.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r > 0x1F && r != 0x7F {
			return r
		}
		return -1
	}, s)
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
