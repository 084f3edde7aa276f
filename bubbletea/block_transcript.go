package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/converse/goldmark"
)

var _ Block = (*TranscriptBlock)(nil)

// TranscriptBlock shows what the backend heard, verbatim.
type TranscriptBlock struct {
	text   string
	styles Styles
}

// NewTranscriptBlock creates an empty TranscriptBlock.
func NewTranscriptBlock(styles Styles) *TranscriptBlock {
	return &TranscriptBlock{styles: styles}
}

// Set replaces the transcript.
func (b *TranscriptBlock) Set(text string) { b.text = text }

// Text returns the transcript.
func (b *TranscriptBlock) Text() string { return b.text }

func (b *TranscriptBlock) View(width int) string {
	heading := b.styles.Transcript.Render("You")
	body := strings.TrimSpace(goldmark.Sanitize(b.text))
	if body == "" {
		return heading + "\n" + b.styles.Muted.Render("…")
	}
	return heading + "\n" + lipgloss.NewStyle().Width(width).Render(body)
}
