package bubbletea

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/converse"
	"github.com/fwojciec/converse/goldmark"
)

var _ Block = (*NoticeBlock)(nil)

// NoticeBlock is a blocking failure notification. The model swallows the
// next key press to dismiss it.
type NoticeBlock struct {
	err    error
	styles Styles
}

// NewNoticeBlock creates a NoticeBlock for err.
func NewNoticeBlock(err error, styles Styles) *NoticeBlock {
	return &NoticeBlock{err: err, styles: styles}
}

// Err returns the reported error.
func (b *NoticeBlock) Err() error { return b.err }

func (b *NoticeBlock) View(width int) string {
	inner := min(width, 72) - 4 // border and padding
	if inner < 10 {
		inner = 10
	}
	msg := strings.TrimSpace(goldmark.Sanitize(b.err.Error()))
	body := lipgloss.NewStyle().Width(inner).Render(msg)
	content := b.styles.Error.Bold(true).Render(title(b.err)) + "\n" +
		body + "\n" +
		b.styles.Muted.Render("press any key to dismiss")
	return b.styles.Notice.Render(content)
}

func stripped(s string) string { return ansi.Strip(s) }

func title(err error) string {
	switch {
	case errors.Is(err, converse.ErrPermissionDenied):
		return "Microphone access denied"
	case errors.Is(err, converse.ErrDeviceUnavailable):
		return "No microphone available"
	case errors.Is(err, converse.ErrPlayerUnavailable):
		return "No audio player available"
	case errors.Is(err, converse.ErrMalformedResponse):
		return "Unreadable response"
	case errors.Is(err, converse.ErrBackend):
		return "Backend error"
	default:
		return "Error"
	}
}
