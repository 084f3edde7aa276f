package bubbletea

import (
	"github.com/fwojciec/converse"
	"github.com/fwojciec/converse/goldmark"
)

var _ Block = (*ResponseBlock)(nil)

// ResponseBlock shows the backend's answer rendered as markdown. Rendering
// is cached per width since the view redraws on every spinner tick.
type ResponseBlock struct {
	text    string
	theme   converse.Theme
	styles  Styles
	byWidth map[int]string
}

// NewResponseBlock creates an empty ResponseBlock.
func NewResponseBlock(theme converse.Theme, styles Styles) *ResponseBlock {
	return &ResponseBlock{theme: theme, styles: styles, byWidth: make(map[int]string)}
}

// Set replaces the response and invalidates the render cache.
func (b *ResponseBlock) Set(text string) {
	if text == b.text {
		return
	}
	b.text = text
	clear(b.byWidth)
}

// Text returns the raw response.
func (b *ResponseBlock) Text() string { return b.text }

func (b *ResponseBlock) View(width int) string {
	heading := b.styles.Response.Render("Assistant")
	rendered, ok := b.byWidth[width]
	if !ok {
		rendered = goldmark.Render(b.text, width, b.theme)
		b.byWidth[width] = rendered
	}
	if rendered == "" {
		return heading + "\n" + b.styles.Muted.Render("…")
	}
	return heading + "\n" + rendered
}
