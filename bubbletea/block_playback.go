package bubbletea

import (
	"github.com/fwojciec/converse/goldmark"
	"github.com/mattn/go-runewidth"
)

var _ Block = (*PlaybackBlock)(nil)

// PlaybackBlock shows the current playback reference. It stays hidden until
// the first reference arrives.
type PlaybackBlock struct {
	ref     string
	playing bool
	err     error
	styles  Styles
}

// NewPlaybackBlock creates a hidden PlaybackBlock.
func NewPlaybackBlock(styles Styles) *PlaybackBlock {
	return &PlaybackBlock{styles: styles}
}

// Start marks ref as playing.
func (b *PlaybackBlock) Start(ref string) {
	b.ref = ref
	b.playing = true
	b.err = nil
}

// Finish marks playback of ref as ended. A stale ref is ignored.
func (b *PlaybackBlock) Finish(ref string, err error) {
	if ref != b.ref {
		return
	}
	b.playing = false
	b.err = err
}

// Ref returns the current reference, or "" while hidden.
func (b *PlaybackBlock) Ref() string { return b.ref }

// Playing reports whether playback is in progress.
func (b *PlaybackBlock) Playing() bool { return b.playing }

func (b *PlaybackBlock) View(width int) string {
	if b.ref == "" {
		return ""
	}
	var label string
	switch {
	case b.playing:
		label = b.styles.Success.Render("▶ playing ")
	case b.err != nil:
		label = b.styles.Error.Render("✗ playback failed ")
	default:
		label = b.styles.Muted.Render("■ audio ")
	}
	avail := width - runewidth.StringWidth(stripped(label))
	if avail < 1 {
		avail = 1
	}
	ref := runewidth.Truncate(goldmark.Sanitize(b.ref), avail, "…")
	return label + b.styles.Muted.Render(ref)
}
