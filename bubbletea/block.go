package bubbletea

// Block is a renderable region of the screen. View takes a width so the
// root model controls layout and blocks are testable in isolation. A block
// with nothing to show renders as "".
type Block interface {
	View(width int) string
}
