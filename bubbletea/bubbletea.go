// Package bubbletea provides the terminal user interface for converse.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/converse"
)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. When ctx is cancelled, the program quits. On return, operations and
// playback started by the model are cancelled however the program ended.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	defer m.stop()
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// EventMsg wraps a controller event for delivery to the model.
type EventMsg struct {
	Event converse.Event
}

// OpDoneMsg signals that a controller operation has returned.
type OpDoneMsg struct {
	Op       Op
	Exchange *converse.Exchange
	Err      error
}

// PlaybackDoneMsg signals that playback of Ref has ended.
type PlaybackDoneMsg struct {
	Ref string
	Err error
}

// Op names a controller operation started from the keyboard.
type Op int

const (
	OpNone Op = iota
	OpBegin
	OpEnd
	OpReplay
)
