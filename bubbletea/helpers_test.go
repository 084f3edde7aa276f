package bubbletea_test

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/converse"
	bt "github.com/fwojciec/converse/bubbletea"
	"github.com/fwojciec/converse/mock"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, conv converse.Conversation, history *converse.History) bt.Model {
	t.Helper()
	m := bt.New(conv, history, converse.DefaultTheme())
	return drive(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

// drive delivers msg and then every message its commands produce, until the
// model settles. Spinner ticks are dropped so the loop terminates.
func drive(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := next.(tea.QuitMsg); ok {
			continue
		}
		updated, cmd := m.Update(next)
		model, ok := updated.(bt.Model)
		require.True(t, ok)
		m = model
		queue = append(queue, runCmd(cmd)...)
	}
	return m
}

func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// scripted is a conversation that emits what the controller would for a
// successful exchange returning result.
func scripted(result converse.Result, playErr error) *mock.Conversation {
	return &mock.Conversation{
		BeginFn: func(ctx context.Context, onEvent func(converse.Event)) error {
			onEvent(converse.EventCleared{})
			onEvent(converse.EventStateChanged{State: converse.StateRecording})
			return nil
		},
		EndFn: func(ctx context.Context, onEvent func(converse.Event)) (*converse.Exchange, error) {
			onEvent(converse.EventStateChanged{State: converse.StateFinalizing})
			onEvent(converse.EventStateChanged{State: converse.StateIdle})
			onEvent(converse.EventTranscript{Text: result.Transcript})
			onEvent(converse.EventResponse{Text: result.Response})
			if result.HasAudio() {
				done := make(chan error, 1)
				done <- playErr
				close(done)
				onEvent(converse.EventPlayback{Ref: result.AudioFile, Done: done})
			}
			return &converse.Exchange{
				ID:         "ex-1",
				Transcript: result.Transcript,
				Response:   result.Response,
				AudioFile:  result.AudioFile,
			}, nil
		},
		ReplayFn: func(ctx context.Context, onEvent func(converse.Event)) error {
			done := make(chan error, 1)
			done <- nil
			onEvent(converse.EventPlayback{Ref: result.AudioFile, Done: done})
			return nil
		},
	}
}
