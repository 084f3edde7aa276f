package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/converse"
)

var _ tea.Model = Model{}

// opFunc adapts a controller operation to a single shape.
type opFunc func(ctx context.Context, onEvent func(converse.Event)) (*converse.Exchange, error)

// Model is the Bubble Tea model for the converse TUI.
type Model struct {
	// Viewport is the scrollable transcript and response area. Exported
	// for test access.
	Viewport viewport.Model

	conv    converse.Conversation
	history *converse.History
	styles  Styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	now     func() time.Time

	transcript *TranscriptBlock
	response   *ResponseBlock
	playback   *PlaybackBlock
	notice     *NoticeBlock

	state      converse.RecorderState
	recordedAt time.Time

	// One operation runs at a time. reported is set once the running
	// operation has emitted a failure so its return error is not shown
	// twice.
	op       Op
	reported bool
	eventCh  chan converse.Event
	doneCh   chan OpDoneMsg

	// ctx outlives individual operations so playback started by End keeps
	// running after End returns. stop cancels it on quit.
	ctx  context.Context
	stop context.CancelFunc

	width int
	ready bool
}

// Option configures a Model.
type Option func(*Model)

// WithClock sets the time source for the recording timer.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New creates a Model driving conv. Completed exchanges are appended to
// history when it is non-nil.
func New(conv converse.Conversation, history *converse.History, theme converse.Theme, opts ...Option) Model {
	styles := NewStyles(theme)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.Muted
	ctx, stop := context.WithCancel(context.Background())

	m := Model{
		conv:       conv,
		history:    history,
		styles:     styles,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    sp,
		now:        time.Now,
		transcript: NewTranscriptBlock(styles),
		response:   NewResponseBlock(theme, styles),
		playback:   NewPlaybackBlock(styles),
		ctx:        ctx,
		stop:       stop,
	}
	for _, o := range opts {
		o(&m)
	}
	return m.syncKeys()
}

// State returns the recorder state last reported by the controller.
func (m Model) State() converse.RecorderState { return m.state }

// Busy reports whether a controller operation is in flight.
func (m Model) Busy() bool { return m.op != OpNone }

// Notice returns the error currently shown in the notification box.
func (m Model) Notice() error {
	if m.notice == nil {
		return nil
	}
	return m.notice.Err()
}

// Transcript returns the transcript output.
func (m Model) Transcript() string { return m.transcript.Text() }

// Response returns the response output.
func (m Model) Response() string { return m.response.Text() }

// PlaybackRef returns the playback reference, or "" while the playback
// control is hidden.
func (m Model) PlaybackRef() string { return m.playback.Ref() }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.animating() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		var cmd tea.Cmd
		m, cmd = m.processEvent(msg.Event)
		cmds := []tea.Cmd{cmd}
		if m.eventCh != nil {
			cmds = append(cmds, listenForEvent(m.eventCh, m.doneCh))
		}
		return m.syncKeys().refresh(), tea.Batch(cmds...)

	case OpDoneMsg:
		m.op = OpNone
		m.eventCh = nil
		m.doneCh = nil
		if msg.Exchange != nil && m.history != nil {
			m.history.Append(*msg.Exchange)
		}
		if msg.Err != nil && !m.reported && reportable(msg.Err) {
			m.notice = NewNoticeBlock(msg.Err, m.styles)
		}
		return m.syncKeys(), nil

	case PlaybackDoneMsg:
		m.playback.Finish(msg.Ref, msg.Err)
		if msg.Err != nil && reportable(msg.Err) {
			m.notice = NewNoticeBlock(fmt.Errorf("playback: %w", msg.Err), m.styles)
		}
		return m.refresh(), nil
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.notice != nil {
		b.WriteString(lipgloss.Place(m.width, m.Viewport.Height, lipgloss.Center, lipgloss.Center, m.notice.View(m.width)))
	} else {
		b.WriteString(m.Viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const chrome = 4 // header, blank line, newline before help, help
	vpHeight := max(msg.Height-chrome, 1)

	m.width = msg.Width
	m.help.Width = msg.Width
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.stop()
		return m, tea.Quit
	}
	if m.notice != nil {
		m.notice = nil
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Begin):
		return m.start(OpBegin, func(ctx context.Context, onEvent func(converse.Event)) (*converse.Exchange, error) {
			return nil, m.conv.Begin(ctx, onEvent)
		})
	case key.Matches(msg, m.keys.End):
		return m.start(OpEnd, m.conv.End)
	case key.Matches(msg, m.keys.Replay):
		return m.start(OpReplay, func(ctx context.Context, onEvent func(converse.Event)) (*converse.Exchange, error) {
			return nil, m.conv.Replay(ctx, onEvent)
		})
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m Model) start(op Op, fn opFunc) (Model, tea.Cmd) {
	m.op = op
	m.reported = false
	m.eventCh = make(chan converse.Event, 16)
	m.doneCh = make(chan OpDoneMsg, 1)
	m = m.syncKeys()
	return m, tea.Batch(
		runOp(m.ctx, op, fn, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.spinner.Tick,
	)
}

func (m Model) processEvent(evt converse.Event) (Model, tea.Cmd) {
	switch e := evt.(type) {
	case converse.EventStateChanged:
		m.state = e.State
		if e.State == converse.StateRecording {
			m.recordedAt = m.now()
		}
	case converse.EventCleared:
		m.transcript.Set("")
		m.response.Set("")
		m.Viewport.GotoTop()
	case converse.EventTranscript:
		m.transcript.Set(e.Text)
	case converse.EventResponse:
		m.response.Set(e.Text)
	case converse.EventPlayback:
		m.playback.Start(e.Ref)
		if e.Done != nil {
			return m, waitPlayback(e.Ref, e.Done)
		}
	case converse.EventFailure:
		m.reported = true
		m.notice = NewNoticeBlock(e.Err, m.styles)
	}
	return m, nil
}

// syncKeys enables exactly the triggers that are valid right now.
func (m Model) syncKeys() Model {
	idle := m.op == OpNone
	m.keys.Begin.SetEnabled(idle && m.state == converse.StateIdle)
	m.keys.End.SetEnabled(idle && m.state == converse.StateRecording)
	m.keys.Replay.SetEnabled(idle && m.state == converse.StateIdle && m.playback.Ref() != "")
	return m
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	return m
}

func (m Model) renderContent() string {
	w := m.Viewport.Width
	var parts []string
	for _, b := range []Block{m.transcript, m.response, m.playback} {
		if v := b.View(w); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) animating() bool {
	return m.op != OpNone || m.state != converse.StateIdle || m.playback.Playing()
}

func (m Model) header() string {
	title := m.styles.Title.Render("converse")
	var status string
	switch {
	case m.state == converse.StateRecording:
		status = m.styles.Recording.Render("● recording " + clock(m.now().Sub(m.recordedAt)))
	case m.state == converse.StateFinalizing:
		status = m.spinner.View() + m.styles.Muted.Render(" finishing capture")
	case m.op == OpBegin:
		status = m.spinner.View() + m.styles.Muted.Render(" opening microphone")
	case m.op == OpEnd:
		status = m.spinner.View() + m.styles.Muted.Render(" waiting for response")
	case m.playback.Playing():
		status = m.styles.Success.Render("▶ speaking")
	default:
		status = m.styles.Muted.Render("ready")
	}
	return title + "  " + status
}

func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// reportable filters errors that are not worth a notification: quitting
// cancels in-flight work, and replay before any audio is a no-op.
func reportable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, converse.ErrNoPlayback)
}

// runOp runs fn in a command goroutine, forwarding its events and then its
// result.
func runOp(ctx context.Context, op Op, fn opFunc, eventCh chan<- converse.Event, doneCh chan<- OpDoneMsg) tea.Cmd {
	return func() tea.Msg {
		ex, err := fn(ctx, func(e converse.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- OpDoneMsg{Op: op, Exchange: ex, Err: err}
		return nil
	}
}

// listenForEvent waits for the next event from the channel. When the
// channel closes, it returns the operation's result from doneCh.
func listenForEvent(ch <-chan converse.Event, doneCh <-chan OpDoneMsg) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return EventMsg{Event: evt}
	}
}

func waitPlayback(ref string, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return PlaybackDoneMsg{Ref: ref, Err: <-done}
	}
}
