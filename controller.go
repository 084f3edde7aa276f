package converse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// closeTimeout bounds how long Close waits for the device to finish.
const closeTimeout = 2 * time.Second

// Controller drives one Recorder through begin/end triggers, performs the
// backend round trip with the captured audio, and reports everything the
// user-facing surfaces must show as Events.
type Controller struct {
	recorder *Recorder
	backend  Backend
	player   Player

	logger  Logger
	now     func() time.Time
	newID   func() string
	timeout time.Duration

	// opMu serializes the recorder-facing half of Begin and End so a state
	// check and the transition it guards are not interleaved.
	opMu sync.Mutex

	mu  sync.Mutex
	ref string // current playback reference
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger. Defaults to NopLogger.
func WithLogger(l Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// WithClock sets the time source used for exchange timestamps and latency.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator sets the function that names exchanges.
func WithIDGenerator(fn func() string) ControllerOption {
	return func(c *Controller) { c.newID = fn }
}

// WithRequestTimeout bounds each backend round trip. Zero means no timeout.
func WithRequestTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.timeout = d }
}

// NewController creates a Controller.
func NewController(recorder *Recorder, backend Backend, player Player, opts ...ControllerOption) *Controller {
	c := &Controller{
		recorder: recorder,
		backend:  backend,
		player:   player,
		logger:   NopLogger{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.newID == nil {
		c.newID = func() string { return fmt.Sprintf("%d", c.now().UnixNano()) }
	}
	return c
}

// State returns the recorder's state.
func (c *Controller) State() RecorderState { return c.recorder.State() }

// Ref returns the current playback reference, or "" if no response audio
// has arrived yet.
func (c *Controller) Ref() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ref
}

// Begin starts a capture. It is a no-op unless the recorder is idle.
// Otherwise it clears the transcript and response outputs and acquires the
// microphone, returning once capture is running. A device failure is
// reported through one EventFailure and returned.
func (c *Controller) Begin(ctx context.Context, onEvent func(Event)) error {
	emit := emitter(onEvent)

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if st := c.recorder.State(); st != StateIdle {
		c.logger.Debugw("begin ignored", "state", st.String())
		return nil
	}

	emit(EventCleared{})
	if err := c.recorder.Start(ctx); err != nil {
		if errors.Is(err, ErrInvalidState) {
			c.logger.Debugw("begin ignored", "err", err)
			return nil
		}
		c.logger.Errorw("capture start failed", "err", err)
		emit(EventFailure{Err: err})
		return err
	}
	c.logger.Infow("capture started")
	emit(EventStateChanged{State: StateRecording})
	return nil
}

// End finalizes the active capture and uploads it. It is a no-op (nil, nil)
// unless a capture is recording.
//
// On failure exactly one EventFailure is emitted and no output events
// follow. On success the transcript and response are always emitted (empty
// when absent), and when the result names response audio it becomes the
// playback reference and playback starts. ctx also bounds that playback.
func (c *Controller) End(ctx context.Context, onEvent func(Event)) (*Exchange, error) {
	emit := emitter(onEvent)

	c.opMu.Lock()
	if st := c.recorder.State(); st != StateRecording {
		c.opMu.Unlock()
		c.logger.Debugw("end ignored", "state", st.String())
		return nil, nil
	}
	emit(EventStateChanged{State: StateFinalizing})
	audio, err := c.recorder.Stop(ctx)
	c.opMu.Unlock()
	emit(EventStateChanged{State: StateIdle})

	if err != nil {
		c.logger.Errorw("capture finalize failed", "err", err)
		emit(EventFailure{Err: err})
		return nil, err
	}

	start := c.now()
	result, err := c.converse(ctx, audio)
	if err != nil {
		c.logger.Warnw("converse failed", "err", err, "bytes", len(audio.Data))
		emit(EventFailure{Err: err})
		return nil, err
	}
	c.logger.Infow("converse complete",
		"bytes", len(audio.Data),
		"latency_ms", c.now().Sub(start).Milliseconds(),
		"has_audio", result.HasAudio(),
	)

	emit(EventTranscript{Text: result.Transcript})
	emit(EventResponse{Text: result.Response})

	ex := &Exchange{
		ID:         c.newID(),
		Transcript: result.Transcript,
		Response:   result.Response,
		AudioFile:  result.AudioFile,
		AudioBytes: len(audio.Data),
		CreatedAt:  start,
	}

	if !result.HasAudio() {
		return ex, nil
	}
	c.mu.Lock()
	c.ref = result.AudioFile
	c.mu.Unlock()
	if err := c.play(ctx, result.AudioFile, emit); err != nil {
		return ex, err
	}
	return ex, nil
}

// Replay plays the current playback reference again.
func (c *Controller) Replay(ctx context.Context, onEvent func(Event)) error {
	ref := c.Ref()
	if ref == "" {
		return ErrNoPlayback
	}
	return c.play(ctx, ref, emitter(onEvent))
}

// Close discards a capture that is still recording and releases the
// microphone. Nothing is uploaded.
func (c *Controller) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.recorder.State() != StateRecording {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if _, err := c.recorder.Stop(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("discard capture: %w", err)
	}
	c.logger.Infow("capture discarded")
	return nil
}

func (c *Controller) converse(ctx context.Context, audio Audio) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.backend.Converse(ctx, audio)
}

func (c *Controller) play(ctx context.Context, ref string, emit func(Event)) error {
	done, err := c.player.Play(ctx, ref)
	if err != nil {
		err = fmt.Errorf("play %s: %w", ref, err)
		c.logger.Warnw("playback failed", "ref", ref, "err", err)
		emit(EventFailure{Err: err})
		return err
	}
	c.logger.Debugw("playback started", "ref", ref)
	emit(EventPlayback{Ref: ref, Done: done})
	return nil
}

// emitter returns onEvent, or a no-op when onEvent is nil.
func emitter(onEvent func(Event)) func(Event) {
	if onEvent == nil {
		return func(Event) {}
	}
	return onEvent
}

// Conversation is the trigger surface a user interface drives.
type Conversation interface {
	Begin(ctx context.Context, onEvent func(Event)) error
	End(ctx context.Context, onEvent func(Event)) (*Exchange, error)
	Replay(ctx context.Context, onEvent func(Event)) error
}

var _ Conversation = (*Controller)(nil)
