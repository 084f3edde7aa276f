package converse_test

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/converse"
	"github.com/fwojciec/converse/mock"
)

// fakeCapture delivers its queued fragments, then blocks until Stop and
// reports io.EOF.
type fakeCapture struct {
	mock.Capture
	stopped chan struct{}
	closes  atomic.Int32
}

func newFakeCapture(frags ...string) *fakeCapture {
	fc := &fakeCapture{stopped: make(chan struct{})}
	queue := make(chan []byte, len(frags))
	for _, f := range frags {
		queue <- []byte(f)
	}
	var once sync.Once
	fc.ReadFn = func() ([]byte, error) {
		select {
		case b := <-queue:
			return b, nil
		default:
		}
		<-fc.stopped
		select {
		case b := <-queue:
			return b, nil
		default:
			return nil, io.EOF
		}
	}
	fc.StopFn = func() error {
		once.Do(func() { close(fc.stopped) })
		return nil
	}
	fc.CloseFn = func() error {
		fc.closes.Add(1)
		return nil
	}
	fc.FormatFn = converse.DefaultAudioFormat
	return fc
}

// fakeDevice hands out captures in order and counts acquisitions.
type fakeDevice struct {
	mock.Device
	opens atomic.Int32
}

func newFakeDevice(captures ...*fakeCapture) *fakeDevice {
	d := &fakeDevice{}
	var mu sync.Mutex
	d.OpenFn = func(ctx context.Context) (converse.Capture, error) {
		mu.Lock()
		defer mu.Unlock()
		d.opens.Add(1)
		if len(captures) == 0 {
			return nil, converse.ErrDeviceUnavailable
		}
		c := captures[0]
		captures = captures[1:]
		return c, nil
	}
	return d
}

// rawEncoder returns the concatenated PCM unchanged so tests can inspect it.
func rawEncoder() *mock.Encoder {
	return &mock.Encoder{
		EncodeFn: func(pcm []byte, f converse.AudioFormat) (converse.Audio, error) {
			return converse.Audio{Data: pcm, MediaType: converse.MediaTypeWAV, Format: f}, nil
		},
	}
}

// eventLog collects emitted events.
type eventLog struct {
	mu     sync.Mutex
	events []converse.Event
}

func (l *eventLog) add(e converse.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []converse.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]converse.Event(nil), l.events...)
}

func (l *eventLog) failures() []converse.EventFailure {
	var out []converse.EventFailure
	for _, e := range l.all() {
		if f, ok := e.(converse.EventFailure); ok {
			out = append(out, f)
		}
	}
	return out
}

func (l *eventLog) has(match func(converse.Event) bool) bool {
	for _, e := range l.all() {
		if match(e) {
			return true
		}
	}
	return false
}
