package converse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Recorder owns the capture lifecycle. Each Start begins a new capture
// session with an empty fragment buffer; Stop finalizes it into a single
// Audio object and releases the device.
//
// Transitions are Idle → Recording → Finalizing → Idle. Calls that do not fit
// the current state fail with a *StateError. Recorder is safe for concurrent
// use.
type Recorder struct {
	device  Device
	encoder Encoder

	mu      sync.Mutex
	state   RecorderState
	session *captureSession // nil while idle or while the device is opening
}

// NewRecorder creates a Recorder that captures from device and finalizes
// captures with encoder.
func NewRecorder(device Device, encoder Encoder) *Recorder {
	return &Recorder{device: device, encoder: encoder}
}

// State returns the current lifecycle state.
func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start acquires the microphone and begins collecting fragments. The state
// is Recording from the moment Start is accepted; if the device cannot be
// opened the recorder returns to Idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		st := r.state
		r.mu.Unlock()
		return &StateError{Op: "start", State: st}
	}
	r.state = StateRecording
	r.mu.Unlock()

	capture, err := r.device.Open(ctx)
	if err != nil {
		r.setState(StateIdle)
		return fmt.Errorf("open capture device: %w", err)
	}

	s := &captureSession{
		capture: capture,
		format:  capture.Format(),
		done:    make(chan error, 1),
	}
	go s.collect()

	r.mu.Lock()
	r.session = s
	r.mu.Unlock()
	return nil
}

// Stop asks the device to finalize, waits for it to confirm, and returns the
// captured audio. The device is released on every path. If ctx ends before
// the device confirms, Stop returns the context error and the capture is
// discarded.
func (r *Recorder) Stop(ctx context.Context) (Audio, error) {
	r.mu.Lock()
	if r.state != StateRecording || r.session == nil {
		st := r.state
		r.mu.Unlock()
		return Audio{}, &StateError{Op: "stop", State: st}
	}
	r.state = StateFinalizing
	s := r.session
	r.session = nil
	r.mu.Unlock()

	defer r.setState(StateIdle)
	return s.finalize(ctx, r.encoder)
}

func (r *Recorder) setState(st RecorderState) {
	r.mu.Lock()
	r.state = st
	r.mu.Unlock()
}

// captureSession is one record→stop cycle. Only the collect goroutine
// appends to fragments; finalize reads them after done has been received.
type captureSession struct {
	capture   Capture
	format    AudioFormat
	fragments [][]byte
	done      chan error
}

func (s *captureSession) collect() {
	for {
		frag, err := s.capture.Read()
		if len(frag) > 0 {
			s.fragments = append(s.fragments, frag)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			s.done <- err
			return
		}
	}
}

func (s *captureSession) finalize(ctx context.Context, enc Encoder) (Audio, error) {
	defer s.capture.Close()

	if err := s.capture.Stop(); err != nil {
		return Audio{}, fmt.Errorf("stop capture: %w", err)
	}
	select {
	case err := <-s.done:
		if err != nil {
			return Audio{}, fmt.Errorf("capture: %w", err)
		}
	case <-ctx.Done():
		return Audio{}, ctx.Err()
	}

	audio, err := enc.Encode(s.pcm(), s.format)
	if err != nil {
		return Audio{}, fmt.Errorf("encode capture: %w", err)
	}
	return audio, nil
}

// pcm concatenates the collected fragments in capture order.
func (s *captureSession) pcm() []byte {
	n := 0
	for _, f := range s.fragments {
		n += len(f)
	}
	out := make([]byte, 0, n)
	for _, f := range s.fragments {
		out = append(out, f...)
	}
	return out
}
