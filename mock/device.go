// Package mock provides test doubles for converse interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/converse"
)

// Interface compliance checks.
var (
	_ converse.Device  = (*Device)(nil)
	_ converse.Capture = (*Capture)(nil)
	_ converse.Encoder = (*Encoder)(nil)
)

// Device is a test double for converse.Device.
// Set OpenFn before calling Open.
type Device struct {
	OpenFn func(ctx context.Context) (converse.Capture, error)
}

// Open delegates to OpenFn.
func (d *Device) Open(ctx context.Context) (converse.Capture, error) {
	return d.OpenFn(ctx)
}

// Capture is a test double for converse.Capture.
// Set the function fields for the methods you need.
type Capture struct {
	ReadFn   func() ([]byte, error)
	StopFn   func() error
	CloseFn  func() error
	FormatFn func() converse.AudioFormat
}

// Read delegates to ReadFn.
func (c *Capture) Read() ([]byte, error) {
	return c.ReadFn()
}

// Stop delegates to StopFn.
func (c *Capture) Stop() error {
	return c.StopFn()
}

// Close delegates to CloseFn.
func (c *Capture) Close() error {
	return c.CloseFn()
}

// Format delegates to FormatFn.
func (c *Capture) Format() converse.AudioFormat {
	return c.FormatFn()
}

// Encoder is a test double for converse.Encoder.
// Set EncodeFn before calling Encode.
type Encoder struct {
	EncodeFn func(pcm []byte, format converse.AudioFormat) (converse.Audio, error)
}

// Encode delegates to EncodeFn.
func (e *Encoder) Encode(pcm []byte, format converse.AudioFormat) (converse.Audio, error) {
	return e.EncodeFn(pcm, format)
}
