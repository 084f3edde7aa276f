package converse

import (
	"context"
	"io"
)

// MediaTypeWAV is the media type attached to finalized captures.
const MediaTypeWAV = "audio/wav"

// AudioFormat describes raw PCM as produced by a capture device.
type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultAudioFormat returns 16 kHz mono 16-bit PCM.
func DefaultAudioFormat() AudioFormat {
	return AudioFormat{SampleRate: 16000, Channels: 1, BitDepth: 16}
}

// BytesPerSecond returns the PCM data rate for the format.
func (f AudioFormat) BytesPerSecond() int {
	return f.SampleRate * f.Channels * f.BitDepth / 8
}

// Audio is a finalized capture: a single container object tagged with its
// media type.
type Audio struct {
	Data      []byte
	MediaType string
	Format    AudioFormat
}

// Device is the platform's audio-capture capability.
type Device interface {
	// Open acquires the microphone and starts capturing. It fails with
	// ErrPermissionDenied or ErrDeviceUnavailable when access is refused or
	// no device exists.
	Open(ctx context.Context) (Capture, error)
}

// Capture is an open microphone stream.
//
// Read returns fragments in capture order and io.EOF once the device has
// finished after Stop. Close releases the device and may be called in any
// state, including after io.EOF.
type Capture interface {
	Read() ([]byte, error)
	Stop() error
	Close() error
	Format() AudioFormat
}

// Encoder turns concatenated PCM into a finalized Audio container.
type Encoder interface {
	Encode(pcm []byte, format AudioFormat) (Audio, error)
}

// Player plays a playback reference.
//
// Play starts playback immediately and returns a channel that receives
// exactly one value when playback ends (nil on success). Callers that treat
// playback as fire-and-forget may ignore the channel.
type Player interface {
	Play(ctx context.Context, ref string) (<-chan error, error)
}

// AudioSource opens a playback reference (URL or backend path) for reading.
type AudioSource interface {
	OpenAudio(ctx context.Context, ref string) (io.ReadCloser, error)
}
