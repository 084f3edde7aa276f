package converse

import "context"

// Backend performs one conversational round trip with captured audio.
type Backend interface {
	Converse(ctx context.Context, audio Audio) (Result, error)
}

// Result is the backend's answer. Every field is optional; absent fields are
// the empty string.
type Result struct {
	Transcript string
	Response   string
	AudioFile  string
}

// HasAudio reports whether the result carries a playback reference.
func (r Result) HasAudio() bool { return r.AudioFile != "" }
