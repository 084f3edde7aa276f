package converse

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Transports understood by Config.Transport.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// DefaultBackendURL is the backend origin used when nothing else is
// configured.
const DefaultBackendURL = "http://127.0.0.1:8000"

// Config is the complete client configuration.
type Config struct {
	BackendURL     string
	Transport      string
	RequestTimeout time.Duration // 0 = none
	Capture        CaptureConfig
	Playback       PlaybackConfig
	Logging        LoggingConfig
	HistoryPath    string // empty disables history persistence
}

// CaptureConfig describes the capture command and the PCM it produces.
// Command arguments may name the format fields as placeholders, expanded by
// Argv: {sample_rate}, {channels}, {bit_depth}, and {pcm_format} (the ALSA
// sample format name, e.g. S16_LE). Spelling the format as literals instead
// means keeping them in step with the fields by hand, since the fields alone
// decide the WAV header.
type CaptureConfig struct {
	Command       []string
	SampleRate    int
	Channels      int
	BitDepth      int
	FragmentBytes int
}

// Argv returns Command with format placeholders expanded.
func (c CaptureConfig) Argv() []string {
	r := strings.NewReplacer(
		"{sample_rate}", strconv.Itoa(c.SampleRate),
		"{channels}", strconv.Itoa(c.Channels),
		"{bit_depth}", strconv.Itoa(c.BitDepth),
		"{pcm_format}", pcmFormat(c.BitDepth),
	)
	argv := make([]string, len(c.Command))
	for i, a := range c.Command {
		argv[i] = r.Replace(a)
	}
	return argv
}

// pcmFormat names the little-endian ALSA sample format for a bit depth. WAV
// stores 8-bit samples unsigned.
func pcmFormat(bits int) string {
	if bits == 8 {
		return "U8"
	}
	return fmt.Sprintf("S%d_LE", bits)
}

// Format returns the PCM format the capture command produces.
func (c CaptureConfig) Format() AudioFormat {
	return AudioFormat{SampleRate: c.SampleRate, Channels: c.Channels, BitDepth: c.BitDepth}
}

// PlaybackConfig describes the playback command. The command reads the
// audio container from stdin.
type PlaybackConfig struct {
	Command []string
}

// LoggingConfig selects log verbosity and destination. An empty File
// disables logging.
type LoggingConfig struct {
	Level string
	File  string
}

// DefaultConfig returns a configuration that captures 16 kHz mono PCM with
// arecord, plays with aplay and talks HTTP to DefaultBackendURL.
func DefaultConfig() Config {
	f := DefaultAudioFormat()
	return Config{
		BackendURL: DefaultBackendURL,
		Transport:  TransportHTTP,
		Capture: CaptureConfig{
			Command: []string{
				"arecord", "-q", "-t", "raw", "-f", "{pcm_format}",
				"-r", "{sample_rate}", "-c", "{channels}",
			},
			SampleRate:    f.SampleRate,
			Channels:      f.Channels,
			BitDepth:      f.BitDepth,
			FragmentBytes: f.BytesPerSecond() / 10,
		},
		Playback: PlaybackConfig{
			Command: []string{"aplay", "-q", "-"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate checks every section and reports the first problem found.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("backend_url must be an absolute http(s) URL, got %q: %w", c.BackendURL, ErrValidation)
	}
	if c.Transport != TransportHTTP && c.Transport != TransportWebSocket {
		return fmt.Errorf("transport must be %q or %q, got %q: %w", TransportHTTP, TransportWebSocket, c.Transport, ErrValidation)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %s: %w", c.RequestTimeout, ErrValidation)
	}
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := c.Playback.Validate(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Validate checks the capture section.
func (c CaptureConfig) Validate() error {
	if len(c.Command) == 0 || c.Command[0] == "" {
		return fmt.Errorf("command cannot be empty: %w", ErrValidation)
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000, got %d: %w", c.SampleRate, ErrValidation)
	}
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d: %w", c.Channels, ErrValidation)
	}
	if c.BitDepth != 8 && c.BitDepth != 16 && c.BitDepth != 24 && c.BitDepth != 32 {
		return fmt.Errorf("bit_depth must be 8, 16, 24 or 32, got %d: %w", c.BitDepth, ErrValidation)
	}
	if c.FragmentBytes < 64 {
		return fmt.Errorf("fragment_bytes must be at least 64, got %d: %w", c.FragmentBytes, ErrValidation)
	}
	return nil
}

// Validate checks the playback section.
func (c PlaybackConfig) Validate() error {
	if len(c.Command) == 0 || c.Command[0] == "" {
		return fmt.Errorf("command cannot be empty: %w", ErrValidation)
	}
	return nil
}

// Validate checks the logging section.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("level must be one of [debug, info, warn, error], got %q: %w", c.Level, ErrValidation)
	}
}
