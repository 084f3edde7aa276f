package yaml_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/converse"
	convyaml "github.com/fwojciec/converse/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("overlays defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := convyaml.Parse([]byte(`
backend_url: https://voice.example.com
transport: websocket
request_timeout: 45s
capture:
  command: [parec, --raw]
  fragment_bytes: 1600
logging:
  level: debug
  file: /tmp/converse.log
`), converse.DefaultConfig())
		require.NoError(t, err)

		assert.Equal(t, "https://voice.example.com", cfg.BackendURL)
		assert.Equal(t, converse.TransportWebSocket, cfg.Transport)
		assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
		assert.Equal(t, []string{"parec", "--raw"}, cfg.Capture.Command)
		assert.Equal(t, 1600, cfg.Capture.FragmentBytes)
		assert.Equal(t, 16000, cfg.Capture.SampleRate, "untouched keys keep defaults")
		assert.Equal(t, []string{"aplay", "-q", "-"}, cfg.Playback.Command)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "/tmp/converse.log", cfg.Logging.File)
	})

	t.Run("empty document yields defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := convyaml.Parse(nil, converse.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, converse.DefaultConfig(), cfg)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := convyaml.Parse([]byte("backend: http://x\n"), converse.DefaultConfig())
		assert.ErrorContains(t, err, "backend")
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		t.Parallel()
		_, err := convyaml.Parse([]byte("capture:\n  channels: 6\n"), converse.DefaultConfig())
		assert.ErrorIs(t, err, converse.ErrValidation)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Parallel()
		_, err := convyaml.Parse([]byte("request_timeout: soon\n"), converse.DefaultConfig())
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	want := converse.DefaultConfig()
	want.HistoryPath = "/var/lib/converse/history.json"
	data, err := convyaml.Marshal(want)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	got, err := convyaml.Load(path, converse.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = convyaml.Load(filepath.Join(dir, "missing.yaml"), converse.DefaultConfig())
	assert.ErrorContains(t, err, "read config file")
}
