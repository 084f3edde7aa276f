package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/converse"
	convjson "github.com/fwojciec/converse/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestResolveConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig(flags{}, "")
	require.NoError(t, err)
	assert.Equal(t, converse.DefaultConfig(), cfg)
}

func TestResolveConfig_MissingDefaultFileTolerated(t *testing.T) {
	t.Parallel()
	// Relative to the package directory, where no .converse dir exists.
	cfg, err := resolveConfig(flags{config: defaultConfigPath}, "")
	require.NoError(t, err)
	assert.Equal(t, converse.DefaultBackendURL, cfg.BackendURL)
}

func TestResolveConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig(flags{config: filepath.Join(t.TempDir(), "nope.yaml")}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveConfig_Precedence(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "backend_url: http://file:8000\ntransport: websocket\n")

	t.Run("file over defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := resolveConfig(flags{config: path}, "")
		require.NoError(t, err)
		assert.Equal(t, "http://file:8000", cfg.BackendURL)
		assert.Equal(t, converse.TransportWebSocket, cfg.Transport)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Parallel()
		cfg, err := resolveConfig(flags{config: path}, "http://env:8000")
		require.NoError(t, err)
		assert.Equal(t, "http://env:8000", cfg.BackendURL)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Parallel()
		cfg, err := resolveConfig(flags{
			config:    path,
			backend:   "https://flag.example",
			transport: "http",
			history:   "/tmp/h.json",
			logFile:   "/tmp/c.log",
			logLevel:  "debug",
		}, "http://env:8000")
		require.NoError(t, err)
		assert.Equal(t, "https://flag.example", cfg.BackendURL)
		assert.Equal(t, converse.TransportHTTP, cfg.Transport)
		assert.Equal(t, "/tmp/h.json", cfg.HistoryPath)
		assert.Equal(t, converse.LoggingConfig{Level: "debug", File: "/tmp/c.log"}, cfg.Logging)
	})
}

func TestResolveConfig_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		f    flags
		env  string
		msg  string
	}{
		{"bad backend flag", flags{backend: "ftp://x"}, "", "backend_url"},
		{"bad env", flags{}, "not a url", "backend_url"},
		{"bad transport", flags{transport: "grpc"}, "", "transport"},
		{"bad level", flags{logLevel: "loud"}, "", "logging: level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := resolveConfig(tt.f, tt.env)
			require.ErrorIs(t, err, converse.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWire(t *testing.T) {
	t.Parallel()

	t.Run("http", func(t *testing.T) {
		t.Parallel()
		d, err := wire(converse.DefaultConfig(), converse.NopLogger{})
		require.NoError(t, err)
		defer d.close()
		assert.NotNil(t, d.controller)
		assert.Empty(t, d.closers)
		assert.Equal(t, converse.StateIdle, d.controller.State())
	})

	t.Run("websocket", func(t *testing.T) {
		t.Parallel()
		cfg := converse.DefaultConfig()
		cfg.Transport = converse.TransportWebSocket
		d, err := wire(cfg, converse.NopLogger{})
		require.NoError(t, err)
		defer d.close()
		assert.Len(t, d.closers, 1)
	})
}

func TestLoadHistory(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("no path", func(t *testing.T) {
		t.Parallel()
		h, err := loadHistory("", now)
		require.NoError(t, err)
		assert.NotEmpty(t, h.ID)
		assert.Empty(t, h.Exchanges)
		assert.Equal(t, now, h.CreatedAt)
	})

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "history.json")
		saved := converse.NewHistory("prev", now)
		saved.Append(converse.Exchange{ID: "a", Transcript: "hi", CreatedAt: now.Add(time.Minute)})
		require.NoError(t, convjson.Save(path, saved))

		h, err := loadHistory(path, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "prev", h.ID)
		require.Len(t, h.Exchanges, 1)
		assert.Equal(t, "hi", h.Exchanges[0].Transcript)
	})

	t.Run("missing file starts fresh", func(t *testing.T) {
		t.Parallel()
		h, err := loadHistory(filepath.Join(t.TempDir(), "new.json"), now)
		require.NoError(t, err)
		assert.Empty(t, h.Exchanges)
	})
}
