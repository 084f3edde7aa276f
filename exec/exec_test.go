package exec_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/converse"
	convexec "github.com/fwojciec/converse/exec"
	"github.com/fwojciec/converse/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureConfig(script string, fragment int) converse.CaptureConfig {
	cfg := converse.DefaultConfig().Capture
	cfg.Command = []string{"sh", "-c", script}
	cfg.FragmentBytes = fragment
	return cfg
}

func TestDevice(t *testing.T) {
	t.Parallel()

	t.Run("reads fragments until stopped", func(t *testing.T) {
		t.Parallel()
		d := convexec.NewDevice(captureConfig("printf abcd; exec sleep 10", 2), convexec.WithStartupGrace(50*time.Millisecond))

		c, err := d.Open(context.Background())
		require.NoError(t, err)
		defer c.Close()

		b, err := c.Read()
		require.NoError(t, err)
		assert.Equal(t, "ab", string(b))
		b, err = c.Read()
		require.NoError(t, err)
		assert.Equal(t, "cd", string(b))

		require.NoError(t, c.Stop())
		_, err = c.Read()
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, converse.DefaultAudioFormat(), c.Format())
	})

	t.Run("trailing partial fragment is delivered", func(t *testing.T) {
		t.Parallel()
		d := convexec.NewDevice(captureConfig("printf abc; exec sleep 10", 2), convexec.WithStartupGrace(0))
		c, err := d.Open(context.Background())
		require.NoError(t, err)
		defer c.Close()

		b, err := c.Read()
		require.NoError(t, err)
		assert.Equal(t, "ab", string(b))
		require.NoError(t, c.Stop())

		var rest []byte
		for {
			b, err := c.Read()
			if err != nil {
				assert.ErrorIs(t, err, io.EOF)
				break
			}
			rest = append(rest, b...)
		}
		assert.Equal(t, "c", string(rest))
	})

	t.Run("format placeholders are expanded from the config", func(t *testing.T) {
		t.Parallel()
		cfg := captureConfig("printf %s {sample_rate}/{channels}/{pcm_format}; exec sleep 10", 64)
		cfg.SampleRate = 8000
		cfg.Channels = 2
		d := convexec.NewDevice(cfg, convexec.WithStartupGrace(50*time.Millisecond))
		c, err := d.Open(context.Background())
		require.NoError(t, err)
		defer c.Close()
		require.NoError(t, c.Stop())

		var out []byte
		for {
			b, err := c.Read()
			if err != nil {
				break
			}
			out = append(out, b...)
		}
		assert.Equal(t, "8000/2/S16_LE", string(out))
	})

	t.Run("missing command is unavailable", func(t *testing.T) {
		t.Parallel()
		cfg := converse.DefaultConfig().Capture
		cfg.Command = []string{"converse-no-such-recorder"}
		_, err := convexec.NewDevice(cfg).Open(context.Background())
		assert.ErrorIs(t, err, converse.ErrDeviceUnavailable)
	})

	t.Run("early exit reports permission denial", func(t *testing.T) {
		t.Parallel()
		d := convexec.NewDevice(
			captureConfig("echo 'audio open error: Permission denied' >&2; exit 1", 2),
			convexec.WithStartupGrace(5*time.Second),
		)
		_, err := d.Open(context.Background())
		assert.ErrorIs(t, err, converse.ErrPermissionDenied)
		assert.Contains(t, err.Error(), "audio open error: Permission denied")
	})

	t.Run("early exit without diagnostics is unavailable", func(t *testing.T) {
		t.Parallel()
		d := convexec.NewDevice(captureConfig("exit 3", 2), convexec.WithStartupGrace(5*time.Second))
		_, err := d.Open(context.Background())
		assert.ErrorIs(t, err, converse.ErrDeviceUnavailable)
	})

	t.Run("close ends a running command", func(t *testing.T) {
		t.Parallel()
		d := convexec.NewDevice(captureConfig("exec sleep 10", 2), convexec.WithStartupGrace(0))
		c, err := d.Open(context.Background())
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := c.Read()
			done <- err
		}()
		require.NoError(t, c.Close())
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("read did not return after close")
		}
		assert.NoError(t, c.Close(), "second close is a no-op")
	})
}

func TestDevice_WithRecorder(t *testing.T) {
	t.Parallel()
	d := convexec.NewDevice(captureConfig("printf '\\001\\000\\002\\000'; exec sleep 10", 64), convexec.WithStartupGrace(0))
	r := converse.NewRecorder(d, &mock.Encoder{
		EncodeFn: func(pcm []byte, f converse.AudioFormat) (converse.Audio, error) {
			return converse.Audio{Data: pcm, MediaType: converse.MediaTypeWAV, Format: f}, nil
		},
	})

	require.NoError(t, r.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	audio, err := r.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0}, audio.Data)
}

func TestPlayer(t *testing.T) {
	t.Parallel()

	source := func(content string) *mock.AudioSource {
		return &mock.AudioSource{
			OpenAudioFn: func(ctx context.Context, ref string) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(content + ref)), nil
			},
		}
	}

	t.Run("streams the reference to the command", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "played")
		p := convexec.NewPlayer(converse.PlaybackConfig{Command: []string{"sh", "-c", "cat > " + out}}, source("RIFF:"))

		done, err := p.Play(context.Background(), "/download/x.wav")
		require.NoError(t, err)
		require.NoError(t, <-done)

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "RIFF:/download/x.wav", string(got))
	})

	t.Run("failed command reports diagnostics", func(t *testing.T) {
		t.Parallel()
		p := convexec.NewPlayer(converse.PlaybackConfig{Command: []string{"sh", "-c", "cat >/dev/null; echo 'no sink' >&2; exit 2"}}, source(""))
		done, err := p.Play(context.Background(), "x")
		require.NoError(t, err)
		err = <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no sink")
	})

	t.Run("cancel stops playback", func(t *testing.T) {
		t.Parallel()
		p := convexec.NewPlayer(converse.PlaybackConfig{Command: []string{"sh", "-c", "exec sleep 10"}}, source(""))
		ctx, cancel := context.WithCancel(context.Background())
		done, err := p.Play(ctx, "x")
		require.NoError(t, err)
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("playback not cancelled")
		}
	})

	t.Run("source failure", func(t *testing.T) {
		t.Parallel()
		p := convexec.NewPlayer(converse.PlaybackConfig{Command: []string{"sh"}}, &mock.AudioSource{
			OpenAudioFn: func(ctx context.Context, ref string) (io.ReadCloser, error) {
				return nil, converse.ErrBackend
			},
		})
		_, err := p.Play(context.Background(), "x")
		assert.ErrorIs(t, err, converse.ErrBackend)
	})

	t.Run("missing command", func(t *testing.T) {
		t.Parallel()
		p := convexec.NewPlayer(converse.PlaybackConfig{Command: []string{"converse-no-such-player"}}, source(""))
		_, err := p.Play(context.Background(), "x")
		require.ErrorIs(t, err, converse.ErrPlayerUnavailable)
		assert.NotErrorIs(t, err, converse.ErrDeviceUnavailable)
		assert.EqualError(t, err, "converse-no-such-player not found: audio player unavailable")
	})
}
