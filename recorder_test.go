package converse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/converse"
	"github.com/fwojciec/converse/mock"
	"github.com/fwojciec/converse/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	t.Run("starts idle", func(t *testing.T) {
		t.Parallel()
		r := converse.NewRecorder(newFakeDevice(), rawEncoder())
		assert.Equal(t, converse.StateIdle, r.State())
	})

	t.Run("stop returns fragments in capture order", func(t *testing.T) {
		t.Parallel()
		c := newFakeCapture("ab", "cd", "ef")
		r := converse.NewRecorder(newFakeDevice(c), rawEncoder())

		require.NoError(t, r.Start(context.Background()))
		assert.Equal(t, converse.StateRecording, r.State())

		audio, err := r.Stop(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "abcdef", string(audio.Data))
		assert.Equal(t, converse.MediaTypeWAV, audio.MediaType)
		assert.Equal(t, converse.StateIdle, r.State())
	})

	t.Run("stop releases the device", func(t *testing.T) {
		t.Parallel()
		c := newFakeCapture("x")
		r := converse.NewRecorder(newFakeDevice(c), rawEncoder())
		require.NoError(t, r.Start(context.Background()))
		_, err := r.Stop(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(1), c.closes.Load())
	})

	t.Run("second start while recording is rejected", func(t *testing.T) {
		t.Parallel()
		d := newFakeDevice(newFakeCapture(), newFakeCapture())
		r := converse.NewRecorder(d, rawEncoder())
		require.NoError(t, r.Start(context.Background()))

		err := r.Start(context.Background())
		var stateErr *converse.StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "start", stateErr.Op)
		assert.Equal(t, converse.StateRecording, stateErr.State)
		assert.ErrorIs(t, err, converse.ErrInvalidState)
		assert.Equal(t, int32(1), d.opens.Load())
	})

	t.Run("stop while idle is rejected", func(t *testing.T) {
		t.Parallel()
		r := converse.NewRecorder(newFakeDevice(), rawEncoder())
		_, err := r.Stop(context.Background())
		assert.ErrorIs(t, err, converse.ErrInvalidState)
	})

	t.Run("device failure returns to idle", func(t *testing.T) {
		t.Parallel()
		d := &mock.Device{OpenFn: func(ctx context.Context) (converse.Capture, error) {
			return nil, converse.ErrPermissionDenied
		}}
		r := converse.NewRecorder(d, rawEncoder())
		err := r.Start(context.Background())
		assert.ErrorIs(t, err, converse.ErrPermissionDenied)
		assert.Equal(t, converse.StateIdle, r.State())
	})

	t.Run("sequential sessions do not share fragments", func(t *testing.T) {
		t.Parallel()
		r := converse.NewRecorder(newFakeDevice(newFakeCapture("first"), newFakeCapture("second")), rawEncoder())

		require.NoError(t, r.Start(context.Background()))
		a1, err := r.Stop(context.Background())
		require.NoError(t, err)

		require.NoError(t, r.Start(context.Background()))
		a2, err := r.Stop(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "first", string(a1.Data))
		assert.Equal(t, "second", string(a2.Data))
	})

	t.Run("cancelled stop still releases the device", func(t *testing.T) {
		t.Parallel()
		c := newFakeCapture()
		c.StopFn = func() error { return nil } // device never confirms
		c.CloseFn = func() error {
			c.closes.Add(1)
			select {
			case <-c.stopped:
			default:
				close(c.stopped)
			}
			return nil
		}
		r := converse.NewRecorder(newFakeDevice(c), rawEncoder())
		require.NoError(t, r.Start(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Stop(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(1), c.closes.Load())
		assert.Equal(t, converse.StateIdle, r.State())
	})

	t.Run("capture read error surfaces from stop", func(t *testing.T) {
		t.Parallel()
		readErr := errors.New("overrun")
		c := newFakeCapture()
		c.ReadFn = func() ([]byte, error) { return nil, readErr }
		r := converse.NewRecorder(newFakeDevice(c), rawEncoder())
		require.NoError(t, r.Start(context.Background()))
		_, err := r.Stop(context.Background())
		assert.ErrorIs(t, err, readErr)
	})

	t.Run("wav encoder produces a container", func(t *testing.T) {
		t.Parallel()
		r := converse.NewRecorder(newFakeDevice(newFakeCapture("\x01\x00", "\x02\x00")), wav.Encoder{})
		require.NoError(t, r.Start(context.Background()))
		audio, err := r.Stop(context.Background())
		require.NoError(t, err)

		f, pcm, err := wav.Decode(audio.Data)
		require.NoError(t, err)
		assert.Equal(t, converse.DefaultAudioFormat(), f)
		assert.Equal(t, []byte{1, 0, 2, 0}, pcm)
	})
}

func TestRecorderState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "idle", converse.StateIdle.String())
	assert.Equal(t, "recording", converse.StateRecording.String())
	assert.Equal(t, "finalizing", converse.StateFinalizing.String())
	assert.Equal(t, "unknown", converse.RecorderState(42).String())
}
