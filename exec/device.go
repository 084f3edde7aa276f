package exec

import (
	"context"
	"fmt"
	"io"
	osexec "os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fwojciec/converse"
)

// DefaultStartupGrace is how long Open watches a fresh capture command for
// an early exit before treating the device as running.
const DefaultStartupGrace = 150 * time.Millisecond

var _ converse.Device = (*Device)(nil)

// Device captures raw PCM from the stdout of a capture command. Each Open
// starts a new process, and Close on the returned capture ends it, so the
// microphone is held only while a capture is open.
type Device struct {
	cfg   converse.CaptureConfig
	grace time.Duration
}

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithStartupGrace sets how long Open waits for the command to fail before
// returning. Zero skips the check.
func WithStartupGrace(d time.Duration) DeviceOption {
	return func(dev *Device) { dev.grace = d }
}

// NewDevice creates a Device from the capture configuration.
func NewDevice(cfg converse.CaptureConfig, opts ...DeviceOption) *Device {
	d := &Device{cfg: cfg, grace: DefaultStartupGrace}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Open starts the capture command. A command that is missing, cannot be
// started, or exits during the startup grace period is reported as
// ErrDeviceUnavailable or ErrPermissionDenied.
func (d *Device) Open(ctx context.Context) (converse.Capture, error) {
	argv := d.cfg.Argv()
	path, err := lookPath(argv, converse.ErrDeviceUnavailable, converse.ErrPermissionDenied)
	if err != nil {
		return nil, err
	}
	name := argv[0]

	cmd := command(path, argv[1:])
	stderr := newStderrTail(stderrTailSize)
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%s stdout: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, classify(name, err, "")
	}

	c := &capture{
		name:   name,
		cmd:    cmd,
		format: d.cfg.Format(),
		stderr: stderr,
		frags:  make(chan []byte, 16),
		exited: make(chan struct{}),
	}
	go c.pump(stdout, d.cfg.FragmentBytes)

	if d.grace <= 0 {
		return c, nil
	}
	timer := time.NewTimer(d.grace)
	defer timer.Stop()
	select {
	case <-timer.C:
		return c, nil
	case <-c.exited:
		err := c.err
		_ = c.Close()
		if err == nil {
			err = fmt.Errorf("%s exited before capturing: %w", name, converse.ErrDeviceUnavailable)
		}
		return nil, err
	case <-ctx.Done():
		_ = c.Close()
		return nil, ctx.Err()
	}
}

type capture struct {
	name   string
	cmd    *osexec.Cmd
	format converse.AudioFormat
	stderr *stderrTail

	frags  chan []byte
	exited chan struct{} // closed once err is final
	err    error

	stopped   atomic.Bool
	closeOnce sync.Once
}

func (c *capture) pump(stdout io.Reader, size int) {
	for {
		buf := make([]byte, size)
		n, err := io.ReadFull(stdout, buf)
		if n > 0 {
			c.frags <- buf[:n]
		}
		if err != nil {
			break
		}
	}
	if err := c.cmd.Wait(); err != nil && !c.stopped.Load() {
		c.err = classify(c.name, err, c.stderr.Diagnostic())
	}
	close(c.exited)
	close(c.frags)
}

// Read returns the next fragment, or io.EOF once the command has exited
// after Stop. An unrequested exit is reported as a device error.
func (c *capture) Read() ([]byte, error) {
	if b, ok := <-c.frags; ok {
		return b, nil
	}
	if c.err != nil {
		return nil, c.err
	}
	return nil, io.EOF
}

// Stop asks the command to finish by interrupting its process group.
func (c *capture) Stop() error {
	c.stopped.Store(true)
	if err := c.signal(syscall.SIGINT); err != nil {
		return fmt.Errorf("stop %s: %w", c.name, err)
	}
	return nil
}

// Close kills the process group if it is still running and waits for it.
func (c *capture) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.stopped.Store(true)
		select {
		case <-c.exited:
		default:
			if kerr := c.signal(syscall.SIGKILL); kerr != nil {
				err = fmt.Errorf("kill %s: %w", c.name, kerr)
			}
		}
		for range c.frags {
		}
	})
	return err
}

func (c *capture) Format() converse.AudioFormat { return c.format }

func (c *capture) signal(sig syscall.Signal) error {
	return signalGroup(c.cmd, sig)
}
