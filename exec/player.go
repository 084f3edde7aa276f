package exec

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/fwojciec/converse"
)

var _ converse.Player = (*Player)(nil)

// Player plays a reference by streaming it into the stdin of a playback
// command.
type Player struct {
	argv   []string
	source converse.AudioSource
}

// NewPlayer creates a Player that reads references from source.
func NewPlayer(cfg converse.PlaybackConfig, source converse.AudioSource) *Player {
	return &Player{argv: cfg.Command, source: source}
}

// Play opens ref and starts the playback command. The returned channel
// receives the command's outcome once it exits. Cancelling ctx kills the
// command's process group.
func (p *Player) Play(ctx context.Context, ref string) (<-chan error, error) {
	path, err := lookPath(p.argv, converse.ErrPlayerUnavailable, converse.ErrPlayerUnavailable)
	if err != nil {
		return nil, err
	}
	name := p.argv[0]

	body, err := p.source.OpenAudio(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}

	cmd := command(path, p.argv[1:])
	stderr := newStderrTail(stderrTailSize)
	cmd.Stdin = body
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Start(); err != nil {
		_ = body.Close()
		return nil, classify(name, err, "")
	}

	stop := context.AfterFunc(ctx, func() {
		_ = signalGroup(cmd, syscall.SIGKILL)
	})

	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := cmd.Wait()
		stop()
		_ = body.Close()
		switch {
		case ctx.Err() != nil:
			done <- ctx.Err()
		case err != nil:
			if diag := stderr.Diagnostic(); diag != "" {
				err = fmt.Errorf("%s: %w: %s", name, err, diag)
			} else {
				err = fmt.Errorf("%s: %w", name, err)
			}
			done <- err
		default:
			done <- nil
		}
	}()
	return done, nil
}
